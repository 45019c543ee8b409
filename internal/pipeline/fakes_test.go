package pipeline

import (
	"context"
	"errors"
	"math/rand/v2"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"

	"movie-recap/internal/appdirs"
	"movie-recap/internal/artifact"
	"movie-recap/internal/mocks"
	"movie-recap/internal/progress"
	"movie-recap/internal/types"
	apperrors "movie-recap/pkg/errors"
)

const testSrt = "1\n00:01:40,000 --> 00:01:50,500\n<i>Hello.</i>\n\n2\n00:02:10,000 --> 00:02:20,000\nBye.\n"

type fakeTts struct {
	mu    sync.Mutex
	store artifact.Store
	fail  map[string]bool
	calls []string
}

func (f *fakeTts) Text2Speech(_ context.Context, text, _ string, outputFile string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, text)
	if f.fail[text] {
		return errors.New("quota exceeded")
	}
	return f.store.Write(outputFile, []byte("mp3:"+text))
}

// fakeMedia writes its outputs into the store so the pipeline's artifact
// checks see them.
type fakeMedia struct {
	mu        sync.Mutex
	store     artifact.Store
	durations map[string]float64
	// narration and other unknown files
	defaultDuration float64

	failRender      map[string]bool
	failConcatAudio bool
	failMix         bool
	failVertical    bool

	calls   []string
	renders []types.RenderRequest
}

func (f *fakeMedia) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeMedia) ProbeDuration(_ context.Context, path string) (float64, error) {
	f.record("probe")
	if !artifact.Exists(f.store, path) {
		return 0, apperrors.ErrProbeFailed
	}
	if d, ok := f.durations[path]; ok {
		return d, nil
	}
	return f.defaultDuration, nil
}

func (f *fakeMedia) ProbeDimensions(context.Context, string) (int, int, error) {
	f.record("dimensions")
	return 1920, 1080, nil
}

func (f *fakeMedia) RenderClip(_ context.Context, req types.RenderRequest) error {
	f.record("render")
	f.mu.Lock()
	f.renders = append(f.renders, req)
	f.mu.Unlock()
	if f.failRender[filepath.Base(req.Output)] {
		return errors.New("encoder crashed")
	}
	return f.store.Write(req.Output, []byte("clip:"+filepath.Base(req.Output)))
}

func (f *fakeMedia) ConcatVideos(_ context.Context, listFile, output string) error {
	f.record("concat")
	list, err := f.store.Read(listFile)
	if err != nil {
		return err
	}
	return f.store.Write(output, append([]byte("concat:"), list...))
}

func (f *fakeMedia) TrimAudio(_ context.Context, input string, _, _ float64, output string) error {
	f.record("trim")
	return f.store.Write(output, []byte("part:"+filepath.Base(input)))
}

func (f *fakeMedia) ConcatAudio(_ context.Context, _ string, output string) error {
	f.record("concat_audio")
	if f.failConcatAudio {
		return errors.New("concat audio failed")
	}
	return f.store.Write(output, []byte("bgm"))
}

func (f *fakeMedia) MixBgm(_ context.Context, _, _, output string, _, _ float64) error {
	f.record("mix")
	if f.failMix {
		return errors.New("amix failed")
	}
	return f.store.Write(output, []byte("mixed"))
}

func (f *fakeMedia) MakeVertical(_ context.Context, _, output string) error {
	f.record("vertical")
	if f.failVertical {
		return errors.New("crop failed")
	}
	return f.store.Write(output, []byte("vertical"))
}

type fixture struct {
	store   *artifact.MemStore
	layout  artifact.Layout
	subs    *mocks.MockSubtitleSource
	scripts *mocks.MockScriptSource
	planner *mocks.MockPlanGenerator
	tts     *fakeTts
	media   *fakeMedia
	ring    *progress.Ring
	job     types.MovieJob
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := artifact.NewMemStore()
	layout := artifact.NewLayout(appdirs.NewWorkspace(filepath.Join("/", "ws")))
	f := &fixture{
		store:   store,
		layout:  layout,
		subs:    &mocks.MockSubtitleSource{},
		scripts: &mocks.MockScriptSource{},
		planner: &mocks.MockPlanGenerator{},
		tts:     &fakeTts{store: store, fail: map[string]bool{}},
		media: &fakeMedia{
			store:           store,
			durations:       map[string]float64{},
			defaultDuration: 6,
			failRender:      map[string]bool{},
		},
		ring: progress.NewRing(300, 600),
		job: types.MovieJob{
			Title:      "Heat",
			SourcePath: filepath.Join(layout.MoviesDir(), "Heat.mp4"),
		},
	}
	_ = store.Write(f.job.SourcePath, []byte("source movie"))
	f.media.durations[layout.Concatenated("Heat")] = 30
	t.Cleanup(func() {
		f.subs.AssertExpectations(t)
		f.scripts.AssertExpectations(t)
		f.planner.AssertExpectations(t)
	})
	return f
}

func (f *fixture) pipeline(opts Options) *Pipeline {
	return New(Deps{
		Store:     f.store,
		Layout:    f.layout,
		Subtitles: f.subs,
		Scripts:   f.scripts,
		Planner:   f.planner,
		Tts:       f.tts,
		Media:     f.media,
		Rand:      rand.New(rand.NewPCG(1, 2)),
		Sink:      f.ring,
	}, opts)
}

// expectSources sets up a subtitle download and a missing script.
func (f *fixture) expectSources() {
	f.subs.On("FetchSubtitles", mock.Anything, "Heat").Return([]byte(testSrt), nil).Once()
	f.scripts.On("FetchScript", mock.Anything, "Heat").Return("", apperrors.ErrScriptNotFound).Once()
}

func (f *fixture) expectPlan(clips ...types.ClipSpec) {
	f.planner.On("Generate", mock.Anything, mock.Anything).Return(types.ClipPlan{Clips: clips}, nil).Once()
}

func clip(id, start, end int, narration string) types.ClipSpec {
	return types.ClipSpec{ID: id, Start: start, End: end, Narration: narration}
}
