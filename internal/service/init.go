// Package service wires the configured collaborators into a batch driver.
package service

import (
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"movie-recap/config"
	"movie-recap/internal/appdirs"
	"movie-recap/internal/artifact"
	"movie-recap/internal/batch"
	"movie-recap/internal/bgm"
	"movie-recap/internal/deps"
	"movie-recap/internal/pipeline"
	"movie-recap/internal/planner"
	"movie-recap/internal/progress"
	"movie-recap/internal/storage"
	"movie-recap/internal/types"
	"movie-recap/log"
	"movie-recap/pkg/ffmpeg"
	"movie-recap/pkg/imsdb"
	"movie-recap/pkg/openai"
	"movie-recap/pkg/subf2m"
	"movie-recap/pkg/tts"
)

type Service struct {
	Workspace appdirs.Workspace
	Progress  *progress.Ring
	Pipeline  *pipeline.Pipeline
	Driver    *batch.Driver
	// Ledger is nil when storage is disabled.
	Ledger *storage.Ledger
}

// Collaborators can be overridden before NewService builds the pipeline;
// zero fields are filled from config.
type Collaborators struct {
	Subtitles types.SubtitleSource
	Scripts   types.ScriptSource
	Chat      types.ChatCompleter
	Tts       types.Ttser
	Media     types.MediaTool
}

func defaultCollaborators(conf config.Config, tools deps.MediaTools, logger *zap.Logger) Collaborators {
	proxy := conf.App.ParsedProxy
	return Collaborators{
		Subtitles: subf2m.NewClient("", proxy),
		Scripts:   imsdb.NewClient("", proxy),
		Chat:      openai.NewClient(conf.Llm.BaseUrl, conf.Llm.ApiKey, conf.Llm.Model, proxy),
		Tts:       tts.NewCompositeTtsClient(conf),
		Media:     ffmpeg.New(tools.Ffmpeg, tools.Ffprobe, logger),
	}
}

func (c Collaborators) withDefaults(def Collaborators) Collaborators {
	if c.Subtitles == nil {
		c.Subtitles = def.Subtitles
	}
	if c.Scripts == nil {
		c.Scripts = def.Scripts
	}
	if c.Chat == nil {
		c.Chat = def.Chat
	}
	if c.Tts == nil {
		c.Tts = def.Tts
	}
	if c.Media == nil {
		c.Media = def.Media
	}
	return c
}

// NewService builds the whole object graph. db may be nil.
func NewService(conf config.Config, tools deps.MediaTools, db *gorm.DB, override Collaborators) (*Service, error) {
	logger := log.GetLogger()

	ws := appdirs.ResolveWorkspace(conf.App.WorkDir)
	if err := ws.Ensure(); err != nil {
		return nil, err
	}
	logger.Info("workspace ready", zap.String("root", ws.Root))

	c := override.withDefaults(defaultCollaborators(conf, tools, logger))
	ring := progress.NewRing(progress.DefaultCapacity, progress.DefaultLineMax)
	rnd := newRand(conf.Pipeline.Seed)
	store := artifact.NewFSStore()
	layout := artifact.NewLayout(ws)

	p := pipeline.New(pipeline.Deps{
		Store:     store,
		Layout:    layout,
		Subtitles: c.Subtitles,
		Scripts:   c.Scripts,
		Planner:   planner.NewClient(c.Chat, logger),
		Tts:       c.Tts,
		Media:     c.Media,
		Rand:      rnd,
		Logger:    logger,
		Sink:      ring,
	}, PipelineOptions(conf))

	svc := &Service{Workspace: ws, Progress: ring, Pipeline: p}

	bd := batch.Deps{
		Store:     store,
		Layout:    layout,
		Processor: p,
		Rand:      rnd,
		Logger:    logger,
		Sink:      ring,
	}
	if db != nil && conf.Storage.Enabled {
		svc.Ledger = storage.NewLedger(db)
		bd.Recorder = svc.Ledger
	}
	if conf.Pipeline.ClearScratch {
		bd.ClearScratch = ws.ClearScratch
	}
	svc.Driver = batch.NewDriver(bd, batch.Options{MinClips: conf.Pipeline.MinClips, MaxClips: conf.Pipeline.MaxClips})
	return svc, nil
}

// PipelineOptions maps the [pipeline] and [bgm] sections.
func PipelineOptions(conf config.Config) pipeline.Options {
	opts := pipeline.DefaultOptions()
	opts.MaxSpeedup = conf.Pipeline.MaxSpeedup
	opts.ScriptMinBytes = conf.Pipeline.ScriptMinBytes
	opts.Vertical = conf.Pipeline.Vertical
	opts.Voice = tts.Voice(conf)
	opts.NarrationGain = conf.Bgm.NarrationGain
	opts.BgmGain = conf.Bgm.BgmGain
	opts.Bgm = bgm.Options{
		StartOffset:     conf.Bgm.StartOffset,
		MinTrackSeconds: conf.Bgm.MinTrackSeconds,
		MinAvailable:    1,
		Epsilon:         0.01,
		MaxParts:        conf.Bgm.MaxParts,
	}
	return opts
}

func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewPCG(uint64(seed), 0))
}
