package subf2m

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "movie-recap/pkg/errors"
)

func TestSlug(t *testing.T) {
	testCases := []struct {
		title string
		want  string
	}{
		{"Heat", "heat"},
		{"Ocean's Eleven", "oceans-eleven"},
		{"Blade Runner (1982)", "blade-runner-1982"},
		{"Rocky II", "rocky-ii-2"},
		{"Rocky III", "rocky-iii-3"},
		{"Rocky IV", "rocky-iv-4"},
		{"Taxi Driver", "taxi-driver"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, Slug(tc.title), tc.title)
	}
}

func zipWith(t *testing.T, files map[string]string, order []string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range order {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(files[name]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestFirstSrt(t *testing.T) {
	archive := zipWith(t, map[string]string{
		"readme.txt":    "hello",
		"Heat.1995.SRT": "1\n00:00:01,000 --> 00:00:02,000\nHi\n",
		"other.srt":     "second",
	}, []string{"readme.txt", "Heat.1995.SRT", "other.srt"})

	data, err := FirstSrt(archive)
	require.NoError(t, err)
	assert.Contains(t, string(data), "00:00:01,000")

	_, err = FirstSrt(zipWith(t, map[string]string{"a.txt": "x"}, []string{"a.txt"}))
	assert.Error(t, err)

	_, err = FirstSrt([]byte("not a zip"))
	assert.Error(t, err)
}

func TestFetchSubtitlesDirectLink(t *testing.T) {
	archive := zipWith(t, map[string]string{"heat.srt": "SRT"}, []string{"heat.srt"})

	mux := http.NewServeMux()
	mux.HandleFunc("/subtitles/heat/english", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<a href="/subtitles/heat/english-german/1">de</a>
			<a href="/subtitles/heat/english/777">en</a>
			<a href="/subtitles/heat/english/888">en2</a>`))
	})
	mux.HandleFunc("/subtitles/heat/english/777", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<a href="/subtitles/heat/english/777/download">Download</a>`))
	})
	mux.HandleFunc("/subtitles/heat/english/777/download", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write(archive)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	data, err := NewClient(srv.URL, nil).FetchSubtitles(context.Background(), "Heat")
	require.NoError(t, err)
	assert.Equal(t, "SRT", string(data))
}

func TestFetchSubtitlesProfileFallback(t *testing.T) {
	archive := zipWith(t, map[string]string{"x.srt": "FROM PROFILE"}, []string{"x.srt"})
	var profileHits atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/subtitles/heat/english", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<a href="/u/1">a</a><a href="/u/2">b</a>`))
	})
	mux.HandleFunc("/u/1", func(w http.ResponseWriter, r *http.Request) {
		profileHits.Add(1)
		_, _ = w.Write([]byte(`<a href="/subtitles/other/english/1">x</a>`))
	})
	mux.HandleFunc("/u/2", func(w http.ResponseWriter, r *http.Request) {
		profileHits.Add(1)
		_, _ = w.Write([]byte(`<a href="/subtitles/heat/english/5">x</a>`))
	})
	mux.HandleFunc("/subtitles/heat/english/5", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<a href="/subtitles/heat/english/5/download">dl</a>`))
	})
	mux.HandleFunc("/subtitles/heat/english/5/download", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(archive)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	data, err := NewClient(srv.URL, nil).FetchSubtitles(context.Background(), "Heat")
	require.NoError(t, err)
	assert.Equal(t, "FROM PROFILE", string(data))
	assert.Equal(t, int32(2), profileHits.Load())
}

func TestFetchSubtitlesProfileLimit(t *testing.T) {
	var profileHits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/subtitles/heat/english", func(w http.ResponseWriter, r *http.Request) {
		var page bytes.Buffer
		for i := 0; i < 20; i++ {
			page.WriteString(`<a href="/u/p">p</a>`)
		}
		_, _ = w.Write(page.Bytes())
	})
	mux.HandleFunc("/u/p", func(w http.ResponseWriter, r *http.Request) {
		profileHits.Add(1)
		_, _ = w.Write([]byte(`nothing here`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	_, err := NewClient(srv.URL, nil).FetchSubtitles(context.Background(), "Heat")
	assert.True(t, apperrors.Is(err, apperrors.CodeSubtitleNotFound))
	assert.Equal(t, int32(maxProfilePages), profileHits.Load())
}

func TestFetchSubtitlesListPageMissing(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	_, err := NewClient(srv.URL, nil).FetchSubtitles(context.Background(), "Heat")
	assert.True(t, apperrors.Is(err, apperrors.CodeScrapeFailed))
}

func TestClosestDetail(t *testing.T) {
	links := []string{
		"/subtitles/the-heat/english/1",
		"/subtitles/heat-1995/english/2",
		"/subtitles/heats/english/3",
		"/subtitles/heats/english-german/4",
		"/u/9",
	}
	href, ok := closestDetail("heat", links)
	require.True(t, ok)
	assert.Equal(t, "/subtitles/heats/english/3", href)

	_, ok = closestDetail("casablanca", links)
	assert.False(t, ok)
}
