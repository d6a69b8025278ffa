package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/chaptermatic/chaptermatic-server/internal/chapters"
	"github.com/chaptermatic/chaptermatic-server/internal/search"
	"github.com/chaptermatic/chaptermatic-server/internal/service"
	"github.com/chaptermatic/chaptermatic-server/internal/store/sqlite"
)

// testEnvelope mirrors Envelope with a typed payload.
type testEnvelope[T any] struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details"`
}

type testServer struct {
	*Server
	api humatest.TestAPI
}

// setupTestServer creates a server backed by temp-dir SQLite and Bleve.
func setupTestServer(t *testing.T, opts Options) *testServer {
	t.Helper()

	tmpDir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := sqlite.Open(filepath.Join(tmpDir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	index, err := search.NewSearchIndex(search.Options{DataPath: tmpDir, Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	searchService := service.NewSearchService(index, st, logger)
	st.SetSearchIndexer(searchService)

	services := &Services{
		Chapter: service.NewChapterService(st, searchService, chapters.NewSegmenter(chapters.DefaultRules()), logger),
		Search:  searchService,
	}

	s := NewServer(st, services, opts, logger)
	t.Cleanup(s.Close)

	return &testServer{
		Server: s,
		api:    humatest.Wrap(t, s.API()),
	}
}

func decodeEnvelope[T any](t *testing.T, resp *httptest.ResponseRecorder) testEnvelope[T] {
	t.Helper()

	var env testEnvelope[T]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env), "body: %s", resp.Body.String())
	return env
}

func sampleTranscript() []map[string]any {
	return []map[string]any{
		{"start": 0, "duration": 5, "text": "Today we configure the database connection"},
		{"start": 5, "duration": 45, "text": "we need a driver and a connection string"},
		{"start": 50, "duration": 5, "text": "Now let's look at migrations"},
		{"start": 55, "duration": 5, "text": "Migrations keep the schema in version control"},
	}
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.GenerateRate = 1000
	opts.GenerateInterval = time.Second
	opts.GenerateBurst = 1000
	return opts
}
