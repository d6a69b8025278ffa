package processor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaptermatic/chaptermatic-server/internal/chapters"
	"github.com/chaptermatic/chaptermatic-server/internal/service"
	"github.com/chaptermatic/chaptermatic-server/internal/watcher"
)

const sampleJSON = `[
  {"start": 0, "duration": 5, "text": "Today we configure the database connection"},
  {"start": 5, "duration": 45, "text": "we need a driver and a connection string"},
  {"start": 50, "duration": 5, "text": "Now let's look at migrations"},
  {"start": 55, "duration": 5, "text": "Migrations keep the schema in version control"}
]`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeGenerator records calls and can block until released.
type fakeGenerator struct {
	calls   atomic.Int32
	active  atomic.Int32
	peak    atomic.Int32
	release chan struct{}
	err     error
}

func (f *fakeGenerator) GenerateFromFile(ctx context.Context, path string) (*service.GenerateResult, error) {
	f.calls.Add(1)
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		peak := f.peak.Load()
		if n <= peak || f.peak.CompareAndSwap(peak, n) {
			break
		}
	}

	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &service.GenerateResult{
		RunID:       "run-1",
		Chapters:    []chapters.Chapter{{Timestamp: "0:00", Title: "Intro"}},
		Description: "0:00 Intro",
	}, nil
}

func writeTranscript(t *testing.T, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(sampleJSON), 0o644))
	return path
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, "/inbox/talk.chapters.txt", OutputPath("/inbox/talk.json"))
	assert.Equal(t, "/inbox/talk.v2.chapters.txt", OutputPath("/inbox/talk.v2.srt"))
}

func TestEventProcessor_ProcessEvent_WritesChapters(t *testing.T) {
	dir := t.TempDir()
	path := writeTranscript(t, dir, "talk.json")

	svc := service.NewChapterService(nil, nil, chapters.NewSegmenter(chapters.DefaultRules()), testLogger())
	ep := NewEventProcessor(svc, 1, testLogger())

	err := ep.ProcessEvent(context.Background(), watcher.Event{Type: watcher.EventAdded, Path: path})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "talk.chapters.txt"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "0:00 "))
	assert.True(t, strings.HasPrefix(lines[1], "0:55 "))

	leftovers, err := filepath.Glob(filepath.Join(dir, ".chapters-*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestEventProcessor_ProcessEvent_IgnoresUnsupported(t *testing.T) {
	gen := &fakeGenerator{}
	ep := NewEventProcessor(gen, 1, testLogger())

	err := ep.ProcessEvent(context.Background(), watcher.Event{Type: watcher.EventAdded, Path: "/inbox/talk.chapters.txt"})
	require.NoError(t, err)
	assert.Zero(t, gen.calls.Load())
}

func TestEventProcessor_ProcessEvent_GeneratorError(t *testing.T) {
	dir := t.TempDir()
	path := writeTranscript(t, dir, "talk.json")

	gen := &fakeGenerator{err: errors.New("boom")}
	ep := NewEventProcessor(gen, 1, testLogger())

	err := ep.ProcessEvent(context.Background(), watcher.Event{Type: watcher.EventModified, Path: path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	_, statErr := os.Stat(OutputPath(path))
	assert.True(t, os.IsNotExist(statErr))
}

func TestEventProcessor_ProcessEvent_Removed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "talk.srt")
	require.NoError(t, os.WriteFile(OutputPath(path), []byte("0:00 Intro\n"), 0o644))

	ep := NewEventProcessor(&fakeGenerator{}, 1, testLogger())
	ep.locks.get(path)

	require.NoError(t, ep.ProcessEvent(context.Background(), watcher.Event{Type: watcher.EventRemoved, Path: path}))

	_, err := os.Stat(OutputPath(path))
	assert.True(t, os.IsNotExist(err))
	assert.Zero(t, ep.locks.len())

	// A second removal finds nothing to delete.
	assert.NoError(t, ep.ProcessEvent(context.Background(), watcher.Event{Type: watcher.EventRemoved, Path: path}))
}

func TestEventProcessor_RerunsFileModifiedWhileProcessing(t *testing.T) {
	dir := t.TempDir()
	path := writeTranscript(t, dir, "talk.json")

	gen := &fakeGenerator{release: make(chan struct{})}
	ep := NewEventProcessor(gen, 2, testLogger())
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		done <- ep.ProcessEvent(ctx, watcher.Event{Type: watcher.EventAdded, Path: path})
	}()

	require.Eventually(t, func() bool { return gen.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	// Edits during the run return at once and collapse into a single rerun.
	require.NoError(t, ep.ProcessEvent(ctx, watcher.Event{Type: watcher.EventModified, Path: path}))
	require.NoError(t, ep.ProcessEvent(ctx, watcher.Event{Type: watcher.EventModified, Path: path}))
	assert.Equal(t, int32(1), gen.calls.Load())

	close(gen.release)
	require.NoError(t, <-done)

	assert.Equal(t, int32(2), gen.calls.Load())
	assert.FileExists(t, OutputPath(path))

	// The file is free again and a later event runs exactly once.
	require.NoError(t, ep.ProcessEvent(ctx, watcher.Event{Type: watcher.EventModified, Path: path}))
	assert.Equal(t, int32(3), gen.calls.Load())
}

func TestEventProcessor_BoundsConcurrency(t *testing.T) {
	dir := t.TempDir()
	gen := &fakeGenerator{release: make(chan struct{})}
	ep := NewEventProcessor(gen, 2, testLogger())
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, name := range []string{"a.json", "b.json", "c.json", "d.json"} {
		path := writeTranscript(t, dir, name)
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, ep.ProcessEvent(ctx, watcher.Event{Type: watcher.EventAdded, Path: path}))
		}()
	}

	require.Eventually(t, func() bool { return gen.active.Load() == 2 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(2), gen.active.Load())

	close(gen.release)
	wg.Wait()

	assert.Equal(t, int32(4), gen.calls.Load())
	assert.Equal(t, int32(2), gen.peak.Load())
}

func TestEventProcessor_CancelledWhileWaiting(t *testing.T) {
	dir := t.TempDir()
	gen := &fakeGenerator{release: make(chan struct{})}
	ep := NewEventProcessor(gen, 1, testLogger())

	first := writeTranscript(t, dir, "first.json")
	done := make(chan error, 1)
	go func() {
		done <- ep.ProcessEvent(context.Background(), watcher.Event{Type: watcher.EventAdded, Path: first})
	}()
	require.Eventually(t, func() bool { return gen.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	second := writeTranscript(t, dir, "second.json")
	err := ep.ProcessEvent(ctx, watcher.Event{Type: watcher.EventAdded, Path: second})
	assert.ErrorIs(t, err, context.Canceled)

	close(gen.release)
	require.NoError(t, <-done)
}

func TestEventProcessor_Run(t *testing.T) {
	dir := t.TempDir()
	gen := &fakeGenerator{}
	ep := NewEventProcessor(gen, 2, testLogger())

	events := make(chan watcher.Event, 3)
	events <- watcher.Event{Type: watcher.EventAdded, Path: writeTranscript(t, dir, "a.json")}
	events <- watcher.Event{Type: watcher.EventAdded, Path: writeTranscript(t, dir, "b.srt")}
	events <- watcher.Event{Type: watcher.EventAdded, Path: filepath.Join(dir, "notes.md")}
	close(events)

	ep.Run(context.Background(), events)

	assert.Equal(t, int32(2), gen.calls.Load())
	assert.FileExists(t, filepath.Join(dir, "a.chapters.txt"))
	assert.FileExists(t, filepath.Join(dir, "b.chapters.txt"))
}

func TestEventProcessor_ProcessExisting(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	fresh := writeTranscript(t, dir, "fresh.json")
	writeTranscript(t, filepath.Join(dir, "nested"), "new.srt")
	writeTranscript(t, dir, "stale.json")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.md"), []byte("hi"), 0o644))

	// fresh.json already has an up-to-date description.
	require.NoError(t, os.WriteFile(OutputPath(fresh), []byte("0:00 Old\n"), 0o644))
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(OutputPath(fresh), future, future))

	// stale.json has a description older than the transcript.
	stale := filepath.Join(dir, "stale.json")
	require.NoError(t, os.WriteFile(OutputPath(stale), []byte("0:00 Old\n"), 0o644))
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(OutputPath(stale), past, past))

	gen := &fakeGenerator{}
	ep := NewEventProcessor(gen, 2, testLogger())

	n, err := ep.ProcessExisting(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, int32(2), gen.calls.Load())

	data, err := os.ReadFile(OutputPath(fresh))
	require.NoError(t, err)
	assert.Equal(t, "0:00 Old\n", string(data))

	data, err = os.ReadFile(OutputPath(stale))
	require.NoError(t, err)
	assert.Equal(t, "0:00 Intro\n", string(data))
}

func TestFileLocks(t *testing.T) {
	locks := newFileLocks()

	a := locks.get("/inbox/a.json")
	assert.Same(t, a, locks.get("/inbox/a.json"))
	assert.NotSame(t, a, locks.get("/inbox/b.json"))
	assert.Equal(t, 2, locks.len())

	locks.forget("/inbox/a.json")
	assert.Equal(t, 1, locks.len())
	assert.NotSame(t, a, locks.get("/inbox/a.json"))
}

func TestFileState_AcquireRelease(t *testing.T) {
	var state fileState

	require.True(t, state.acquire())
	assert.False(t, state.release(), "clean release does not rerun")

	require.True(t, state.acquire())
	assert.False(t, state.acquire(), "second caller is turned away")
	assert.True(t, state.dirty.Load())

	assert.True(t, state.release(), "dirty release takes the file again")
	assert.False(t, state.dirty.Load())
	assert.False(t, state.release())

	require.True(t, state.acquire(), "file is free after the rerun")
	assert.False(t, state.release())
}
