// Package processor turns transcripts dropped into the inbox into chapter descriptions.
package processor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/chaptermatic/chaptermatic-server/internal/service"
	"github.com/chaptermatic/chaptermatic-server/internal/transcript"
	"github.com/chaptermatic/chaptermatic-server/internal/watcher"
)

// OutputSuffix replaces the transcript extension on the description file.
const OutputSuffix = ".chapters.txt"

// DefaultMaxConcurrent bounds simultaneous generations when no limit is configured.
const DefaultMaxConcurrent = 2

// Generator produces chapters for a transcript file.
type Generator interface {
	GenerateFromFile(ctx context.Context, path string) (*service.GenerateResult, error)
}

// EventProcessor handles settled inbox events.
//
// Each added or modified transcript is processed immediately. Events for a
// file that is already being processed collapse into one rerun after the
// current run, and a semaphore bounds how many files are processed at once.
type EventProcessor struct {
	generator Generator
	logger    *slog.Logger

	locks *fileLocks
	sem   chan struct{}
	wg    sync.WaitGroup
}

// NewEventProcessor creates an EventProcessor. maxConcurrent <= 0 uses DefaultMaxConcurrent.
func NewEventProcessor(generator Generator, maxConcurrent int, logger *slog.Logger) *EventProcessor {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	return &EventProcessor{
		generator: generator,
		logger:    logger,
		locks:     newFileLocks(),
		sem:       make(chan struct{}, maxConcurrent),
	}
}

// OutputPath returns the description file written for a transcript.
func OutputPath(transcriptPath string) string {
	return strings.TrimSuffix(transcriptPath, filepath.Ext(transcriptPath)) + OutputSuffix
}

// ProcessEvent processes a single watcher event.
// Events for unsupported files are ignored.
func (ep *EventProcessor) ProcessEvent(ctx context.Context, event watcher.Event) error {
	ep.logger.Debug("processing event",
		"type", event.Type.String(),
		"path", event.Path,
	)

	if !transcript.IsSupported(event.Path) {
		ep.logger.Debug("ignoring file", "path", event.Path)
		return nil
	}

	switch event.Type {
	case watcher.EventAdded, watcher.EventModified:
		return ep.processFile(ctx, event.Path)
	case watcher.EventRemoved:
		return ep.handleRemovedFile(event.Path)
	default:
		ep.logger.Warn("unknown event type",
			"type", event.Type,
			"path", event.Path,
		)
		return nil
	}
}

// Run processes events until the channel closes or ctx is cancelled,
// then waits for in-flight files to finish.
func (ep *EventProcessor) Run(ctx context.Context, events <-chan watcher.Event) {
	defer ep.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			ep.wg.Add(1)
			go func() {
				defer ep.wg.Done()
				if err := ep.ProcessEvent(ctx, event); err != nil && !errors.Is(err, context.Canceled) {
					ep.logger.Warn("failed to process transcript", "path", event.Path, "error", err)
				}
			}()
		}
	}
}

// ProcessExisting processes transcripts under dir whose description file is
// missing or older than the transcript. It returns the number of files processed.
func (ep *EventProcessor) ProcessExisting(ctx context.Context, dir string) (int, error) {
	var pending []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			ep.logger.Warn("failed to access path", "path", path, "error", err)
			return nil
		}
		if d.IsDir() || !transcript.IsSupported(path) {
			return nil
		}
		if isStale(path) {
			pending = append(pending, path)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("walk inbox: %w", err)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		processed int
	)
	for _, path := range pending {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := ep.processFile(ctx, path); err != nil {
				ep.logger.Warn("failed to process transcript", "path", path, "error", err)
				return
			}
			mu.Lock()
			processed++
			mu.Unlock()
		}()
	}
	wg.Wait()

	return processed, ctx.Err()
}

// processFile generates chapters for one transcript and writes its description file.
// An event for a file that is already being processed makes the current
// holder run again once it finishes, so the description follows the latest content.
func (ep *EventProcessor) processFile(ctx context.Context, path string) error {
	state := ep.locks.get(path)
	if !state.acquire() {
		ep.logger.Debug("file already being processed, queued rerun", "path", path)
		return nil
	}

	for {
		err := ep.generate(ctx, path)
		if !state.release() {
			return err
		}
		if ctx.Err() != nil {
			state.mu.Unlock()
			return ctx.Err()
		}
		if err != nil {
			ep.logger.Warn("failed to process transcript", "path", path, "error", err)
		}
		ep.logger.Debug("transcript changed during processing, running again", "path", path)
	}
}

// generate runs one generation for path under the concurrency limit.
func (ep *EventProcessor) generate(ctx context.Context, path string) error {
	select {
	case ep.sem <- struct{}{}:
		defer func() { <-ep.sem }()
	case <-ctx.Done():
		return ctx.Err()
	}

	result, err := ep.generator.GenerateFromFile(ctx, path)
	if err != nil {
		return fmt.Errorf("generate chapters for %s: %w", path, err)
	}

	out := OutputPath(path)
	if err := writeFileAtomic(out, []byte(result.Description+"\n")); err != nil {
		return fmt.Errorf("write chapters for %s: %w", path, err)
	}

	ep.logger.Info("wrote chapters",
		"path", path,
		"output", out,
		"run_id", result.RunID,
		"chapters", len(result.Chapters),
	)
	return nil
}

// handleRemovedFile removes the description file left behind by a deleted transcript.
func (ep *EventProcessor) handleRemovedFile(path string) error {
	ep.locks.forget(path)

	out := OutputPath(path)
	if err := os.Remove(out); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("remove %s: %w", out, err)
	}

	ep.logger.Info("removed chapters for deleted transcript", "path", path, "output", out)
	return nil
}

func isStale(path string) bool {
	src, err := os.Stat(path)
	if err != nil {
		return false
	}
	dst, err := os.Stat(OutputPath(path))
	if err != nil {
		return true
	}
	return dst.ModTime().Before(src.ModTime())
}

// writeFileAtomic writes through a temp file in the same directory and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".chapters-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}
