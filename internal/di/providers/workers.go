package providers

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/samber/do/v2"

	"github.com/chaptermatic/chaptermatic-server/internal/config"
	"github.com/chaptermatic/chaptermatic-server/internal/logger"
	"github.com/chaptermatic/chaptermatic-server/internal/processor"
	"github.com/chaptermatic/chaptermatic-server/internal/service"
	"github.com/chaptermatic/chaptermatic-server/internal/watcher"
)

// transcriptExtensions are the inbox files the worker reacts to.
var transcriptExtensions = []string{".json", ".srt"}

// InboxHandle wraps the inbox watcher and processor with shutdown capability.
// Watcher and Processor are nil when the inbox is disabled.
type InboxHandle struct {
	Watcher   *watcher.Watcher
	Processor *processor.EventProcessor

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Enabled reports whether the inbox worker is running.
func (h *InboxHandle) Enabled() bool {
	return h.Watcher != nil
}

// Shutdown implements do.Shutdownable.
func (h *InboxHandle) Shutdown() error {
	if !h.Enabled() {
		return nil
	}
	h.cancel()
	err := h.Watcher.Stop()
	h.wg.Wait()
	return err
}

// ProvideInbox provides the transcript inbox worker.
func ProvideInbox(i do.Injector) (*InboxHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Inbox.Enabled {
		log.Info("Transcript inbox disabled by configuration")
		return &InboxHandle{}, nil
	}

	chapterService := do.MustInvoke[*service.ChapterService](i)

	if err := os.MkdirAll(cfg.Inbox.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create inbox directory: %w", err)
	}

	var ignore []string
	if len(cfg.Inbox.IgnorePatterns) > 0 {
		ignore = cfg.Inbox.IgnorePatterns
	}

	w, err := watcher.New(log.Logger, watcher.Options{
		IgnorePatterns: ignore,
		IgnoreHidden:   true,
		SettleDelay:    cfg.Inbox.SettleDelay,
		Extensions:     transcriptExtensions,
	})
	if err != nil {
		return nil, err
	}
	if err := w.Watch(cfg.Inbox.Path); err != nil {
		_ = w.Stop()
		return nil, err
	}

	ep := processor.NewEventProcessor(chapterService, cfg.Inbox.MaxConcurrent, log.Logger)

	ctx, cancel := context.WithCancel(context.Background())
	h := &InboxHandle{Watcher: w, Processor: ep, cancel: cancel}

	h.wg.Add(3)

	go func() {
		defer h.wg.Done()
		if err := w.Start(ctx); err != nil {
			log.Error("Inbox watcher error", "error", err)
		}
	}()

	go func() {
		defer h.wg.Done()
		for err := range w.Errors() {
			log.Warn("inbox watcher error", "error", err)
		}
	}()

	// Catch up on transcripts dropped while the server was down, then follow live events.
	go func() {
		defer h.wg.Done()
		if n, err := ep.ProcessExisting(ctx, cfg.Inbox.Path); err != nil {
			log.Warn("Inbox catch-up interrupted", "error", err)
		} else if n > 0 {
			log.Info("Inbox catch-up completed", "processed", n)
		}
		ep.Run(ctx, w.Events())
	}()

	log.Info("Transcript inbox started",
		"path", cfg.Inbox.Path,
		"settle_delay", cfg.Inbox.SettleDelay,
		"max_concurrent", cfg.Inbox.MaxConcurrent,
	)

	return h, nil
}
