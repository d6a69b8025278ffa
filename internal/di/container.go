// Package di provides dependency injection configuration for the Chaptermatic server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/chaptermatic/chaptermatic-server/internal/chapters"
	"github.com/chaptermatic/chaptermatic-server/internal/config"
	"github.com/chaptermatic/chaptermatic-server/internal/di/providers"
	"github.com/chaptermatic/chaptermatic-server/internal/logger"
	"github.com/chaptermatic/chaptermatic-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
// A nil cfg loads configuration from the process arguments and environment.
func NewContainer(cfg *config.Config) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	if cfg != nil {
		do.ProvideValue(injector, cfg)
	} else {
		do.Provide(injector, providers.ProvideConfig)
	}
	do.Provide(injector, providers.ProvideLogger)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideSearchService)

	// Business services
	do.Provide(injector, providers.ProvideSegmenter)
	do.Provide(injector, providers.ProvideChapterService)

	// Workers
	do.Provide(injector, providers.ProvideInbox)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)

	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.SearchIndexHandle](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*service.SearchService](injector)
	_ = do.MustInvoke[*chapters.Segmenter](injector)
	_ = do.MustInvoke[*service.ChapterService](injector)

	// Workers
	if _, err := do.Invoke[*providers.InboxHandle](injector); err != nil {
		return err
	}

	// Server
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}

	// Trigger search reindex if needed
	providers.TriggerSearchReindexIfNeeded(injector)

	return nil
}
