package providers

import (
	"github.com/samber/do/v2"

	"github.com/chaptermatic/chaptermatic-server/internal/chapters"
	"github.com/chaptermatic/chaptermatic-server/internal/config"
	"github.com/chaptermatic/chaptermatic-server/internal/logger"
	"github.com/chaptermatic/chaptermatic-server/internal/service"
)

// ProvideSegmenter provides the chapter segmenter with any configured rule overrides.
func ProvideSegmenter(i do.Injector) (*chapters.Segmenter, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	rules := cfg.Segmenter.Rules.Merge(chapters.DefaultRules())
	if cfg.Segmenter.RulesFile != "" {
		log.Info("Loaded segmentation rules",
			"file", cfg.Segmenter.RulesFile,
			"keywords", len(rules.TransitionKeywords),
			"min_transition_elapsed", rules.MinTransitionElapsed,
			"min_gap_elapsed", rules.MinGapElapsed,
			"pause_threshold", rules.PauseThreshold,
		)
	}

	return chapters.NewSegmenter(rules), nil
}

// ProvideChapterService provides the chapter service.
func ProvideChapterService(i do.Injector) (*service.ChapterService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	segmenter := do.MustInvoke[*chapters.Segmenter](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewChapterService(storeHandle.Store, searchService, segmenter, log.Logger), nil
}
