// Package insights generates per-locale AI insight text for archive
// items and persists it on the canonical record.
package insights

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/turath/archive-sync/internal/apperr"
	"github.com/turath/archive-sync/internal/models"
	"github.com/turath/archive-sync/pkg/logger"
)

// CanonicalStore is the slice of the canonical adapter this service needs.
type CanonicalStore interface {
	GetByID(ctx context.Context, id string) (*models.ArchiveItem, error)
	Patch(ctx context.Context, id string, set map[string]interface{}) (*models.ArchiveItem, error)
}

// Generator is the opaque external insight collaborator: plain text for
// an image URL, or failure.
type Generator interface {
	Generate(ctx context.Context, imageURL string, locale models.Locale) (string, error)
}

type Service struct {
	canonical CanonicalStore
	generator Generator
	logger    logger.Logger
	// group collapses concurrent generations for the same (item, locale)
	// into one upstream call. Cross-process races stay last-write-wins,
	// matching the store's patch semantics.
	group singleflight.Group
	now   func() time.Time
}

func NewService(canonical CanonicalStore, generator Generator, log logger.Logger) *Service {
	return &Service{
		canonical: canonical,
		generator: generator,
		logger:    log,
		now:       time.Now,
	}
}

// Generate fetches the item, produces insight text for the locale and
// patches it onto the canonical record with a generation timestamp. The
// updated insight text is returned.
func (s *Service) Generate(ctx context.Context, id string, locale models.Locale) (string, error) {
	if id == "" {
		return "", apperr.Client("insights.generate", fmt.Errorf("missing item id"))
	}
	if !locale.Valid() {
		return "", apperr.Client("insights.generate", fmt.Errorf("unsupported locale %q", locale))
	}

	key := id + ":" + string(locale)
	text, err, shared := s.group.Do(key, func() (interface{}, error) {
		return s.generate(ctx, id, locale)
	})
	if err != nil {
		return "", err
	}
	if shared {
		s.logger.Debug("Insight generation shared with concurrent caller",
			logger.String("id", id),
			logger.String("locale", string(locale)),
		)
	}
	return text.(string), nil
}

func (s *Service) generate(ctx context.Context, id string, locale models.Locale) (string, error) {
	item, err := s.canonical.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	imageURL, ok := item.RenderRef()
	if !ok {
		return "", apperr.Rejected("insights.generate", fmt.Errorf("item %s has no resolvable binary", id))
	}

	text, err := s.generator.Generate(ctx, imageURL, locale)
	if err != nil {
		return "", err
	}

	// Dotted paths patch only this locale's text, preserving the other
	// locale's previously generated insight.
	set := map[string]interface{}{
		fmt.Sprintf("aiInsights.%s", locale): text,
		"aiInsights.generatedAt":             s.now().UTC().Format(time.RFC3339),
	}
	if _, err := s.canonical.Patch(ctx, id, set); err != nil {
		return "", err
	}

	s.logger.Info("Generated AI insights",
		logger.String("id", id),
		logger.String("locale", string(locale)),
	)
	return text, nil
}
