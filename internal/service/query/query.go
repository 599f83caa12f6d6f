// Package query is the unified read path: detail lookups always hit the
// canonical store for freshness, text search always hits the index for
// speed and ranking. The two are never mixed in one call.
package query

import (
	"context"

	"github.com/turath/archive-sync/internal/models"
	"github.com/turath/archive-sync/internal/search"
)

// CanonicalReader is the read slice of the canonical adapter.
type CanonicalReader interface {
	GetByID(ctx context.Context, id string) (*models.ArchiveItem, error)
	GetBySlug(ctx context.Context, slug string) (*models.ArchiveItem, error)
	List(ctx context.Context, offset, limit int) ([]*models.ArchiveItem, error)
	ListFeatured(ctx context.Context) ([]*models.ArchiveItem, error)
	Count(ctx context.Context) (int, error)
}

// Searcher runs ranked index queries.
type Searcher interface {
	Search(ctx context.Context, query string, locale models.Locale, limit int64) (*search.Result, error)
}

// Page is one gallery page plus the total for pagination.
type Page struct {
	Items []*models.ArchiveItem `json:"items"`
	Total int                   `json:"total"`
}

type Facade struct {
	canonical CanonicalReader
	searcher  Searcher
}

func NewFacade(canonical CanonicalReader, searcher Searcher) *Facade {
	return &Facade{canonical: canonical, searcher: searcher}
}

// GetByID fetches one item canonically, including fields the index
// deliberately excludes, such as aiInsights. Misses are NotFound.
func (f *Facade) GetByID(ctx context.Context, id string) (*models.ArchiveItem, error) {
	return f.canonical.GetByID(ctx, id)
}

// GetBySlug fetches one item canonically for detail pages.
func (f *Facade) GetBySlug(ctx context.Context, slug string) (*models.ArchiveItem, error) {
	return f.canonical.GetBySlug(ctx, slug)
}

// ListPage returns a creation-time-descending gallery page.
func (f *Facade) ListPage(ctx context.Context, offset, limit int) (*Page, error) {
	items, err := f.canonical.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	total, err := f.canonical.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &Page{Items: items, Total: total}, nil
}

// Featured returns curated items in manual order.
func (f *Facade) Featured(ctx context.Context) ([]*models.ArchiveItem, error) {
	return f.canonical.ListFeatured(ctx)
}

// Search runs a ranked index query. Zero matches is an empty result,
// not an error.
func (f *Facade) Search(ctx context.Context, query string, locale models.Locale, limit int64) (*search.Result, error) {
	return f.searcher.Search(ctx, query, locale, limit)
}
