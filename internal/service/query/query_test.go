package query

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turath/archive-sync/internal/apperr"
	"github.com/turath/archive-sync/internal/models"
	"github.com/turath/archive-sync/internal/search"
)

type fakeReader struct {
	bySlug map[string]*models.ArchiveItem
	items  []*models.ArchiveItem
}

func (f *fakeReader) GetByID(ctx context.Context, id string) (*models.ArchiveItem, error) {
	for _, item := range f.items {
		if item.ID == id {
			return item, nil
		}
	}
	return nil, apperr.NotFound("canonical.getById", nil)
}

func (f *fakeReader) GetBySlug(ctx context.Context, slug string) (*models.ArchiveItem, error) {
	if item, ok := f.bySlug[slug]; ok {
		return item, nil
	}
	return nil, apperr.NotFound("canonical.getBySlug", nil)
}

func (f *fakeReader) List(ctx context.Context, offset, limit int) ([]*models.ArchiveItem, error) {
	if offset >= len(f.items) {
		return nil, nil
	}
	end := offset + limit
	if end > len(f.items) {
		end = len(f.items)
	}
	return f.items[offset:end], nil
}

func (f *fakeReader) ListFeatured(ctx context.Context) ([]*models.ArchiveItem, error) {
	var featured []*models.ArchiveItem
	for _, item := range f.items {
		if item.Featured {
			featured = append(featured, item)
		}
	}
	return featured, nil
}

func (f *fakeReader) Count(ctx context.Context) (int, error) {
	return len(f.items), nil
}

type fakeSearcher struct {
	result *search.Result
	err    error
	query  string
	locale models.Locale
}

func (f *fakeSearcher) Search(ctx context.Context, query string, locale models.Locale, limit int64) (*search.Result, error) {
	f.query = query
	f.locale = locale
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func TestGetBySlugNotFound(t *testing.T) {
	facade := NewFacade(&fakeReader{bySlug: map[string]*models.ArchiveItem{}}, &fakeSearcher{})

	_, err := facade.GetBySlug(context.Background(), "missing")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestGetBySlugHit(t *testing.T) {
	item := &models.ArchiveItem{ID: "item-1", Slug: "sunset"}
	facade := NewFacade(&fakeReader{bySlug: map[string]*models.ArchiveItem{"sunset": item}}, &fakeSearcher{})

	got, err := facade.GetBySlug(context.Background(), "sunset")
	require.NoError(t, err)
	assert.Equal(t, item, got)
}

func TestListPage(t *testing.T) {
	reader := &fakeReader{items: []*models.ArchiveItem{
		{ID: "item-1"}, {ID: "item-2"}, {ID: "item-3"},
	}}
	facade := NewFacade(reader, &fakeSearcher{})

	page, err := facade.ListPage(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "item-2", page.Items[0].ID)
}

func TestFeatured(t *testing.T) {
	reader := &fakeReader{items: []*models.ArchiveItem{
		{ID: "item-1"},
		{ID: "item-2", Featured: true},
	}}
	facade := NewFacade(reader, &fakeSearcher{})

	items, err := facade.Featured(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "item-2", items[0].ID)
}

func TestSearchEmptyResultIsNotAnError(t *testing.T) {
	searcher := &fakeSearcher{result: &search.Result{Hits: []search.Hit{}, Query: "nothing"}}
	facade := NewFacade(&fakeReader{}, searcher)

	result, err := facade.Search(context.Background(), "nothing", models.LocaleAR, 50)
	require.NoError(t, err)
	assert.Empty(t, result.Hits)
	assert.Equal(t, models.LocaleAR, searcher.locale)
}
