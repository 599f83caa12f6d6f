package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turath/archive-sync/internal/apperr"
	"github.com/turath/archive-sync/internal/models"
	"github.com/turath/archive-sync/pkg/logger"
)

type fakeSink struct {
	puts   []string
	putErr error
}

func (f *fakeSink) Put(ctx context.Context, reader io.Reader, size int64, filename, contentType string) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	f.puts = append(f.puts, filename)
	return "https://cdn.example.com/images/1-" + filename, nil
}

type fakeCanonical struct {
	created   []*models.ArchiveItem
	createErr error
	assetErr  error
	nextID    int
}

func (f *fakeCanonical) Create(ctx context.Context, item *models.ArchiveItem) (*models.ArchiveItem, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	stored := *item
	stored.ID = fmt.Sprintf("item-%d", f.nextID)
	f.created = append(f.created, &stored)
	return &stored, nil
}

func (f *fakeCanonical) UploadAsset(ctx context.Context, reader io.Reader, filename, contentType string) (string, error) {
	if f.assetErr != nil {
		return "", f.assetErr
	}
	return "image-" + filename, nil
}

type fakeIndexer struct {
	docs      []models.SearchDocument
	upsertErr error
}

func (f *fakeIndexer) Upsert(ctx context.Context, docs []models.SearchDocument) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.docs = append(f.docs, docs...)
	return nil
}

func newTestService(sink *fakeSink, canonical *fakeCanonical, indexer *fakeIndexer) *Service {
	return NewService(sink, canonical, indexer, logger.NewTestLogger(), nil)
}

func TestIngestSuccess(t *testing.T) {
	sink := &fakeSink{}
	canonical := &fakeCanonical{}
	indexer := &fakeIndexer{}
	svc := newTestService(sink, canonical, indexer)

	result, err := svc.Ingest(context.Background(), strings.NewReader("jpegbytes"), 9, "sunset-beach.jpg", "image/jpeg", models.LocaleEN)
	require.NoError(t, err)

	require.NotNil(t, result.Item)
	assert.Equal(t, "sunset-beach", result.Item.Slug)
	assert.Equal(t, "sunset-beach", result.Item.Title.EN)
	assert.Equal(t, "https://cdn.example.com/images/1-sunset-beach.jpg", result.BinaryURL)
	assert.Equal(t, []string{"r2", "asset"}, result.Sinks)
	assert.True(t, result.Indexed)
	assert.False(t, result.Degraded())
	assert.Equal(t, models.UploadSuccess, result.Task.State)

	require.Len(t, indexer.docs, 1)
	assert.Equal(t, result.Item.ID, indexer.docs[0].ID)
}

func TestIngestBlobFailureAbortsBeforeCanonicalWrite(t *testing.T) {
	sink := &fakeSink{putErr: apperr.Unavailable("blob.put", errors.New("timeout"))}
	canonical := &fakeCanonical{}
	indexer := &fakeIndexer{}
	svc := newTestService(sink, canonical, indexer)

	_, err := svc.Ingest(context.Background(), strings.NewReader("x"), 1, "a.jpg", "image/jpeg", models.LocaleEN)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrUnavailable))
	assert.Empty(t, canonical.created)
	assert.Empty(t, indexer.docs)
}

func TestIngestAssetFailureIsBestEffort(t *testing.T) {
	sink := &fakeSink{}
	canonical := &fakeCanonical{assetErr: errors.New("asset api down")}
	indexer := &fakeIndexer{}
	svc := newTestService(sink, canonical, indexer)

	result, err := svc.Ingest(context.Background(), strings.NewReader("x"), 1, "a.jpg", "image/jpeg", models.LocaleEN)
	require.NoError(t, err)
	assert.Equal(t, []string{"r2"}, result.Sinks)
	assert.Empty(t, result.Item.AssetRef)
	assert.True(t, result.Indexed)
}

func TestIngestCanonicalFailureAborts(t *testing.T) {
	sink := &fakeSink{}
	canonical := &fakeCanonical{createErr: apperr.Rejected("canonical.create", errors.New("missing title"))}
	indexer := &fakeIndexer{}
	svc := newTestService(sink, canonical, indexer)

	_, err := svc.Ingest(context.Background(), strings.NewReader("x"), 1, "a.jpg", "image/jpeg", models.LocaleEN)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrRejected))
	assert.Empty(t, indexer.docs)
}

func TestIngestIndexFailureDegrades(t *testing.T) {
	sink := &fakeSink{}
	canonical := &fakeCanonical{}
	indexer := &fakeIndexer{upsertErr: apperr.Unavailable("search.upsert", errors.New("503"))}
	svc := newTestService(sink, canonical, indexer)

	result, err := svc.Ingest(context.Background(), strings.NewReader("x"), 1, "a.jpg", "image/jpeg", models.LocaleEN)
	require.NoError(t, err)

	require.NotNil(t, result.Item)
	assert.False(t, result.Indexed)
	assert.True(t, result.Degraded())
	assert.Contains(t, result.IndexError, "search indexing incomplete")
	assert.Len(t, canonical.created, 1)
	assert.Equal(t, models.UploadSuccess, result.Task.State)
}

func TestIngestValidation(t *testing.T) {
	svc := newTestService(&fakeSink{}, &fakeCanonical{}, &fakeIndexer{})

	_, err := svc.Ingest(context.Background(), strings.NewReader("x"), 1, "", "image/jpeg", models.LocaleEN)
	assert.True(t, errors.Is(err, apperr.ErrClient))

	_, err = svc.Ingest(context.Background(), strings.NewReader("x"), 1, "script.exe", "application/octet-stream", models.LocaleEN)
	assert.True(t, errors.Is(err, apperr.ErrClient))

	_, err = svc.Ingest(context.Background(), strings.NewReader("x"), 51*1024*1024, "big.jpg", "image/jpeg", models.LocaleEN)
	assert.True(t, errors.Is(err, apperr.ErrClient))

	_, err = svc.Ingest(context.Background(), strings.NewReader(""), 0, "empty.jpg", "image/jpeg", models.LocaleEN)
	assert.True(t, errors.Is(err, apperr.ErrClient))
}

func TestIngestOversizePayloadRejectedEvenWithUnderstatedSize(t *testing.T) {
	cfg := &ServiceConfig{MaxFileSize: 8, AllowedTypes: []string{".jpg"}}
	svc := NewService(&fakeSink{}, &fakeCanonical{}, &fakeIndexer{}, logger.NewTestLogger(), cfg)

	_, err := svc.Ingest(context.Background(), strings.NewReader("way too many bytes"), 4, "a.jpg", "image/jpeg", models.LocaleEN)
	assert.True(t, errors.Is(err, apperr.ErrClient))
}

func TestIngestInvalidLocaleDefaultsToEnglish(t *testing.T) {
	canonical := &fakeCanonical{}
	svc := newTestService(&fakeSink{}, canonical, &fakeIndexer{})

	result, err := svc.Ingest(context.Background(), strings.NewReader("x"), 1, "a.jpg", "image/jpeg", models.Locale("zz"))
	require.NoError(t, err)
	assert.Equal(t, models.LocaleEN, result.Task.Locale)
}

func TestIngestBatchSequentialWithPerFileErrors(t *testing.T) {
	sink := &fakeSink{}
	canonical := &fakeCanonical{}
	svc := newTestService(sink, canonical, &fakeIndexer{})

	files := []BatchFile{
		{
			Filename:    "first.jpg",
			ContentType: "image/jpeg",
			Size:        5,
			Open:        func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader("aaaaa")), nil },
		},
		{
			Filename:    "broken.jpg",
			ContentType: "image/jpeg",
			Size:        5,
			Open:        func() (io.ReadCloser, error) { return nil, errors.New("disk error") },
		},
		{
			Filename:    "third.jpg",
			ContentType: "image/jpeg",
			Size:        5,
			Open:        func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader("ccccc")), nil },
		},
	}

	results := svc.IngestBatch(context.Background(), files)
	require.Len(t, results, 3)

	assert.NotNil(t, results[0].Result)
	assert.Empty(t, results[0].Error)
	assert.Nil(t, results[1].Result)
	assert.Contains(t, results[1].Error, "failed to open file")
	assert.NotNil(t, results[2].Result)

	// One failed file never blocks the ones after it.
	assert.Equal(t, []string{"first.jpg", "third.jpg"}, sink.puts)
	require.Len(t, canonical.created, 2)
}
