package blob

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turath/archive-sync/internal/apperr"
)

type fakeStore struct {
	objects map[string][]byte
	listErr error
	putErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (f *fakeStore) Put(ctx context.Context, reader io.Reader, size int64, key, contentType string) error {
	if f.putErr != nil {
		return f.putErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	f.objects[key] = data
	return nil
}

func (f *fakeStore) List(ctx context.Context) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	keys := make([]string, 0, len(f.objects))
	for k := range f.objects {
		keys = append(keys, k)
	}
	return keys, nil
}

func (f *fakeStore) URL(key string) string {
	return "https://cdn.example.com/" + key
}

func TestObjectKey(t *testing.T) {
	at := time.UnixMilli(1709290000123)
	assert.Equal(t, "images/1709290000123-sunset.jpg", ObjectKey("sunset.jpg", at))
}

func TestSinkPut(t *testing.T) {
	store := newFakeStore()
	sink := WrapStore(store)
	sink.now = func() time.Time { return time.UnixMilli(42) }

	url, err := sink.Put(context.Background(), strings.NewReader("payload"), 7, "sunset.jpg", "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/images/42-sunset.jpg", url)
	assert.Equal(t, []byte("payload"), store.objects["images/42-sunset.jpg"])
}

func TestSinkPutUnavailable(t *testing.T) {
	store := newFakeStore()
	store.putErr = errors.New("connection reset")
	sink := WrapStore(store)

	_, err := sink.Put(context.Background(), strings.NewReader("x"), 1, "a.jpg", "image/jpeg")
	assert.True(t, errors.Is(err, apperr.ErrUnavailable))
}

func TestSinkList(t *testing.T) {
	store := newFakeStore()
	store.objects["images/1-a.jpg"] = []byte("a")
	sink := WrapStore(store)

	keys, err := sink.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"images/1-a.jpg"}, keys)

	store.listErr = errors.New("bucket gone")
	_, err = sink.List(context.Background())
	assert.True(t, errors.Is(err, apperr.ErrUnavailable))
}
