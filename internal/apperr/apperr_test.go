package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindMatching(t *testing.T) {
	cause := fmt.Errorf("connection refused")

	err := Unavailable("search.upsert", cause)
	assert.True(t, errors.Is(err, ErrUnavailable))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrNotFound))

	err = NotFound("canonical.getById", nil)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestErrorString(t *testing.T) {
	err := Rejected("canonical.create", fmt.Errorf("missing title"))
	assert.Equal(t, "canonical.create: rejected by store: missing title", err.Error())

	err = NotFound("canonical.getBySlug", nil)
	assert.Equal(t, "canonical.getBySlug: not found", err.Error())
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(Unavailable("blob.put", fmt.Errorf("timeout"))))
	assert.False(t, Retryable(Client("ingest.validate", fmt.Errorf("bad ext"))))
	assert.False(t, Retryable(NotFound("canonical.getById", nil)))
	assert.False(t, Retryable(Rejected("canonical.create", nil)))
	assert.False(t, Retryable(fmt.Errorf("plain")))
}

func TestWrappedKindSurvivesWrapping(t *testing.T) {
	inner := Unavailable("search.upsert", fmt.Errorf("503"))
	outer := Degraded("ingest.index", inner)

	assert.True(t, errors.Is(outer, ErrDegraded))
	assert.True(t, errors.Is(outer, ErrUnavailable))
}
