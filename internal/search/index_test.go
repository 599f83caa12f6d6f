package search

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawHit(t *testing.T, payload string) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(payload), &m))
	return m
}

func TestDecodeHit(t *testing.T) {
	raw := rawHit(t, `{
		"_id": "item-1",
		"title": {"en": "Sunset Beach", "ar": "شاطئ الغروب"},
		"description": {"en": "Evening light"},
		"tags": ["nature", "sea"],
		"featured": true,
		"order": 3,
		"_createdAt": "2024-03-01T12:00:00Z",
		"_updatedAt": "2024-03-02T08:30:00Z",
		"_formatted": {
			"title": {"en": "<em>Sunset</em> Beach"}
		}
	}`)

	hit, err := decodeHit(raw)
	require.NoError(t, err)

	assert.Equal(t, "item-1", hit.Document.ID)
	assert.Equal(t, "Sunset Beach", hit.Document.Title.EN)
	assert.Equal(t, "شاطئ الغروب", hit.Document.Title.AR)
	assert.Equal(t, []string{"nature", "sea"}, hit.Document.Tags)
	assert.True(t, hit.Document.Featured)
	assert.Equal(t, 3, hit.Document.Order)
	assert.Equal(t, 2024, hit.Document.CreatedAt.Year())

	require.NotNil(t, hit.Formatted)
	title := hit.Formatted["title"].(map[string]interface{})
	assert.Equal(t, "<em>Sunset</em> Beach", title["en"])
}

func TestDecodeHitWithoutFormatted(t *testing.T) {
	raw := rawHit(t, `{"_id": "item-2", "title": {"en": "Gate"}}`)

	hit, err := decodeHit(raw)
	require.NoError(t, err)
	assert.Equal(t, "item-2", hit.Document.ID)
	assert.Nil(t, hit.Formatted)
}

func TestDecodeHitRejectsNonObject(t *testing.T) {
	_, err := decodeHit("not a map")
	assert.Error(t, err)
}

func TestIndexSettings(t *testing.T) {
	assert.Contains(t, searchableAttributes, "title.ar")
	assert.Contains(t, searchableAttributes, "description.en")
	assert.Contains(t, filterableAttributes, "featured")
	assert.Contains(t, sortableAttributes, "order")
	assert.Equal(t, []string{"words", "typo", "proximity", "attribute", "sort", "exactness"}, rankingRules)
}
