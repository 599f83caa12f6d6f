package canonical

import (
	"time"

	"github.com/turath/archive-sync/internal/models"
	"github.com/turath/archive-sync/pkg/logger"
)

const documentType = "archiveImage"

// document is the wire form of an archive item in the canonical store.
// Slugs are nested objects and timestamps are RFC 3339 strings there.
type document struct {
	ID          string                `json:"_id,omitempty"`
	Type        string                `json:"_type,omitempty"`
	CreatedAt   string                `json:"_createdAt,omitempty"`
	UpdatedAt   string                `json:"_updatedAt,omitempty"`
	Title       models.LocalizedText  `json:"title"`
	Slug        *slugField            `json:"slug,omitempty"`
	Description *models.LocalizedText `json:"description,omitempty"`
	Tags        []string              `json:"tags,omitempty"`
	Metadata    *models.ItemMetadata  `json:"metadata,omitempty"`
	AIInsights  *models.AIInsights    `json:"aiInsights,omitempty"`
	Image       *imageField           `json:"image,omitempty"`
	R2URL       string                `json:"r2Url,omitempty"`
	Featured    bool                  `json:"featured"`
	Order       int                   `json:"order"`
}

type slugField struct {
	Type    string `json:"_type,omitempty"`
	Current string `json:"current"`
}

type imageField struct {
	Type  string   `json:"_type,omitempty"`
	Asset assetRef `json:"asset"`
}

type assetRef struct {
	Type string `json:"_type"`
	Ref  string `json:"_ref"`
}

func (d *document) toItem(log logger.Logger) *models.ArchiveItem {
	item := &models.ArchiveItem{
		ID:        d.ID,
		Title:     d.Title,
		Tags:      d.Tags,
		Metadata:  d.Metadata,
		BinaryURL: d.R2URL,
		Featured:  d.Featured,
		Order:     d.Order,
	}
	if d.Slug != nil {
		item.Slug = d.Slug.Current
	}
	if d.Description != nil {
		item.Description = *d.Description
	}
	if d.AIInsights != nil {
		item.AIInsights = d.AIInsights
	}
	if d.Image != nil {
		item.AssetRef = d.Image.Asset.Ref
	}
	item.CreatedAt = d.parseTime(log, "_createdAt", d.CreatedAt)
	item.UpdatedAt = d.parseTime(log, "_updatedAt", d.UpdatedAt)
	return item
}

// parseTime decodes a store timestamp. A malformed value degrades to the
// zero time, which would corrupt index sort keys, so it is logged.
func (d *document) parseTime(log logger.Logger, field, value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		log.Warn("Unparseable document timestamp",
			logger.String("id", d.ID),
			logger.String("field", field),
			logger.String("value", value),
		)
		return time.Time{}
	}
	return t
}

// createPayload builds the mutation body for a new item. The store
// assigns _id, _createdAt and _updatedAt.
func createPayload(item *models.ArchiveItem) map[string]interface{} {
	doc := map[string]interface{}{
		"_type": documentType,
		"title": item.Title,
		"slug": map[string]interface{}{
			"_type":   "slug",
			"current": item.Slug,
		},
		"featured": item.Featured,
		"order":    item.Order,
	}
	if item.BinaryURL != "" {
		doc["r2Url"] = item.BinaryURL
	}
	if item.AssetRef != "" {
		doc["image"] = map[string]interface{}{
			"_type": "image",
			"asset": map[string]interface{}{
				"_type": "reference",
				"_ref":  item.AssetRef,
			},
		}
	}
	if item.Description.EN != "" || item.Description.AR != "" {
		doc["description"] = item.Description
	}
	if len(item.Tags) > 0 {
		doc["tags"] = item.Tags
	}
	if item.Metadata != nil {
		doc["metadata"] = item.Metadata
	}
	return doc
}
