package models

import "time"

// SearchDocument is the denormalized projection of an ArchiveItem stored
// in the search index, keyed by the item's canonical id. It deliberately
// excludes the binary payload and the full aiInsights text: the index
// serves matching and snippeting, not detail rendering.
type SearchDocument struct {
	ID          string        `json:"_id"`
	Title       LocalizedText `json:"title"`
	Description LocalizedText `json:"description"`
	Tags        []string      `json:"tags,omitempty"`
	Metadata    *ItemMetadata `json:"metadata,omitempty"`
	Featured    bool          `json:"featured"`
	Order       int           `json:"order"`
	CreatedAt   time.Time     `json:"_createdAt"`
	UpdatedAt   time.Time     `json:"_updatedAt"`
}

// NewSearchDocument projects a canonical record into its index form.
func NewSearchDocument(item *ArchiveItem) SearchDocument {
	return SearchDocument{
		ID:          item.ID,
		Title:       item.Title,
		Description: item.Description,
		Tags:        item.Tags,
		Metadata:    item.Metadata,
		Featured:    item.Featured,
		Order:       item.Order,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}
