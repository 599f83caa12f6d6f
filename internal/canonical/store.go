package canonical

import (
	"context"
	"fmt"

	"github.com/turath/archive-sync/internal/models"
	"github.com/turath/archive-sync/pkg/logger"
)

// detailProjection includes aiInsights; the list projection omits it,
// matching what gallery views actually render.
const (
	detailProjection = `{_id, _createdAt, _updatedAt, title, slug, description, tags, metadata, aiInsights, image, r2Url, featured, order}`
	listProjection   = `{_id, _createdAt, _updatedAt, title, slug, description, tags, metadata, image, r2Url, featured, order}`
)

// Create persists a new archive item. The store assigns the id and
// timestamps; slug uniqueness is enforced by the store, not here.
func (c *Client) Create(ctx context.Context, item *models.ArchiveItem) (*models.ArchiveItem, error) {
	doc, err := c.mutate(ctx, "canonical.create", []map[string]interface{}{
		{"create": createPayload(item)},
	})
	if err != nil {
		return nil, err
	}

	created := doc.toItem(c.logger)
	c.logger.Info("Created archive item",
		logger.String("id", created.ID),
		logger.String("slug", created.Slug),
	)
	return created, nil
}

// Patch applies a partial update by id and returns the updated record.
// Set keys may use dotted paths, e.g. "aiInsights.en".
func (c *Client) Patch(ctx context.Context, id string, set map[string]interface{}) (*models.ArchiveItem, error) {
	if _, err := c.GetByID(ctx, id); err != nil {
		return nil, err
	}

	doc, err := c.mutate(ctx, "canonical.patch", []map[string]interface{}{
		{"patch": map[string]interface{}{
			"id":  id,
			"set": set,
		}},
	})
	if err != nil {
		return nil, err
	}
	return doc.toItem(c.logger), nil
}

// GetByID fetches one item by its canonical id.
func (c *Client) GetByID(ctx context.Context, id string) (*models.ArchiveItem, error) {
	query := fmt.Sprintf(`*[_type == "%s" && _id == $id][0] %s`, documentType, detailProjection)
	var doc document
	if err := c.fetch(ctx, query, map[string]interface{}{"id": id}, &doc); err != nil {
		return nil, err
	}
	return doc.toItem(c.logger), nil
}

// GetBySlug fetches one item by its URL slug, for detail pages.
func (c *Client) GetBySlug(ctx context.Context, slug string) (*models.ArchiveItem, error) {
	query := fmt.Sprintf(`*[_type == "%s" && slug.current == $slug][0] %s`, documentType, detailProjection)
	var doc document
	if err := c.fetch(ctx, query, map[string]interface{}{"slug": slug}, &doc); err != nil {
		return nil, err
	}
	return doc.toItem(c.logger), nil
}

// List returns a page of items ordered by creation time descending.
func (c *Client) List(ctx context.Context, offset, limit int) ([]*models.ArchiveItem, error) {
	query := fmt.Sprintf(`*[_type == "%s"] | order(_createdAt desc) [%d...%d] %s`,
		documentType, offset, offset+limit, listProjection)
	var docs []document
	if err := c.fetch(ctx, query, nil, &docs); err != nil {
		return nil, err
	}

	items := make([]*models.ArchiveItem, len(docs))
	for i := range docs {
		items[i] = docs[i].toItem(c.logger)
	}
	return items, nil
}

// ListFeatured returns curated items ordered by their manual order field.
func (c *Client) ListFeatured(ctx context.Context) ([]*models.ArchiveItem, error) {
	query := fmt.Sprintf(`*[_type == "%s" && featured == true] | order(order asc) %s`,
		documentType, listProjection)
	var docs []document
	if err := c.fetch(ctx, query, nil, &docs); err != nil {
		return nil, err
	}

	items := make([]*models.ArchiveItem, len(docs))
	for i := range docs {
		items[i] = docs[i].toItem(c.logger)
	}
	return items, nil
}

// Count returns the total number of archive items.
func (c *Client) Count(ctx context.Context) (int, error) {
	query := fmt.Sprintf(`count(*[_type == "%s"])`, documentType)
	var n int
	if err := c.fetch(ctx, query, nil, &n); err != nil {
		return 0, err
	}
	return n, nil
}
