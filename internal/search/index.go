// Package search is the adapter for the Meilisearch index that holds the
// denormalized, query-optimized copy of the archive. The index is derived
// state: anything here can be rebuilt from the canonical store.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/meilisearch/meilisearch-go"

	"github.com/turath/archive-sync/config"
	"github.com/turath/archive-sync/internal/apperr"
	"github.com/turath/archive-sync/internal/models"
	"github.com/turath/archive-sync/pkg/logger"
)

const (
	primaryKey  = "_id"
	taskTimeout = 15 * 1000
)

// Index settings are declarative and idempotent: applying them twice
// yields the same index behavior.
var (
	searchableAttributes = []string{
		"title.en", "title.ar",
		"description.en", "description.ar",
		"tags",
		"metadata.author", "metadata.source",
	}
	filterableAttributes = []string{"featured", "tags", "metadata.date"}
	sortableAttributes   = []string{"_createdAt", "_updatedAt", "order"}
	rankingRules         = []string{"words", "typo", "proximity", "attribute", "sort", "exactness"}
)

// Hit is one ranked search match with highlighted snippets.
type Hit struct {
	Document  models.SearchDocument  `json:"document"`
	Formatted map[string]interface{} `json:"formatted,omitempty"`
}

// Result is a ranked result page.
type Result struct {
	Hits               []Hit  `json:"hits"`
	EstimatedTotalHits int64  `json:"estimatedTotalHits"`
	ProcessingTimeMs   int64  `json:"processingTimeMs"`
	Query              string `json:"query"`
}

// Index wraps one Meilisearch index.
type Index struct {
	client meilisearch.ServiceManager
	index  meilisearch.IndexManager
	name   string
	logger logger.Logger
}

// NewIndex builds the adapter from environment config.
func NewIndex(log logger.Logger) *Index {
	cfg := config.GetSearchConfig()
	client := meilisearch.New(cfg.Host, meilisearch.WithAPIKey(cfg.APIKey))
	return NewIndexWith(client, cfg.IndexName, log)
}

// NewIndexWith wraps an existing client, for tests.
func NewIndexWith(client meilisearch.ServiceManager, name string, log logger.Logger) *Index {
	return &Index{
		client: client,
		index:  client.Index(name),
		name:   name,
		logger: log,
	}
}

// EnsureIndex creates the index if missing and applies the declarative
// settings. An already-existing index is success, not failure; the job
// proceeds to data sync.
func (i *Index) EnsureIndex(ctx context.Context) error {
	if _, err := i.index.FetchInfo(); err != nil {
		task, err := i.client.CreateIndex(&meilisearch.IndexConfig{
			Uid:        i.name,
			PrimaryKey: primaryKey,
		})
		if err != nil {
			return apperr.Unavailable("search.ensureIndex", err)
		}
		if _, err := i.index.WaitForTask(task.TaskUID, taskTimeout); err != nil {
			// A lost creation race means the index now exists, which is
			// the state we wanted.
			if !strings.Contains(err.Error(), "index_already_exists") {
				return apperr.Unavailable("search.ensureIndex", err)
			}
		}
		i.logger.Info("Created search index", logger.String("index", i.name))
	}

	settings := []struct {
		name  string
		apply func() (*meilisearch.TaskInfo, error)
	}{
		{"searchable", func() (*meilisearch.TaskInfo, error) {
			return i.index.UpdateSearchableAttributes(&searchableAttributes)
		}},
		{"filterable", func() (*meilisearch.TaskInfo, error) {
			return i.index.UpdateFilterableAttributes(&filterableAttributes)
		}},
		{"sortable", func() (*meilisearch.TaskInfo, error) {
			return i.index.UpdateSortableAttributes(&sortableAttributes)
		}},
		{"ranking", func() (*meilisearch.TaskInfo, error) {
			return i.index.UpdateRankingRules(&rankingRules)
		}},
	}
	for _, s := range settings {
		task, err := s.apply()
		if err != nil {
			return apperr.Unavailable("search.ensureIndex."+s.name, err)
		}
		if _, err := i.index.WaitForTask(task.TaskUID, taskTimeout); err != nil {
			return apperr.Unavailable("search.ensureIndex."+s.name, err)
		}
	}

	return nil
}

// Upsert replaces whole documents by primary key. Safe to retry: a
// replace, not an increment.
func (i *Index) Upsert(ctx context.Context, docs []models.SearchDocument) error {
	if len(docs) == 0 {
		return nil
	}

	task, err := i.index.AddDocuments(docs)
	if err != nil {
		return apperr.Unavailable("search.upsert", err)
	}
	if _, err := i.index.WaitForTask(task.TaskUID, taskTimeout); err != nil {
		return apperr.Unavailable("search.upsert", err)
	}

	return nil
}

// Delete removes one document by id.
func (i *Index) Delete(ctx context.Context, id string) error {
	task, err := i.index.DeleteDocument(id)
	if err != nil {
		return apperr.Unavailable("search.delete", err)
	}
	if _, err := i.index.WaitForTask(task.TaskUID, taskTimeout); err != nil {
		return apperr.Unavailable("search.delete", err)
	}
	return nil
}

// DeleteMany removes documents by id, used by destructive resync.
func (i *Index) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	task, err := i.index.DeleteDocuments(ids)
	if err != nil {
		return apperr.Unavailable("search.deleteMany", err)
	}
	if _, err := i.index.WaitForTask(task.TaskUID, taskTimeout); err != nil {
		return apperr.Unavailable("search.deleteMany", err)
	}
	return nil
}

// Search runs a ranked query restricted to the requested locale's title
// and description fields plus the locale-independent tags.
func (i *Index) Search(ctx context.Context, query string, locale models.Locale, limit int64) (*Result, error) {
	if limit <= 0 {
		limit = 50
	}

	request := &meilisearch.SearchRequest{
		Limit:                 limit,
		AttributesToHighlight: []string{"title", "description", "tags"},
		AttributesToSearchOn: []string{
			fmt.Sprintf("title.%s", locale),
			fmt.Sprintf("description.%s", locale),
			"tags",
		},
	}

	resp, err := i.index.Search(query, request)
	if err != nil {
		return nil, apperr.Unavailable("search.query", err)
	}

	result := &Result{
		Hits:               make([]Hit, 0, len(resp.Hits)),
		EstimatedTotalHits: resp.EstimatedTotalHits,
		ProcessingTimeMs:   resp.ProcessingTimeMs,
		Query:              query,
	}
	for _, raw := range resp.Hits {
		hit, err := decodeHit(raw)
		if err != nil {
			i.logger.Warn("Skipping undecodable search hit", logger.Error(err))
			continue
		}
		result.Hits = append(result.Hits, hit)
	}

	return result, nil
}

// ListIDs pages through every indexed document id, for prune.
func (i *Index) ListIDs(ctx context.Context) ([]string, error) {
	var (
		ids    []string
		offset int64
	)
	const pageSize = int64(1000)

	for {
		var page meilisearch.DocumentsResult
		err := i.index.GetDocuments(&meilisearch.DocumentsQuery{
			Fields: []string{primaryKey},
			Offset: offset,
			Limit:  pageSize,
		}, &page)
		if err != nil {
			return nil, apperr.Unavailable("search.listIDs", err)
		}

		for _, doc := range page.Results {
			if id, ok := doc[primaryKey].(string); ok {
				ids = append(ids, id)
			}
		}

		offset += int64(len(page.Results))
		if int64(len(page.Results)) < pageSize {
			return ids, nil
		}
	}
}

// decodeHit converts a raw hit map into a typed document plus its
// _formatted highlight snippets.
func decodeHit(raw interface{}) (Hit, error) {
	hitMap, ok := raw.(map[string]interface{})
	if !ok {
		return Hit{}, fmt.Errorf("unexpected hit shape %T", raw)
	}

	formatted, _ := hitMap["_formatted"].(map[string]interface{})
	delete(hitMap, "_formatted")

	encoded, err := json.Marshal(hitMap)
	if err != nil {
		return Hit{}, err
	}
	var doc models.SearchDocument
	if err := json.Unmarshal(encoded, &doc); err != nil {
		return Hit{}, err
	}

	return Hit{Document: doc, Formatted: formatted}, nil
}
