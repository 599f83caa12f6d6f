// Package canonical is the adapter for the archive's system of record, a
// Sanity-style document store spoken to over its HTTP query, mutation and
// asset APIs. The adapter does not cache; every call is a live round trip.
package canonical

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/turath/archive-sync/config"
	"github.com/turath/archive-sync/internal/apperr"
	"github.com/turath/archive-sync/pkg/logger"
)

// Client talks to the canonical document store.
type Client struct {
	httpClient *http.Client
	baseURL    string
	dataset    string
	token      string
	logger     logger.Logger
}

// NewClient builds a client from environment config.
func NewClient(log logger.Logger) *Client {
	cfg := config.GetCanonicalConfig()
	baseURL := fmt.Sprintf("https://%s.api.sanity.io/v%s", cfg.ProjectID, cfg.APIVersion)
	return NewClientWith(baseURL, cfg.Dataset, cfg.Token, http.DefaultClient, log)
}

// NewClientWith builds a client against an explicit endpoint. Tests point
// it at an httptest server.
func NewClientWith(baseURL, dataset, token string, httpClient *http.Client, log logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		dataset:    dataset,
		token:      token,
		logger:     log,
	}
}

// fetch runs a GROQ query and decodes the "result" envelope into out.
func (c *Client) fetch(ctx context.Context, query string, params map[string]interface{}, out interface{}) error {
	values := url.Values{}
	values.Set("query", query)
	for k, v := range params {
		encoded, err := json.Marshal(v)
		if err != nil {
			return apperr.Rejected("canonical.fetch", err)
		}
		values.Set("$"+k, string(encoded))
	}

	endpoint := fmt.Sprintf("%s/data/query/%s?%s", c.baseURL, c.dataset, values.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return apperr.Rejected("canonical.fetch", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperr.Unavailable("canonical.fetch", err)
	}
	defer resp.Body.Close()

	if err := c.checkStatus("canonical.fetch", resp); err != nil {
		return err
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return apperr.Unavailable("canonical.fetch", err)
	}
	if len(envelope.Result) == 0 || string(envelope.Result) == "null" {
		return apperr.NotFound("canonical.fetch", nil)
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return apperr.Unavailable("canonical.fetch", err)
	}
	return nil
}

// mutate posts mutations and decodes returned documents.
func (c *Client) mutate(ctx context.Context, op string, mutations []map[string]interface{}) (*document, error) {
	body, err := json.Marshal(map[string]interface{}{"mutations": mutations})
	if err != nil {
		return nil, apperr.Rejected(op, err)
	}

	endpoint := fmt.Sprintf("%s/data/mutate/%s?returnDocuments=true", c.baseURL, c.dataset)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, apperr.Rejected(op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Unavailable(op, err)
	}
	defer resp.Body.Close()

	if err := c.checkStatus(op, resp); err != nil {
		return nil, err
	}

	var envelope struct {
		Results []struct {
			Document *document `json:"document"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, apperr.Unavailable(op, err)
	}
	if len(envelope.Results) == 0 || envelope.Results[0].Document == nil {
		return nil, apperr.Unavailable(op, fmt.Errorf("mutation returned no document"))
	}
	return envelope.Results[0].Document, nil
}

// UploadAsset stores the payload in the canonical store's own asset
// subsystem and returns the asset reference.
func (c *Client) UploadAsset(ctx context.Context, reader io.Reader, filename, contentType string) (string, error) {
	values := url.Values{}
	values.Set("filename", filename)

	endpoint := fmt.Sprintf("%s/assets/images/%s?%s", c.baseURL, c.dataset, values.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, reader)
	if err != nil {
		return "", apperr.Rejected("canonical.uploadAsset", err)
	}
	req.Header.Set("Content-Type", contentType)
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperr.Unavailable("canonical.uploadAsset", err)
	}
	defer resp.Body.Close()

	if err := c.checkStatus("canonical.uploadAsset", resp); err != nil {
		return "", err
	}

	var envelope struct {
		Document struct {
			ID string `json:"_id"`
		} `json:"document"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", apperr.Unavailable("canonical.uploadAsset", err)
	}
	if envelope.Document.ID == "" {
		return "", apperr.Unavailable("canonical.uploadAsset", fmt.Errorf("asset upload returned no id"))
	}
	return envelope.Document.ID, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// checkStatus types HTTP failures into the error taxonomy: 404 is
// NotFound, other 4xx are Rejected, everything else non-2xx is
// Unavailable.
func (c *Client) checkStatus(op string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	err := fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return apperr.NotFound(op, err)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return apperr.Rejected(op, err)
	default:
		return apperr.Unavailable(op, err)
	}
}
