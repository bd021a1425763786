// Package search indexes catalog products and answers full-text queries.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"

	"fireworks/config"
	"fireworks/internal/domain/entity"
	"fireworks/internal/domain/service"
	"fireworks/internal/errors"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"
	"github.com/google/uuid"
)

// productDocument is the indexed shape of a product.
type productDocument struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	CategoryID  string   `json:"category_id"`
	Tags        []string `json:"tags"`
	IsActive    bool     `json:"is_active"`
}

type elasticSearcher struct {
	client *elasticsearch.Client
	index  string
	logger *slog.Logger
}

// NewElasticSearcher creates an Elasticsearch-backed product searcher.
func NewElasticSearcher(cfg *config.SearchConfig, logger *slog.Logger) (service.ProductSearcher, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create elasticsearch client")
	}

	return &elasticSearcher{client: client, index: cfg.Index, logger: logger}, nil
}

// Search runs a fuzzy multi_match over name and description, active products only.
func (s *elasticSearcher) Search(ctx context.Context, query string, limit, offset int) ([]uuid.UUID, int64, error) {
	body := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":     query,
						"fields":    []string{"name^2", "description"},
						"fuzziness": "AUTO",
					},
				},
				"filter": map[string]any{
					"term": map[string]any{"is_active": true},
				},
			},
		},
		"from":    offset,
		"size":    limit,
		"_source": []string{"id"},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, 0, errors.Wrap(err, "failed to encode search query")
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, 0, errors.Wrap(err, "search request failed")
	}
	defer res.Body.Close()

	if err := responseError(res); err != nil {
		return nil, 0, err
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source productDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, 0, errors.Wrap(err, "failed to decode search response")
	}

	ids := make([]uuid.UUID, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		id, err := uuid.Parse(hit.Source.ID)
		if err != nil {
			s.logger.Warn("Skipping search hit with invalid id", slog.String("id", hit.Source.ID))

			continue
		}
		ids = append(ids, id)
	}

	return ids, r.Hits.Total.Value, nil
}

func (s *elasticSearcher) Index(ctx context.Context, product *entity.Product) error {
	doc := productDocument{
		ID:          product.ID.String(),
		Name:        product.Name,
		Description: product.Description,
		CategoryID:  product.CategoryID.String(),
		Tags:        make([]string, 0, len(product.Tags)),
		IsActive:    product.IsActive,
	}
	for _, tag := range product.Tags {
		doc.Tags = append(doc.Tags, tag.Name)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "failed to encode product document")
	}

	res, err := s.client.Index(s.index, bytes.NewReader(data),
		s.client.Index.WithContext(ctx),
		s.client.Index.WithDocumentID(doc.ID),
	)
	if err != nil {
		return errors.Wrap(err, "index request failed")
	}
	defer res.Body.Close()

	return responseError(res)
}

func (s *elasticSearcher) Remove(ctx context.Context, id uuid.UUID) error {
	res, err := s.client.Delete(s.index, id.String(), s.client.Delete.WithContext(ctx))
	if err != nil {
		return errors.Wrap(err, "delete request failed")
	}
	defer res.Body.Close()

	// Removing a document that was never indexed is fine.
	if res.StatusCode == 404 {
		return nil
	}

	return responseError(res)
}

func responseError(res *esapi.Response) error {
	if !res.IsError() {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(res.Body, 1024))

	return errors.Errorf("elasticsearch error %s: %s", res.Status(), body)
}
