package search

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"fireworks/config"
	"fireworks/internal/domain/entity"
	"fireworks/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSearcher(t *testing.T, handler http.HandlerFunc) *elasticSearcher {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	searcher, err := NewElasticSearcher(&config.SearchConfig{
		Addresses: []string{server.URL},
		Index:     "products",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	return searcher.(*elasticSearcher)
}

func TestElasticSearcher_Search(t *testing.T) {
	first, second := uuid.New(), uuid.New()
	var query map[string]any

	searcher := newTestSearcher(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/_search", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&query)
		_, _ = w.Write([]byte(`{"hits":{"total":{"value":7},"hits":[` +
			`{"_source":{"id":"` + first.String() + `"}},` +
			`{"_source":{"id":"not-a-uuid"}},` +
			`{"_source":{"id":"` + second.String() + `"}}]}}`))
	})

	ids, total, err := searcher.Search(context.Background(), "rocket", 10, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)
	assert.Equal(t, []uuid.UUID{first, second}, ids)
	assert.EqualValues(t, 20, query["from"])
	assert.EqualValues(t, 10, query["size"])
}

func TestElasticSearcher_SearchError(t *testing.T) {
	searcher := newTestSearcher(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad query"}`))
	})

	_, _, err := searcher.Search(context.Background(), "rocket", 10, 0)
	assert.Error(t, err)
}

func TestElasticSearcher_IndexAndRemove(t *testing.T) {
	product := &entity.Product{ID: uuid.New(), CategoryID: uuid.New(), Name: "Comet", IsActive: true,
		Tags: []*entity.Tag{{Name: "loud"}}}

	var indexed productDocument
	searcher := newTestSearcher(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut, http.MethodPost:
			_ = json.NewDecoder(r.Body).Decode(&indexed)
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"result":"created"}`))
		case http.MethodDelete:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"result":"not_found"}`))
		}
	})

	require.NoError(t, searcher.Index(context.Background(), product))
	assert.Equal(t, product.ID.String(), indexed.ID)
	assert.Equal(t, []string{"loud"}, indexed.Tags)

	assert.NoError(t, searcher.Remove(context.Background(), product.ID))
}

type stubLister struct {
	filter repository.ProductFilter
	result []*entity.Product
}

func (s *stubLister) List(_ context.Context, filter repository.ProductFilter) ([]*entity.Product, int64, error) {
	s.filter = filter

	return s.result, int64(len(s.result)), nil
}

func TestSQLSearcher_Search(t *testing.T) {
	product := &entity.Product{ID: uuid.New()}
	lister := &stubLister{result: []*entity.Product{product}}

	ids, total, err := NewSQLSearcher(lister).Search(context.Background(), "sparkler", 5, 0)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{product.ID}, ids)
	assert.Equal(t, int64(1), total)
	assert.True(t, lister.filter.ActiveOnly)
	assert.Equal(t, "sparkler", lister.filter.Query)
}
