package search

import (
	"log/slog"

	"fireworks/config"
	"fireworks/internal/domain/service"
	"fireworks/internal/infra/persistence/postgres"

	"go.uber.org/fx"
	"gorm.io/gorm"
)

// SearcherParams holds dependencies for ProductSearcher, injected by Fx
type SearcherParams struct {
	fx.In

	Config *config.Config
	DB     *gorm.DB
	Logger *slog.Logger
}

// NewProductSearcher picks Elasticsearch when enabled and the SQL fallback otherwise.
func NewProductSearcher(params SearcherParams) (service.ProductSearcher, error) {
	cfg := params.Config.Search
	if cfg == nil || !cfg.Enabled || len(cfg.Addresses) == 0 {
		params.Logger.Info("Elasticsearch disabled, product search uses SQL matching")

		return NewSQLSearcher(postgres.NewProductRepository(params.DB)), nil
	}

	params.Logger.Info("Product search uses Elasticsearch",
		slog.Any("addresses", cfg.Addresses),
		slog.String("index", cfg.Index),
	)

	return NewElasticSearcher(cfg, params.Logger)
}
