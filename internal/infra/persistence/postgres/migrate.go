package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"fireworks/config"
	"fireworks/internal/domain/entity"
	"fireworks/internal/errors"
	"fireworks/internal/infra/persistence/model"

	"go.uber.org/fx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type foreignKey struct {
	table, column, refTable, onDelete string
}

func (fk foreignKey) name() string {
	return fmt.Sprintf("fk_%s_%s", fk.table, fk.column)
}

// foreignKeys are added explicitly because models declare no associations.
var foreignKeys = []foreignKey{
	{"products", "category_id", "categories", "RESTRICT"},
	{"product_tags", "product_id", "products", "CASCADE"},
	{"product_tags", "tag_id", "tags", "CASCADE"},
	{"cart_items", "user_id", "users", "CASCADE"},
	{"cart_items", "product_id", "products", "CASCADE"},
	{"favorites", "user_id", "users", "CASCADE"},
	{"favorites", "product_id", "products", "CASCADE"},
	{"addresses", "user_id", "users", "CASCADE"},
	{"orders", "user_id", "users", "RESTRICT"},
	{"orders", "status_id", "order_statuses", "RESTRICT"},
	{"orders", "address_id", "addresses", "SET NULL"},
	{"order_line_items", "order_id", "orders", "CASCADE"},
	{"order_line_items", "product_id", "products", "SET NULL"},
	{"newsletter_tags", "newsletter_id", "newsletters", "CASCADE"},
	{"newsletter_tags", "tag_id", "tags", "CASCADE"},
}

// Migrate creates or updates the schema and seeds the order status dictionary.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(model.All()...); err != nil {
		return errors.Wrap(err, "failed to auto migrate")
	}

	if db.Dialector.Name() == "postgres" {
		if err := addForeignKeys(db); err != nil {
			return err
		}
	}

	statuses := make([]model.OrderStatusModel, 0, len(entity.DefaultOrderStatuses()))
	for _, status := range entity.DefaultOrderStatuses() {
		statuses = append(statuses, model.OrderStatusModel{ID: status.ID, Text: status.Text})
	}

	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&statuses).Error; err != nil {
		return errors.Wrap(err, "failed to seed order statuses")
	}

	return nil
}

func addForeignKeys(db *gorm.DB) error {
	for _, fk := range foreignKeys {
		var exists bool
		err := db.Raw(
			"SELECT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = ?)", fk.name(),
		).Scan(&exists).Error
		if err != nil {
			return errors.Wrapf(err, "failed to look up constraint %s", fk.name())
		}
		if exists {
			continue
		}

		stmt := fmt.Sprintf(
			"ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (id) ON DELETE %s",
			fk.table, fk.name(), fk.column, fk.refTable, fk.onDelete,
		)
		if err := db.Exec(stmt).Error; err != nil {
			return errors.Wrapf(err, "failed to add constraint %s", fk.name())
		}
	}

	return nil
}

// MigrationParams defines the dependencies of RegisterMigrations
type MigrationParams struct {
	fx.In
	fx.Lifecycle

	DB     *gorm.DB
	Config *config.Config
	Logger *slog.Logger
}

// RegisterMigrations runs Migrate on start when env.autoMigrate is enabled.
func RegisterMigrations(params MigrationParams) {
	if !params.Config.Env.AutoMigrate {
		return
	}

	params.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			params.Logger.Info("Running database migrations")

			return Migrate(params.DB.WithContext(ctx))
		},
	})
}
