package main

import (
	"fireworks/internal/infra/persistence/model"

	"gorm.io/gen"
)

// Generates typed query helpers for every persistence model.
func main() {
	g := gen.NewGenerator(gen.Config{
		OutPath: "./internal/infra/persistence/postgres/query",
		Mode:    gen.WithDefaultQuery | gen.WithQueryInterface,
	})

	g.ApplyBasic(model.All()...)

	g.Execute()
}
