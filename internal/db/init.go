// Package db owns the flavors schema and the startup initializer.
package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

//go:embed seed.sql
var seedSQL string

// SeedFlavor is one of the default rows written by Initialize.
type SeedFlavor struct {
	Name       string
	IsFavorite bool
}

// SeedFlavors mirrors the VALUES list in seed.sql.
var SeedFlavors = []SeedFlavor{
	{Name: "Vanilla", IsFavorite: true},
	{Name: "Chocolate", IsFavorite: false},
	{Name: "Strawberry", IsFavorite: false},
}

// Initialize creates the flavors table if it is missing and inserts any seed
// row whose name is not already present. It never drops or alters existing
// data and is safe to run on every start.
func Initialize(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("initialize: nil database handle")
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create flavors table: %w", err)
	}
	if _, err := db.ExecContext(ctx, seedSQL); err != nil {
		return fmt.Errorf("seed flavors: %w", err)
	}
	return nil
}
