//go:build integration

package db_test

import (
	"context"
	"testing"

	"acme-icecream/internal/db"
	"acme-icecream/internal/db/dbtest"
)

func TestInitialize_Idempotent(t *testing.T) {
	pg := dbtest.Start(t)
	pg.Reset(t)
	ctx := context.Background()

	for run := 1; run <= 2; run++ {
		if err := db.Initialize(ctx, pg.DB); err != nil {
			t.Fatalf("run %d: initialize: %v", run, err)
		}
	}

	var count int
	if err := pg.DB.QueryRow(`SELECT COUNT(*) FROM flavors`).Scan(&count); err != nil {
		t.Fatalf("count flavors: %v", err)
	}
	if count != len(db.SeedFlavors) {
		t.Fatalf("expected %d seed rows after two runs, got %d", len(db.SeedFlavors), count)
	}

	for _, want := range db.SeedFlavors {
		var fav bool
		err := pg.DB.QueryRow(`SELECT is_favorite FROM flavors WHERE name = $1`, want.Name).Scan(&fav)
		if err != nil {
			t.Fatalf("seed row %s: %v", want.Name, err)
		}
		if fav != want.IsFavorite {
			t.Errorf("seed row %s: is_favorite = %v, want %v", want.Name, fav, want.IsFavorite)
		}
	}
}

func TestInitialize_KeepsExistingRows(t *testing.T) {
	pg := dbtest.Start(t)
	pg.Reset(t)
	ctx := context.Background()

	if err := db.Initialize(ctx, pg.DB); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if _, err := pg.DB.Exec(`INSERT INTO flavors (name, is_favorite) VALUES ('Pistachio', TRUE)`); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := pg.DB.Exec(`DELETE FROM flavors WHERE name = 'Chocolate'`); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if err := db.Initialize(ctx, pg.DB); err != nil {
		t.Fatalf("re-initialize: %v", err)
	}

	var count int
	if err := pg.DB.QueryRow(`SELECT COUNT(*) FROM flavors`).Scan(&count); err != nil {
		t.Fatalf("count flavors: %v", err)
	}
	// Vanilla, Strawberry, Pistachio and the re-seeded Chocolate.
	if count != 4 {
		t.Fatalf("expected 4 rows, got %d", count)
	}
}
