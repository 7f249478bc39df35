package flavor

import (
	"context"
	"database/sql"
	"errors"
)

const columns = `id, name, is_favorite, created_at, updated_at`

// Store runs one parameterized statement per operation against the flavors
// table. Each statement is its own implicit transaction.
type Store struct {
	db *sql.DB
}

// NewStore returns a Store over db. A nil db yields a Store whose every
// operation fails with ErrUnavailable, which is how the service behaves
// after a failed connection at startup.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFlavor(s scanner) (Flavor, error) {
	var f Flavor
	err := s.Scan(&f.ID, &f.Name, &f.IsFavorite, &f.CreatedAt, &f.UpdatedAt)
	return f, err
}

// List returns every row in store order.
func (s *Store) List(ctx context.Context) ([]Flavor, error) {
	const op = "list flavors"
	if s.db == nil {
		return nil, storeFailure(op, ErrUnavailable)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+columns+` FROM flavors`)
	if err != nil {
		return nil, storeFailure(op, err)
	}
	defer rows.Close()

	flavors := make([]Flavor, 0)
	for rows.Next() {
		f, err := scanFlavor(rows)
		if err != nil {
			return nil, storeFailure(op, err)
		}
		flavors = append(flavors, f)
	}
	if err := rows.Err(); err != nil {
		return nil, storeFailure(op, err)
	}
	return flavors, nil
}

// Get returns the row with the given id.
func (s *Store) Get(ctx context.Context, id int64) (Flavor, error) {
	const op = "get flavor"
	if s.db == nil {
		return Flavor{}, storeFailure(op, ErrUnavailable)
	}

	f, err := scanFlavor(s.db.QueryRowContext(ctx,
		`SELECT `+columns+` FROM flavors WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Flavor{}, notFound(op)
	}
	if err != nil {
		return Flavor{}, storeFailure(op, err)
	}
	return f, nil
}

// Create inserts a row and returns it with the assigned id and timestamps.
func (s *Store) Create(ctx context.Context, in Input) (Flavor, error) {
	const op = "create flavor"
	if s.db == nil {
		return Flavor{}, storeFailure(op, ErrUnavailable)
	}

	f, err := scanFlavor(s.db.QueryRowContext(ctx,
		`INSERT INTO flavors (name, is_favorite) VALUES ($1, $2) RETURNING `+columns,
		in.Name, in.IsFavorite))
	if err != nil {
		return Flavor{}, storeFailure(op, err)
	}
	return f, nil
}

// Update overwrites name and is_favorite and refreshes updated_at.
func (s *Store) Update(ctx context.Context, id int64, in Input) (Flavor, error) {
	const op = "update flavor"
	if s.db == nil {
		return Flavor{}, storeFailure(op, ErrUnavailable)
	}

	f, err := scanFlavor(s.db.QueryRowContext(ctx, `
		UPDATE flavors
		SET name = $1, is_favorite = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3
		RETURNING `+columns,
		in.Name, in.IsFavorite, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Flavor{}, notFound(op)
	}
	if err != nil {
		return Flavor{}, storeFailure(op, err)
	}
	return f, nil
}

// Delete removes the row with the given id.
func (s *Store) Delete(ctx context.Context, id int64) error {
	const op = "delete flavor"
	if s.db == nil {
		return storeFailure(op, ErrUnavailable)
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM flavors WHERE id = $1`, id)
	if err != nil {
		return storeFailure(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storeFailure(op, err)
	}
	if n == 0 {
		return notFound(op)
	}
	return nil
}
