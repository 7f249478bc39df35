// Package flavor holds the Flavor model and its PostgreSQL-backed store.
package flavor

import (
	"errors"
	"strconv"
	"time"
)

// Flavor is a single row of the flavors table.
type Flavor struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	IsFavorite bool      `json:"is_favorite"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Input carries the writable fields. Create and Update always write both.
type Input struct {
	Name       string
	IsFavorite bool
}

// ParseID parses a path identifier.
//
// Anything that is not a base-10 integer is invalid input. A well-formed
// integer outside the SERIAL (int4) range can never match a row, so it is
// reported as not found without touching the store.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 32)
	if err == nil {
		return id, nil
	}
	if errors.Is(err, strconv.ErrRange) {
		return 0, &Error{Kind: KindNotFound, Op: "parse id", Err: err}
	}
	return 0, &Error{Kind: KindInvalidInput, Op: "parse id", Err: err}
}
