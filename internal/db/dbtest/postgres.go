// Package dbtest starts a throwaway PostgreSQL container for integration
// tests. Docker must be reachable from the test runner.
package dbtest

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
)

const (
	image    = "postgres"
	tag      = "15"
	password = "secret"
	dbName   = "acme_icecream_test"
)

// Postgres is a running container plus an open connection to it.
type Postgres struct {
	DSN string
	DB  *sql.DB
}

// Start runs postgres:15, waits until it accepts connections and registers
// cleanup with t. The returned DB uses the pgx driver; readiness is probed
// through lib/pq so both registered drivers are exercised.
func Start(t testing.TB) *Postgres {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("could not connect to docker: %v", err)
	}
	pool.MaxWait = 90 * time.Second

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: image,
		Tag:        tag,
		Env: []string{
			"POSTGRES_PASSWORD=" + password,
			"POSTGRES_DB=" + dbName,
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("could not start postgres: %v", err)
	}
	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("could not purge postgres container: %v", err)
		}
	})

	dsn := fmt.Sprintf("postgres://postgres:%s@localhost:%s/%s?sslmode=disable",
		password, resource.GetPort("5432/tcp"), dbName)

	if err := pool.Retry(func() error {
		probe, err := sql.Open("postgres", dsn)
		if err != nil {
			return err
		}
		defer probe.Close()
		return probe.Ping()
	}); err != nil {
		t.Fatalf("could not connect to postgres: %v", err)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open pgx connection: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return &Postgres{DSN: dsn, DB: db}
}

// Reset drops the flavors table so a test can start from an empty store.
func (p *Postgres) Reset(t testing.TB) {
	t.Helper()
	if _, err := p.DB.Exec(`DROP TABLE IF EXISTS flavors`); err != nil {
		t.Fatalf("reset flavors table: %v", err)
	}
}
