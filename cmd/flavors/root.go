package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"acme-icecream/internal/db"
	"acme-icecream/internal/server"
)

const shutdownTimeout = 5 * time.Second

// options are the flag-overridable settings shared by every command.
type options struct {
	port      string
	staticDir string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "flavors",
		Short: "Ice cream flavors service",
		Long: `flavors serves a JSON API for managing ice cream flavors backed by
PostgreSQL, plus the front-end build. Running it without a subcommand
is the same as "flavors serve".`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	root.PersistentFlags().StringVarP(&opts.port, "port", "p", getenvDefault("PORT", "3000"), "Port to listen on.")
	root.PersistentFlags().StringVar(&opts.staticDir, "static-dir", getenvDefault("FLAVORS_STATIC_DIR", "client/dist"), "Directory holding the front-end build.")

	root.AddCommand(newServeCmd(opts), newInitDBCmd())
	return root
}

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Initialize the database and serve HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func newInitDBCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-db",
		Short: "Create the flavors table and insert the default flavors",
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn := os.Getenv("DATABASE_URL")
			if dsn == "" {
				return errors.New("DATABASE_URL is not set")
			}
			conn, err := server.OpenDB(getenvDefault("FLAVORS_DB_DRIVER", server.DriverPgx), dsn)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer func() { _ = conn.Close() }()

			if err := db.Initialize(cmd.Context(), conn); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "flavors table ready, %d default flavors ensured\n", len(db.SeedFlavors))
			return nil
		},
	}
}

func runServe(ctx context.Context, opts *options) error {
	if err := server.ValidateAllConfiguration(); err != nil {
		return err
	}
	v := server.NewConfigValidator()
	v.ValidatePort("--port", opts.port)
	if v.HasErrors() {
		return errors.New(v.ErrorString())
	}
	server.WarnOnOptionalMissingConfig()

	build := server.BuildInfo{
		Version: getenvDefault("FLAVORS_VERSION", "dev"),
		Commit:  getenvDefault("FLAVORS_COMMIT", "unknown"),
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbConn := connectDB(ctx)
	if dbConn != nil {
		defer func() { _ = dbConn.Close() }()
	}

	addr := listenAddr(opts.port)
	srv := server.New(server.Config{
		Addr:           addr,
		Build:          build,
		DB:             dbConn,
		Static:         openStatic(ctx, opts.staticDir),
		WriteRateLimit: writeRateLimit(),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		server.Info("starting", map[string]any{
			"addr":    addr,
			"version": build.Version,
			"commit":  build.Commit,
		})
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		server.Info("shutting_down", nil)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		server.Error("server_error", nil, err)
		return err
	}
	server.Info("shutdown_complete", nil)
	return nil
}

// listenAddr accepts the port with or without its leading colon.
func listenAddr(port string) string {
	return ":" + strings.TrimPrefix(port, ":")
}

// writeRateLimit is off unless FLAVORS_WRITE_RATE_LIMIT is set. The limiter
// keys on X-Forwarded-For, so only enable it behind a proxy that sets it.
func writeRateLimit() int {
	// Validated in runServe, so the conversion cannot fail.
	n, _ := strconv.Atoi(getenvDefault("FLAVORS_WRITE_RATE_LIMIT", "0"))
	return n
}

// connectDB opens the database and runs the initializer. Any failure is
// logged and the service keeps running; data endpoints then answer 500.
func connectDB(ctx context.Context) *sql.DB {
	conn, err := server.OpenDB(getenvDefault("FLAVORS_DB_DRIVER", server.DriverPgx), os.Getenv("DATABASE_URL"))
	if err != nil {
		server.Error("db_connect_failed", nil, err)
		return nil
	}
	server.Info("db_connected", nil)

	if err := db.Initialize(ctx, conn); err != nil {
		server.Error("db_init_failed", nil, err)
		return conn
	}
	server.Info("db_initialized", map[string]any{"seed_flavors": len(db.SeedFlavors)})
	return conn
}

// openStatic prefers the object storage bucket when configured and falls
// back to the local build directory.
func openStatic(ctx context.Context, dir string) fs.FS {
	bucket := server.BucketConfig{
		Endpoint:  os.Getenv("FLAVORS_S3_ENDPOINT"),
		AccessKey: os.Getenv("FLAVORS_S3_ACCESS_KEY"),
		SecretKey: os.Getenv("FLAVORS_S3_SECRET_KEY"),
		Bucket:    os.Getenv("FLAVORS_STATIC_BUCKET"),
		Prefix:    os.Getenv("FLAVORS_STATIC_PREFIX"),
	}
	if bucket.Bucket != "" {
		bctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		fsys, err := server.NewBucketFS(bctx, bucket)
		if err == nil {
			server.Info("static_source", map[string]any{"bucket": bucket.Bucket, "prefix": bucket.Prefix})
			return fsys
		}
		server.Error("static_bucket_failed", map[string]any{"bucket": bucket.Bucket}, err)
	}

	if st, err := os.Stat(dir); err != nil || !st.IsDir() {
		server.Warn("static_dir_missing", map[string]any{"dir": dir})
	} else {
		server.Info("static_source", map[string]any{"dir": dir})
	}
	return os.DirFS(dir)
}
