package main

import (
	"os"

	"github.com/joho/godotenv"

	"acme-icecream/internal/server"
)

func main() {
	// A .env file is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		server.Warn("dotenv_load_failed", map[string]any{"error": err.Error()})
	}
	server.ConfigureLogging()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// getenvDefault reads an environment variable and returns a default value if not set.
func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
