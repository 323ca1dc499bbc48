// Command levyreceipt renders NAPPS Nasarawa building levy receipts.
//
// Payments come from JSON files or the member portal; receipts go to a
// local directory or an S3-compatible bucket. The same renderer is served
// over HTTP (serve) and to MCP clients over stdio (mcp).
//
// Settings are read from the environment and an optional .env file; see
// internal/config for the keys.
package main

import (
	"errors"
	"io/fs"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/nappsnasarawa/levyreceipt/internal/config"
	"github.com/nappsnasarawa/levyreceipt/internal/logger"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	c, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := logger.Setup(c.GetLoggerConfig()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	cfg = c

	os.Exit(execute())
}
