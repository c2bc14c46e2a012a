// Package main is the entry point for the railbook booking server.
//
// Its job is deliberately small: read configuration from the environment,
// build the logger, and hand both to internal/server. All actual logic lives
// in the imported packages.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"os"
	"strconv"

	"github.com/sakif/railbook/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	// === CONFIGURATION ===
	// Everything comes from env vars with working defaults, so a bare
	// `go run ./cmd/server` starts a usable dev instance.
	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	dataDir := "data"
	if envDir := os.Getenv("DATA_DIR"); envDir != "" {
		dataDir = envDir
	}

	dbPath := "data/railbook.db"
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		dbPath = envDB
	}

	// JWT_SECRET must be a long random string in production:
	//   JWT_SECRET=$(openssl rand -hex 32)
	// If unset we mint an ephemeral one so dev instances work out of the
	// box — all sessions die with the process.
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			logger.Error("failed to generate dev JWT secret", slog.String("error", err.Error()))
			os.Exit(1)
		}
		jwtSecret = hex.EncodeToString(buf)
		logger.Warn("JWT_SECRET not set — using an ephemeral secret, sessions will not survive restarts")
	}

	cfg := server.Config{
		Port:      port,
		Store:     os.Getenv("STORE"), // "" → json
		DataDir:   dataDir,
		DBPath:    dbPath,
		JWTSecret: jwtSecret,
		AuthMode:  os.Getenv("AUTH_MODE"), // "" → bcrypt
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until the server is shut down (Ctrl+C or SIGTERM).
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
