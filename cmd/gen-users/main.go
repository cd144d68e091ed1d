package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"shop-service/config"
	"shop-service/internal/auth"
	"shop-service/internal/service"
	"shop-service/internal/store"
	"shop-service/internal/util"

	"go.uber.org/zap"
)

// fixtureUser returns the credentials of the i-th generated user, starting at 1
func fixtureUser(i int) (string, string) {
	return fmt.Sprintf("user%d", i), fmt.Sprintf("password%d", i)
}

// writeUsers writes a header row and n fixture users as CSV
func writeUsers(w io.Writer, n int) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"username", "password"}); err != nil {
		return err
	}
	for i := 1; i <= n; i++ {
		username, password := fixtureUser(i)
		if err := cw.Write([]string{username, password}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// registerUsers inserts the n fixture users, skipping usernames that exist
func registerUsers(ctx context.Context, auths *service.AuthService, n int) (int, error) {
	created := 0
	for i := 1; i <= n; i++ {
		username, password := fixtureUser(i)
		_, err := auths.Register(ctx, username, password)
		if errors.Is(err, service.ErrDuplicateUsername) {
			continue
		}
		if err != nil {
			return created, fmt.Errorf("register %s: %w", username, err)
		}
		created++
	}
	return created, nil
}

func main() {
	n := flag.Int("n", 2000, "number of users to generate")
	out := flag.String("out", "data/user.csv", "CSV output path")
	register := flag.Bool("register", false, "also register the users in the configured database")
	flag.Parse()

	cfg := config.Load()
	if err := util.InitLogger(cfg.Server.Env, cfg.Server.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()
	logger := util.GetLogger()

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		logger.Fatal("Failed to create output directory", zap.Error(err))
	}
	f, err := os.Create(*out)
	if err != nil {
		logger.Fatal("Failed to create output file", zap.Error(err))
	}
	if err := writeUsers(f, *n); err != nil {
		f.Close()
		logger.Fatal("Failed to write users", zap.Error(err))
	}
	if err := f.Close(); err != nil {
		logger.Fatal("Failed to close output file", zap.Error(err))
	}
	logger.Info("Users written", zap.String("path", *out), zap.Int("count", *n))

	if !*register {
		return
	}

	db, err := store.NewStore(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	credentials, err := auth.NewCredentialVerifier(cfg.Auth.PasswordScheme)
	if err != nil {
		logger.Fatal("Invalid password scheme", zap.Error(err))
	}
	tokens := auth.NewTokenManager(cfg.Auth.SecretKey, cfg.Auth.TokenTTL())

	created, err := registerUsers(context.Background(), service.NewAuthService(db, tokens, credentials), *n)
	if err != nil {
		logger.Fatal("Failed to register users", zap.Int("created", created), zap.Error(err))
	}
	logger.Info("Users registered", zap.Int("created", created), zap.Int("skipped", *n-created))
}
