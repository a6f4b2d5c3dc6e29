package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/pathwise/adapters/persistence"
	"github.com/khoahotran/pathwise/internal/config"
	"github.com/khoahotran/pathwise/internal/domain/user"
	"github.com/khoahotran/pathwise/pkg/apperror"
	"github.com/khoahotran/pathwise/pkg/auth"
	"github.com/khoahotran/pathwise/pkg/logger"
)

// Seeds a demo account for local development.
// Reads SEED_EMAIL, SEED_PASSWORD and optionally SEED_NAME.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}
	appLogger, err := logger.New(logger.Options{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "pathwise-seed"})
	if err != nil {
		log.Fatalf("FATAL: cannot init logger: %v", err)
	}
	defer appLogger.Sync()

	email := os.Getenv("SEED_EMAIL")
	password := os.Getenv("SEED_PASSWORD")
	name := os.Getenv("SEED_NAME")
	if name == "" {
		name = "Demo Student"
	}
	if email == "" || password == "" {
		appLogger.Fatal("SEED_EMAIL and SEED_PASSWORD are required", nil)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		appLogger.Fatal("cannot hash password", err)
	}

	pool, err := persistence.NewPostgresPool(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot connect DB", err)
	}
	defer pool.Close()

	u := &user.User{
		ID:           uuid.New(),
		Email:        email,
		DisplayName:  name,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := u.Validate(); err != nil {
		appLogger.Fatal("invalid seed user", err)
	}

	repo := persistence.NewPostgresUserRepo(pool, appLogger)
	err = repo.Create(context.Background(), u)
	if errors.Is(err, apperror.ErrConflict) {
		appLogger.Info("Seed user already exists", zap.String("email", u.Email))
		return
	}
	if err != nil {
		appLogger.Fatal("cannot add user", err)
	}

	fmt.Printf("added seed user '%s' successfully!\n", u.Email)
}
