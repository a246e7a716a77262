// Command seed inserts the bootstrap admin users. Each seed runs at most once:
// a row in seed_history under the seed name marks it as executed.
package main

import (
	"context"
	"log"

	"golang.org/x/crypto/bcrypt"

	"github.com/dice205/omr-results-api/internal/models"
	"github.com/dice205/omr-results-api/internal/repository"
	"github.com/dice205/omr-results-api/pkg/config"
	"github.com/dice205/omr-results-api/pkg/database"
	"github.com/dice205/omr-results-api/pkg/logger"
)

const seedName = "users_v1"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck
	sugar := logr.Sugar()

	if len(cfg.Seed.AdminEmails) == 0 {
		sugar.Fatalw("no admin emails configured", "env", "SEED_ADMIN_EMAILS")
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		sugar.Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	ctx := context.Background()

	// The history check, user inserts and history marker share one
	// transaction so a failed run leaves nothing behind.
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		sugar.Fatalw("failed to begin transaction", "error", err)
	}
	defer tx.Rollback() //nolint:errcheck

	seeds := repository.NewSeedRepository(tx)
	users := repository.NewUserRepository(tx)

	executed, err := seeds.HasRun(ctx, seedName)
	if err != nil {
		sugar.Fatalw("failed to check seed history", "error", err)
	}
	if executed {
		sugar.Infow("seed already executed, skipping", "seed", seedName)
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(cfg.Seed.DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		sugar.Fatalw("failed to hash password", "error", err)
	}

	for _, email := range cfg.Seed.AdminEmails {
		user := &models.User{
			Email:        email,
			PasswordHash: string(passwordHash),
			Role:         models.RoleAdmin,
		}
		if err := users.Create(ctx, user); err != nil {
			sugar.Fatalw("failed to create user", "email", email, "error", err)
		}
		sugar.Infow("created admin user", "email", email, "id", user.ID)
	}

	if err := seeds.MarkRun(ctx, seedName); err != nil {
		sugar.Fatalw("failed to record seed execution", "error", err)
	}

	if err := tx.Commit(); err != nil {
		sugar.Fatalw("failed to commit seed transaction", "error", err)
	}

	sugar.Infow("seed executed", "seed", seedName, "users", len(cfg.Seed.AdminEmails))
}
