package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/pixel-news/config"
	"github.com/oksasatya/pixel-news/internal/domain/entity"
	pginfra "github.com/oksasatya/pixel-news/internal/infrastructure/postgres"
	"github.com/oksasatya/pixel-news/pkg/helpers"
)

var publishers = []entity.Publisher{
	{Name: "The Daily Pixel", Logo: "https://i.ibb.co/daily-pixel.png"},
	{Name: "Morning Ledger", Logo: "https://i.ibb.co/morning-ledger.png"},
	{Name: "Tech Wire", Logo: "https://i.ibb.co/tech-wire.png"},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	if err := pginfra.Migrate(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	users := pginfra.NewUserRepository(pool, cfg.DBQueryTimeout)
	pubs := pginfra.NewPublisherRepository(pool, cfg.DBQueryTimeout)

	adminEmail := os.Getenv("SEED_ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@pixel.news"
	}
	admin := &entity.User{Email: adminEmail, Name: "Administrator", CreatedAt: time.Now().UTC()}
	if _, err := users.CreateIfAbsent(ctx, admin); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	if err := users.SetAdmin(ctx, adminEmail, true); err != nil {
		log.Fatalf("failed to grant admin: %v", err)
	}
	fmt.Printf("admin ensured: email=%s\n", adminEmail)

	existing, err := pubs.List(ctx)
	if err != nil {
		log.Fatalf("failed to list publishers: %v", err)
	}
	known := make(map[string]bool, len(existing))
	for _, p := range existing {
		known[p.Name] = true
	}
	for _, p := range publishers {
		if known[p.Name] {
			continue
		}
		p.CreatedAt = time.Now().UTC()
		if err := pubs.Create(ctx, &p); err != nil {
			log.Fatalf("failed to seed publisher %q: %v", p.Name, err)
		}
		fmt.Printf("seeded publisher: id=%s name=%s\n", p.ID, p.Name)
	}
}
