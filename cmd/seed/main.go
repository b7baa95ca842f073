package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/tradewire/tradewire-api/config"
	"github.com/tradewire/tradewire-api/internal/domain/entity"
	"github.com/tradewire/tradewire-api/internal/domain/repository"
	"github.com/tradewire/tradewire-api/internal/infrastructure/mongodb"
	"github.com/tradewire/tradewire-api/pkg/helpers"
)

// Seeds an admin account so role management works on a fresh database.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	email := getenvDefault("SEED_ADMIN_EMAIL", "admin@tradewire.local")
	password := getenvDefault("SEED_ADMIN_PASSWORD", "changeme123")
	name := getenvDefault("SEED_ADMIN_NAME", "Administrator")

	ctx := context.Background()
	client, err := mongodb.NewClient(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatalf("failed to connect to mongodb: %v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	users := mongodb.NewUserRepository(client, cfg.MongoUsersDB, cfg.MongoUsersCollection)

	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	u := &entity.User{Email: email, PasswordHash: hash, Name: name, Role: entity.RoleAdmin}
	if err := users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			fmt.Printf("admin %s already exists, nothing to do\n", email)
			return
		}
		log.Fatalf("failed to seed admin: %v", err)
	}
	fmt.Printf("seeded admin: email=%s name=%s\n", email, name)
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
