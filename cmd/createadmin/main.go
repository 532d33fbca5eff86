// Command createadmin seeds an admin profile so the back office can log in.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/iliyamo/atelier-booking/internal/auth"
	"github.com/iliyamo/atelier-booking/internal/config"
	"github.com/iliyamo/atelier-booking/internal/database"
	"github.com/iliyamo/atelier-booking/internal/model"
	"github.com/iliyamo/atelier-booking/internal/repository"
)

func main() {
	email := pflag.StringP("email", "e", "", "admin email (required)")
	name := pflag.StringP("name", "n", "", "display name")
	password := pflag.StringP("password", "p", "", "password; falls back to $ADMIN_PASSWORD")
	pflag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("env: %v", err)
	}
	if *password == "" {
		*password = os.Getenv("ADMIN_PASSWORD")
	}
	if strings.TrimSpace(*email) == "" || len(*password) < 8 {
		fmt.Fprintln(os.Stderr, "createadmin: --email and a password of at least 8 characters are required")
		pflag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, closeStore, err := database.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer closeStore()

	hash, err := auth.HashPassword(*password, cfg.BcryptCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}
	p := model.Profile{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(*email)),
		Name:         strings.TrimSpace(*name),
		Role:         model.RoleAdmin,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	err = repository.NewProfileRepo(store).Create(ctx, p)
	if errors.Is(err, repository.ErrEmailExists) {
		log.Fatalf("createadmin: %s already has a profile", p.Email)
	}
	if err != nil {
		log.Fatalf("createadmin: %v", err)
	}
	log.Printf("createadmin: admin %s created with id %s", p.Email, p.ID)
}
