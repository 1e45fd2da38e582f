package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"

	"github.com/orbitel/oms/internal/adapter/persistence"
	"github.com/orbitel/oms/internal/config"
	"github.com/orbitel/oms/internal/domain"
	"github.com/orbitel/oms/internal/service/password"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	userRepo := persistence.NewPostgresUserRepository(db)

	username := "admin@orbitel.co.za"
	userPassword := "admin123"
	name := "Administrator"

	if len(os.Args) > 1 {
		username = os.Args[1]
	}
	if len(os.Args) > 2 {
		userPassword = os.Args[2]
	}
	if len(os.Args) > 3 {
		name = os.Args[3]
	}

	passwordService := password.NewBcryptPasswordService(10)
	hashedPassword, err := passwordService.HashPassword(userPassword)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	adminUser := domain.NewUser(username, hashedPassword, domain.RoleAdmin)
	adminUser.Name = name

	if err := userRepo.Create(ctx, adminUser); err != nil {
		log.Fatalf("Failed to create admin user: %v", err)
	}

	fmt.Printf("Admin user created successfully\n")
	fmt.Printf("Username: %s\n", username)
	fmt.Printf("Name: %s\n", name)
	fmt.Printf("ID: %s\n", adminUser.ID)
}
