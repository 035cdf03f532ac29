package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"payroll-chain.backend/internal/config"
	"payroll-chain.backend/internal/infrastructure/repositories"
	"payroll-chain.backend/internal/usecases"
	"payroll-chain.backend/pkg/jwt"
)

func main() {
	name := flag.String("name", "", "admin display name")
	email := flag.String("email", "", "admin email")
	password := flag.String("password", "", "admin password")
	flag.Parse()

	if *name == "" || *email == "" || *password == "" {
		log.Fatal("missing -name, -email or -password")
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := config.Load()

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.Database.URL(),
		PreferSimpleProtocol: true,
	}), &gorm.Config{PrepareStmt: false})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get generic database object: %v", err)
	}
	defer sqlDB.Close()

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)
	authUsecase := usecases.NewAuthUsecase(repositories.NewAdminRepository(db), jwtService)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	admin, err := authUsecase.CreateAdmin(ctx, *name, *email, *password)
	if err != nil {
		log.Fatalf("failed to create admin: %v", err)
	}

	fmt.Println("Admin created")
	fmt.Printf("ID=%s\n", admin.ID)
	fmt.Printf("EMAIL=%s\n", admin.Email)
}
