package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"payroll-chain.backend/pkg/jwt"
)

func main() {
	email := flag.String("email", "", "admin email embedded in the token")
	id := flag.String("id", "", "admin uuid (defaults to a random one)")
	secret := flag.String("secret", "", "JWT signing secret (must match JWT_SECRET)")
	expiry := flag.Duration("expiry", 24*time.Hour, "token lifetime")
	flag.Parse()

	if *email == "" {
		log.Fatal("missing -email")
	}
	if *secret == "" {
		log.Fatal("missing -secret")
	}

	adminID := uuid.New()
	if *id != "" {
		parsed, err := uuid.Parse(*id)
		if err != nil {
			log.Fatalf("invalid -id: %v", err)
		}
		adminID = parsed
	}

	svc := jwt.NewJWTService(*secret, *expiry, *expiry)
	token, err := svc.GenerateToken(adminID, *email, *expiry)
	if err != nil {
		log.Fatalf("failed to sign token: %v", err)
	}

	fmt.Println("Generated admin token")
	fmt.Printf("ADMIN_ID=%s\n", adminID)
	fmt.Printf("TOKEN=%s\n", token)
}
