package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Varun5711/shortlinks/internal/auth"
	"github.com/Varun5711/shortlinks/internal/config"
	"github.com/Varun5711/shortlinks/internal/logger"
)

// token mints an HS256 bearer token for local development against api-gateway.
func main() {
	userID := flag.String("user", "user_39mKH9KgwsiREDdXMthQQKUUUQL", "owner id placed in the sub claim")
	email := flag.String("email", "", "optional email claim")
	flag.Parse()

	log := logger.New("token")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: %v", err)
	}
	if cfg.Auth.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	token, expiresAt, err := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL).GenerateToken(*userID, *email)
	if err != nil {
		log.Fatal("Failed to generate token: %v", err)
	}

	fmt.Fprintf(os.Stderr, "expires %s\n", expiresAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Println(token)
}
