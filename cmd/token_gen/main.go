package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/DelphiTri/website/internal/common"
	"github.com/DelphiTri/website/internal/config"
)

// token_gen mints a bearer token for a user id using JWT_SECRET from the
// environment or .env. Intended for local testing and operator scripts.
func main() {
	userID := flag.Int64("user", 0, "numeric user id to put in the sub claim")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	if *userID <= 0 {
		log.Fatal("-user is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	token, err := common.NewTokenSigner([]byte(cfg.Auth.JWTSecret)).Issue(*userID, *ttl)
	if err != nil {
		log.Fatalf("issue token: %v", err)
	}

	fmt.Println(token)
}
