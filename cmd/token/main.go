// Command token issues a bearer token for local testing of the API.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/srgjo27/lodging_booking/internal/adapter/auth"
	"github.com/srgjo27/lodging_booking/internal/config"
	"github.com/srgjo27/lodging_booking/internal/core/domain"
)

func main() {
	id := flag.Int64("user", 0, "user id to put in the sub claim")
	role := flag.String("role", string(domain.RoleUser), "user or admin")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	token, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL).
		Issue(domain.Actor{ID: *id, Role: domain.Role(*role)})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Println(token)
}
