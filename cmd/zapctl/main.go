// zapctl is an operator tool for the zapbank service. Admin commands
// obtain an admin token with the shared key before calling the API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/andymarkow/zapbank/internal/client"
)

const usage = `Usage: zapctl <command> [flags]

Commands:
  donate  -username <login> -amount <zaps>   credit zaps to an account
  users                                      list accounts with balances
  login   -username <login> -password <pw>   obtain a user token

Environment:
  ZAPBANK_ADDRESS   service base URL (default http://localhost:8080)
  ADMIN_SECRET_KEY  shared admin key (required for donate and users)
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	baseURL := os.Getenv("ZAPBANK_ADDRESS")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	api := client.New(baseURL)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch os.Args[1] {
	case "donate":
		fs := flag.NewFlagSet("donate", flag.ExitOnError)
		username := fs.String("username", "", "account login")
		amount := fs.Int64("amount", 0, "zaps to credit (may be negative)")
		fs.Parse(os.Args[2:]) //nolint:errcheck

		if *username == "" {
			log.Fatal("donate: -username is required")
		}

		token := adminToken(ctx, api)

		result, err := api.Donate(ctx, token, *username, *amount)
		if err != nil {
			log.Fatalf("api.Donate: %v", err)
		}

		fmt.Println(result.Message)

	case "users":
		token := adminToken(ctx, api)

		userList, err := api.ListUsers(ctx, token)
		if err != nil {
			log.Fatalf("api.ListUsers: %v", err)
		}

		for _, user := range userList {
			fmt.Printf("%s\t%d\n", user.Username, user.Zaps)
		}

	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		username := fs.String("username", "", "account login")
		password := fs.String("password", "", "account password")
		fs.Parse(os.Args[2:]) //nolint:errcheck

		session, err := api.Login(ctx, *username, *password)
		if err != nil {
			log.Fatalf("api.Login: %v", err)
		}

		if session.Created {
			fmt.Fprintln(os.Stderr, "account created")
		}

		fmt.Println(session.Token)

	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func adminToken(ctx context.Context, api *client.Client) string {
	adminKey := os.Getenv("ADMIN_SECRET_KEY")
	if adminKey == "" {
		log.Fatal("ADMIN_SECRET_KEY is not set")
	}

	token, err := api.AdminLogin(ctx, adminKey)
	if err != nil {
		log.Fatalf("api.AdminLogin: %v", err)
	}

	return token
}
