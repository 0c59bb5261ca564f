// Command client is the offline-capable auth CLI. It talks to the backend
// when reachable and falls back to the local state file when it is not.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"heritage_auth/internal/client"

	"github.com/joho/godotenv"
)

const usage = `Usage: client [flags] <command>

Commands:
  login     -email -password [-remember]
  register  -email -password -name -role
  whoami
  logout
  accounts
  forgot    -email
  reset     -email -otp -new-password
`

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading, relying on environment variables")
	}

	api := flag.String("api", getenv("AUTH_API_BASE", "http://localhost:4000"), "backend base URL (empty for pure offline mode)")
	statePath := flag.String("state", getenv("AUTH_STATE_FILE", "data/client_state.json"), "local state file")
	email := flag.String("email", "", "account email")
	password := flag.String("password", "", "account password")
	name := flag.String("name", "", "display name (register)")
	role := flag.String("role", "user", "account role (register)")
	otp := flag.String("otp", "", "one-time reset code")
	newPassword := flag.String("new-password", "", "new password (reset)")
	remember := flag.Bool("remember", false, "remember credentials locally (stored in plaintext)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	c := client.New(*api, *statePath)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	switch flag.Arg(0) {
	case "login":
		res, err := c.Authenticate(ctx, *email, *password)
		exitOn(err)
		if res.Success && *remember {
			exitOn(c.RememberCredentials(*email, *password))
		}
		report(res)
	case "register":
		res, err := c.Register(ctx, *email, *password, *name, *role)
		exitOn(err)
		report(res)
	case "whoami":
		sess, err := c.CurrentUser()
		exitOn(err)
		if sess == nil {
			fmt.Println("not logged in")
			return
		}
		fmt.Printf("%s (%s) -> %s\n", sess.Email, sess.Role, sess.Dashboard)
	case "logout":
		exitOn(c.Logout())
		fmt.Println("logged out")
	case "accounts":
		sessions, err := c.PredefinedUsers()
		exitOn(err)
		for _, s := range sessions {
			fmt.Printf("%s\t%s\t%s\n", s.Email, s.Role, s.Dashboard)
		}
	case "forgot":
		res, err := c.InitiateForgotPassword(*email)
		exitOn(err)
		report(res)
	case "reset":
		res, err := c.VerifyOTPAndReset(*email, *otp, *newPassword)
		exitOn(err)
		report(res)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func report(res *client.Result) {
	if res.Success {
		if res.Message != "" {
			fmt.Println(res.Message)
		}
		if res.User != nil {
			fmt.Printf("%s (%s) -> %s\n", res.User.Email, res.User.Role, res.User.Dashboard)
		}
		return
	}
	fmt.Fprintln(os.Stderr, res.Message)
	os.Exit(1)
}

func exitOn(err error) {
	if err != nil {
		log.Fatalf("error: %v", err)
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
