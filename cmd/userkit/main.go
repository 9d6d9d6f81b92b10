package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	httpadapter "github.com/aegis/userkit/internal/adapter/http"
	"github.com/aegis/userkit/internal/config"
	"github.com/aegis/userkit/internal/domain"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		sample := config.Default().Sample
		return checkUser(stdout, sample.Name, sample.Email, sample.Password)
	}

	switch args[0] {
	case "validate":
		fs := newFlagSet("validate", stderr)
		cfgPath := fs.String("config", "", "Config file with a sample user")
		name := fs.String("name", "", "User name (overrides config)")
		email := fs.String("email", "", "User email (overrides config)")
		password := fs.String("password", "", "User password (overrides config)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		cfg, err := config.Load(*cfgPath)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		sample := cfg.Sample
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "name":
				sample.Name = *name
			case "email":
				sample.Email = *email
			case "password":
				sample.Password = *password
			}
		})
		return checkUser(stdout, sample.Name, sample.Email, sample.Password)
	case "register":
		fs := newFlagSet("register", stderr)
		serverURL := fs.String("server-url", "", "Server URL (e.g. http://localhost:8080)")
		name := fs.String("name", "", "User name")
		email := fs.String("email", "", "User email")
		password := fs.String("password", "", "User password")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if *serverURL == "" {
			fmt.Fprintln(stderr, "--server-url required")
			return 2
		}
		return register(stdout, stderr, *serverURL, *name, *email, *password)
	case "serve", "install", "uninstall":
		fs := newFlagSet(args[0], stderr)
		cfgPath := fs.String("config", "userkit.yaml", "Config file")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		cfg, err := config.Load(*cfgPath)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		if err := runService(args[0], *cfgPath, cfg); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", args[0])
		fmt.Fprintln(stderr, "usage: userkit [validate|register|serve|install|uninstall] [flags]")
		return 2
	}
}

func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

// checkUser builds a user, sets its password and reports whether it is valid.
// Exit status 1 means invalid user data.
func checkUser(w io.Writer, name, email, password string) int {
	user := domain.NewUser(name, email)
	user.SetPassword(password)

	if user.IsValid() {
		fmt.Fprintln(w, "User is valid:", user.GetDisplayName())
		return 0
	}
	fmt.Fprintln(w, "Invalid user data")
	return 1
}

func register(stdout, stderr io.Writer, serverURL, name, email, password string) int {
	c := httpadapter.NewClient(serverURL)
	ctx := context.Background()
	id, err := c.Register(ctx, name, email, password)
	if err != nil {
		fmt.Fprintf(stderr, "register: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "User registered, ID: %d\n", id)

	display, err := c.Validate(ctx, id)
	if errors.Is(err, domain.ErrInvalidUser) {
		fmt.Fprintln(stdout, "Invalid user data")
		return 1
	}
	if err != nil {
		fmt.Fprintf(stderr, "validate: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, "User is valid:", display)
	return 0
}
