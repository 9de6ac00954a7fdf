// Command userctl provisions accounts directly against the database,
// bypassing the HTTP API. Its main job is bootstrapping the first
// administrator on a fresh install, when no account exists yet to log in with.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/term"

	"github.com/openreach/cms-server/internal/common"
	"github.com/openreach/cms-server/internal/flagx"
	"github.com/openreach/cms-server/internal/logging"
	"github.com/openreach/cms-server/internal/server/auth"
	"github.com/openreach/cms-server/internal/server/config"
	"github.com/openreach/cms-server/internal/server/rbac"
	"github.com/openreach/cms-server/internal/server/repositories"
	"github.com/openreach/cms-server/internal/server/services"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

func promptLine(reader *bufio.Reader, prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return trimLine(line), nil
}

func trimLine(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

func promptPassword(prompt string) ([]byte, error) {
	fmt.Print(prompt)
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return nil, err
	}
	return pw, nil
}

func run(ctx context.Context) error {
	_ = godotenv.Load()

	var (
		email    string
		name     string
		roleStr  string
		generate bool
	)
	fs := flag.NewFlagSet("userctl", flag.ExitOnError)
	fs.StringVar(&email, "email", "", "account email")
	fs.StringVar(&name, "name", "", "display name")
	fs.StringVar(&roleStr, "role", string(rbac.RoleAdministrator), "account role")
	fs.BoolVar(&generate, "generate", false, "generate a temporary password instead of prompting")

	// Database flags (-d etc.) belong to the config flag set; keep only ours.
	args := flagx.FilterArgs(os.Args[1:], []string{"-email", "-name", "-role", "-generate"})
	if err := fs.Parse(args); err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)

	var err error
	if email == "" {
		if email, err = promptLine(reader, "Email: "); err != nil {
			return err
		}
	}
	if name == "" {
		if name, err = promptLine(reader, "Name: "); err != nil {
			return err
		}
	}

	role := rbac.Role(roleStr)
	if !role.Valid() {
		return fmt.Errorf("unknown role %q, valid roles: %v", roleStr, rbac.Roles())
	}

	var password string
	mustChange := false
	if generate {
		if password, err = services.TemporaryPassword(); err != nil {
			return err
		}
		mustChange = true
	} else {
		pw, err := promptPassword("Password: ")
		if err != nil {
			return err
		}
		defer common.WipeByteArray(pw)

		again, err := promptPassword("Repeat password: ")
		if err != nil {
			return err
		}
		defer common.WipeByteArray(again)

		if string(pw) != string(again) {
			return fmt.Errorf("passwords do not match")
		}
		password = string(pw)
	}

	cfg := config.LoadConfig()
	if cfg.DatabaseDSN == "" {
		return fmt.Errorf("database DSN is required (DATABASE_DSN)")
	}

	db, err := repositories.OpenPostgres(ctx, cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	logger := logging.NewJSONLogger(os.Stderr)
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	users := services.NewUserService(db, repositories.NewPostgresManager(), hasher, logger)

	user, err := users.CreateUser(ctx, email, name, role, password, mustChange, nil)
	if err != nil {
		return err
	}

	fmt.Printf("created %s (%s) with role %s\n", user.Email, user.ID, user.Role)
	if generate {
		fmt.Printf("temporary password (must be changed on first login): %s\n", password)
	}
	return nil
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
