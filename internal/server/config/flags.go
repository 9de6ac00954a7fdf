package config

import (
	"flag"
	"os"
	"time"

	"github.com/openreach/cms-server/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   token signing secret
//	-k int      bcrypt cost factor
//	-m int      max failed login attempts before lockout
//	-l int      lock duration, minutes
//	-t int      access token validity, hours
//
// Args are first filtered with flagx.FilterArgs so this flag set does not
// collide with flags owned by other components. Duration flags are accepted
// as integers and converted.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-k", "-m", "-l", "-t"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "token signing secret")
	fs.IntVar(&config.BcryptCost, "k", config.BcryptCost, "bcrypt cost factor")
	fs.IntVar(&config.MaxLoginAttempts, "m", config.MaxLoginAttempts, "max failed login attempts")

	lockMinutes := fs.Int("l", int(config.LockDuration.Minutes()), "lock duration (in minutes)")
	tokenHours := fs.Int("t", int(config.AccessTokenTTL.Hours()), "access token validity (in hours)")

	_ = fs.Parse(args)

	config.LockDuration = time.Duration(*lockMinutes) * time.Minute
	config.AccessTokenTTL = time.Duration(*tokenHours) * time.Hour
}
