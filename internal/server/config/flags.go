package config

import (
	"flag"
	"os"
	"time"

	"github.com/ivanpetrenko/authgate/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-t int      reference token validity, days
//	-o string   default role for registered/anonymous users
//	-s string   role granted to share-code callers
//	-l int      reset code length, digits
//	-r int      reset code validity, minutes
//	-n int      verify code length, digits
//	-m string   verify code delivery mask (e.g., "###-###")
//	-v int      verify code validity, seconds
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - Duration flags are accepted as integers in the unit documented above and
//     then converted to time.Duration values.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-t", "-o", "-s", "-l", "-r", "-n", "-m", "-v"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.DefaultRole, "o", config.DefaultRole, "default role")
	fs.StringVar(&config.ShareRole, "s", config.ShareRole, "share code role")
	fs.IntVar(&config.ResetCodeLength, "l", config.ResetCodeLength, "reset code length (digits)")
	fs.IntVar(&config.VerifyCodeDigits, "n", config.VerifyCodeDigits, "verify code length (digits)")
	fs.StringVar(&config.VerifyCodeMask, "m", config.VerifyCodeMask, "verify code delivery mask")

	tokenValidityDays := fs.Int("t", int(config.TokenValidityDuration.Hours()/24), "token_validity_duration (in days)")
	resetValidityMinutes := fs.Int("r", int(config.ResetCodeValidityDuration.Minutes()), "reset_code_validity_duration (in minutes)")
	verifyValiditySeconds := fs.Int("v", int(config.VerifyCodeValidityDuration.Seconds()), "verify_code_validity_duration (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TokenValidityDuration = time.Duration(*tokenValidityDays) * 24 * time.Hour
	config.ResetCodeValidityDuration = time.Duration(*resetValidityMinutes) * time.Minute
	config.VerifyCodeValidityDuration = time.Duration(*verifyValiditySeconds) * time.Second
}
