package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/skillkeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   PostgreSQL DSN
//	-p int      equipment check period, ticks
//	-o bool     enable off-hand modifiers
//	-k bool     keep (save) blank profiles
//	-i int      autosave interval, minutes
//	-l string   log directory (empty: stdout only)
//	-u string   S3 root user
//	-w string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components. The autosave
// interval is accepted as an integer in minutes and converted to a
// time.Duration.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-p", "-o", "-k", "-i", "-l", "-u", "-w", "-b", "-g", "-e"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.IntVar(&config.ModifierItemCheckPeriod, "p", config.ModifierItemCheckPeriod, "equipment check period (in ticks)")
	fs.BoolVar(&config.ModifierItemEnableOffHand, "o", config.ModifierItemEnableOffHand, "enable off-hand modifiers")
	fs.BoolVar(&config.SaveBlankProfiles, "k", config.SaveBlankProfiles, "save blank profiles")

	autosaveInterval := fs.Int("i", int(config.AutosaveInterval.Minutes()), "autosave interval (in minutes)")

	fs.StringVar(&config.LogDir, "l", config.LogDir, "log directory")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "w", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AutosaveInterval = time.Duration(*autosaveInterval) * time.Minute
}
