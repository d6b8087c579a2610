package config

import (
	"flag"
	"os"
	"time"

	"github.com/max-sakeco/xero-sync/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     HTTP bind address (e.g., ":8080")
//	-d string     PostgreSQL DSN
//	-i int        sync interval, hours
//	-sync-now     run a sync immediately at startup
//	-force-full   force a full (non-incremental) sync
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - The interval flag is accepted as an integer in hours and then converted
//     to a time.Duration value.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-i", "-sync-now", "-force-full"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")

	syncIntervalHours := fs.Int("i", int(config.SyncInterval.Hours()), "sync interval (in hours)")

	fs.BoolVar(&config.SyncNow, "sync-now", config.SyncNow, "run a sync immediately at startup")
	fs.BoolVar(&config.ForceFullSync, "force-full", config.ForceFullSync, "force a full sync instead of incremental")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SyncInterval = time.Duration(*syncIntervalHours) * time.Hour
}
