package config

import (
	"flag"
	"os"
	"time"

	"github.com/annagav/garderobe/internal/flagx"
)

// parseFlags overlays cfg with values from command-line flags. Only the
// flags listed here are parsed; anything else on the command line is left
// for other packages.
func parseFlags(cfg *Config) {
	allowed := []string{"-s", "-server", "-d", "-db", "-cache", "-timeout"}
	args := flagx.FilterArgs(os.Args[1:], allowed)

	fs := flag.NewFlagSet("config", flag.ContinueOnError)

	server := fs.String("server", "", "Base URL of the backend API")
	serverShort := fs.String("s", "", "Base URL of the backend API (short)")
	dsn := fs.String("db", "", "Path to the local database")
	dsnShort := fs.String("d", "", "Path to the local database (short)")
	cache := fs.String("cache", "", "Directory for image cache and upload temp files")
	timeout := fs.Duration("timeout", 0, "HTTP request timeout")

	_ = fs.Parse(args)

	if *server != "" {
		cfg.ServerBaseURL = *server
	} else if *serverShort != "" {
		cfg.ServerBaseURL = *serverShort
	}
	if *dsn != "" {
		cfg.DatabaseDSN = *dsn
	} else if *dsnShort != "" {
		cfg.DatabaseDSN = *dsnShort
	}
	if *cache != "" {
		cfg.CacheDir = *cache
	}
	if *timeout != time.Duration(0) {
		cfg.RequestTimeout = *timeout
	}
}
