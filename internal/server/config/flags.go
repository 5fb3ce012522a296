package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/jobmarket/internal/flagx"
)

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     HTTP bind address (e.g., ":8080")
//	-m string     discovery store: postgres, mongo or memory
//	-d string     PostgreSQL DSN
//	-u string     MongoDB URI
//	-n string     MongoDB database name
//	-s string     access token secret
//	-k string     refresh token secret
//	-t duration   access token lifetime (e.g., "168h")
//	-r duration   refresh token lifetime
//	-w duration   search timeout
//	-e string     environment ("production" switches to JSON logs)
//	-l string     log level
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-m", "-d", "-u", "-n", "-s", "-k", "-t", "-r", "-w", "-e", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.Store, "m", config.Store, "discovery store")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.MongoURI, "u", config.MongoURI, "mongo URI")
	fs.StringVar(&config.MongoDatabase, "n", config.MongoDatabase, "mongo database")
	fs.StringVar(&config.AccessSecret, "s", config.AccessSecret, "access token secret")
	fs.StringVar(&config.RefreshSecret, "k", config.RefreshSecret, "refresh token secret")
	fs.DurationVar(&config.AccessTokenTTL, "t", config.AccessTokenTTL, "access token lifetime")
	fs.DurationVar(&config.RefreshTokenTTL, "r", config.RefreshTokenTTL, "refresh token lifetime")
	fs.DurationVar(&config.SearchTimeout, "w", config.SearchTimeout, "search timeout")
	fs.StringVar(&config.Environment, "e", config.Environment, "environment")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
