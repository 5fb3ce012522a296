package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/jobmarket/internal/flagx"
	"github.com/dmitrijs2005/jobmarket/internal/timex"
)

// JsonConfig is the on-disk form of Config. Durations accept strings such
// as "168h" as well as integer nanoseconds.
type JsonConfig struct {
	EndpointAddrHTTP string         `json:"endpoint_addr_http"`
	Store            string         `json:"store"`
	DatabaseDSN      string         `json:"database_dsn"`
	MongoURI         string         `json:"mongo_uri"`
	MongoDatabase    string         `json:"mongo_database"`
	AccessSecret     string         `json:"access_secret"`
	RefreshSecret    string         `json:"refresh_secret"`
	AccessTokenTTL   timex.Duration `json:"access_token_ttl"`
	RefreshTokenTTL  timex.Duration `json:"refresh_token_ttl"`
	SearchTimeout    timex.Duration `json:"search_timeout"`
	Environment      string         `json:"environment"`
	LogLevel         string         `json:"log_level"`
}

// parseJson overlays the file named by -c/-config onto config. Fields absent
// from the file keep their current value. An unreadable or invalid file panics.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.Store, c.Store)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.MongoURI, c.MongoURI)
	setString(&config.MongoDatabase, c.MongoDatabase)
	setString(&config.AccessSecret, c.AccessSecret)
	setString(&config.RefreshSecret, c.RefreshSecret)
	setString(&config.Environment, c.Environment)
	setString(&config.LogLevel, c.LogLevel)
	if c.AccessTokenTTL.Duration != 0 {
		config.AccessTokenTTL = c.AccessTokenTTL.Duration
	}
	if c.RefreshTokenTTL.Duration != 0 {
		config.RefreshTokenTTL = c.RefreshTokenTTL.Duration
	}
	if c.SearchTimeout.Duration != 0 {
		config.SearchTimeout = c.SearchTimeout.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
