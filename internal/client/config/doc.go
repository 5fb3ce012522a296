// Package config loads runtime configuration for the jobmarket CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// # JSON schema
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "database_path": "jobmarket.db",
//	  "redis_url": "redis://localhost:6379/0",
//	  "online_check_interval": "3s",
//	  "request_timeout": "10s"
//	}
package config
