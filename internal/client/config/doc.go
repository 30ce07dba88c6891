// Package config loads runtime configuration for the console.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Environment variables (ARKAD_*), read with go-envconfig.
//  4. Command-line flags, which override everything above.
//
// Supported flags
//
//	-u string   API base URL
//	-d string   path of the local SQLite store
//	-o string   directory for PDF exports
//	-l string   log level (debug, info, warn, error)
//	-i int      idle timeout in seconds
//	-p int      page size for tables
//
// # JSON schema
//
// log_format selects zap JSON ("json", the default) or slog text output.
// Durations accept strings like "5s" or integer nanoseconds:
//
//	{
//	  "api_base_url": "https://arkad-server.onrender.com",
//	  "db_path": "console.db",
//	  "idle_timeout": "15m",
//	  "message_ttl": "5s",
//	  "log_format": "text",
//	  "upload": {"max_bytes": 409600, "max_size_mb": 0.4, "max_width_or_height": 1920}
//	}
//
// The secret key is only read from ARKAD_SECRET_KEY or the JSON
// file. It is shared with the server, so anyone holding a configured console
// can read the encrypted traffic.
package config
