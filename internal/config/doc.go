// Package config manages application configuration for the Travelog API.
//
// The config package loads and validates configuration from environment
// variables. All configuration is centralized here to provide a single
// source of truth.
//
// # Configuration Loading
//
// Configuration is loaded from environment variables:
//
//	cfg, _ := config.Load()
//	if err := cfg.Validate(); err != nil { ... }
//
// # Configuration Groups
//
//   - Backend: which storage backend serves the repository contract
//   - LocalConfig: embedded engine settings (snapshot dir, debounce window)
//   - DatabaseConfig: SurrealDB connection settings
//   - LogConfig: log level and output format
//
// # Environment Variables
//
//	STORAGE_BACKEND   - "local" or "remote" (default: local)
//	LOCAL_DATA_DIR    - snapshot slot directory (default: ./data)
//	SNAPSHOT_DEBOUNCE - snapshot debounce window (default: 500ms)
//	DB_HOST           - SurrealDB host (default: localhost)
//	DB_PORT           - SurrealDB port (default: 8000)
//	DB_NAMESPACE      - SurrealDB namespace (default: travelog)
//	DB_DATABASE       - SurrealDB database (default: main)
//	DB_USER           - Database username (default: root)
//	DB_PASSWORD       - Database password (default: root)
//	LOG_LEVEL         - debug, info, warn or error (default: info)
//	LOG_FORMAT        - json or text (default: json)
package config
