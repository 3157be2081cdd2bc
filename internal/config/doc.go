// Package config manages application configuration for PickUp.
//
// Configuration is parsed from environment variables via struct tags and
// validated once at startup. All configuration is centralized here.
//
// # Environment Variables
//
//	PICKUP_ENV     - runtime environment (development, production, test)
//	LOG_LEVEL      - slog level (debug, info, warn, error)
//	DB_HOST        - SurrealDB host (default: localhost)
//	DB_PORT        - SurrealDB port (default: 8000)
//	DB_NAMESPACE   - namespace (default: pickup)
//	DB_DATABASE    - database (default: main)
//	DB_USER        - database user
//	DB_PASSWORD    - database password
package config
