// Package config loads drivegate configuration with Viper.
//
// Values come from, in increasing precedence: config.yml (searched under
// ./cmd/<service>/ and ./config/), a .env file loaded with godotenv, legacy
// environment aliases, and canonical environment variables whose names are
// the upper-cased, underscore-joined key path (DRIVE_CLIENT_ID for
// drive.client_id).
//
//	var cfg gateway.Config
//	err := config.LoadConfig("drivegate", &cfg, config.WithEnvAliases(gateway.LegacyEnv))
package config
