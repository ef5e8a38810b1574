package config

import (
	"log"
	"os"

	"github.com/spf13/viper"
)

// Config holds the application's configuration.
type Config struct {
	Server struct {
		Port string
	}
	Database struct {
		DSN string // "memory" or a file path for SQLite
	}
	SeedProtocolCatalog bool `mapstructure:"seed_protocol_catalog"` // seed built-in protocols when the catalog is empty
}

// AppConfig is the global configuration instance.
var AppConfig Config

// LoadConfig loads configuration from file and environment variables.
func LoadConfig() {
	viper.SetConfigName("config") // Name of config file (without extension)
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")  // Path to look for the config file in
	viper.AddConfigPath(".")         // Optionally look for config in the working directory
	viper.AddConfigPath("../config") // For running from locations like tests

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("database.dsn", "memory")
	viper.SetDefault("seed_protocol_catalog", true)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("WARN: [Config] Configuration file (config.yaml) not found. Using environment variables and defaults.")
		} else {
			log.Fatalf("FATAL: [Config] Error reading configuration file: %v", err)
		}
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("FATAL: [Config] Failed to unmarshal configuration into AppConfig struct: %v", err)
	}

	// Environment variable overrides
	if port := os.Getenv("SERVER_PORT"); port != "" {
		AppConfig.Server.Port = port
		log.Printf("INFO: [Config] Server port overridden by environment variable SERVER_PORT: %s", port)
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		AppConfig.Database.DSN = dsn
		log.Printf("INFO: [Config] Database DSN overridden by environment variable DATABASE_DSN.")
	}

	log.Println("INFO: [Config] Configuration loading complete.")
}
