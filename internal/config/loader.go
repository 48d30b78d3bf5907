package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/rowgate/rowgate/internal/db"
)

// Server holds the HTTP server settings.
type Server struct {
	Addr           string
	AllowedOrigins []string
}

// Storage holds settings for the local storage backend.
type Storage struct {
	LocalRoot string
}

// Config is the full application configuration.
type Config struct {
	Database db.Config
	Server   Server
	Storage  Storage
}

// Load reads config.yaml from configPath, falling back to defaults plus
// environment overrides (ROWGATE_DATABASE_HOST, ROWGATE_SERVER_ADDR, ...).
func Load(configPath string) (Config, error) {
	cfg := Config{
		Database: db.DefaultConfig(),
		Server: Server{
			Addr:           ":8080",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Storage: Storage{
			LocalRoot: "data/uploads",
		},
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv()
	v.SetEnvPrefix("ROWGATE")

	v.BindEnv("database.host")
	v.BindEnv("database.port")
	v.BindEnv("database.user")
	v.BindEnv("database.password")
	v.BindEnv("database.dbname")
	v.BindEnv("database.sslmode")
	v.BindEnv("server.addr")
	v.BindEnv("storage.local_root")

	if err := v.ReadInConfig(); err != nil {
		fmt.Println("No config.yaml found, using defaults and env vars")
	} else {
		fmt.Println("Loaded config.yaml")
	}

	if v.IsSet("database.host") {
		cfg.Database.Host = v.GetString("database.host")
	}
	if v.IsSet("database.port") {
		cfg.Database.Port = v.GetInt("database.port")
	}
	if v.IsSet("database.user") {
		cfg.Database.User = v.GetString("database.user")
	}
	if v.IsSet("database.password") {
		cfg.Database.Password = v.GetString("database.password")
	}
	if v.IsSet("database.dbname") {
		cfg.Database.DBName = v.GetString("database.dbname")
	}
	if v.IsSet("database.sslmode") {
		cfg.Database.SSLMode = v.GetString("database.sslmode")
	}
	if v.IsSet("server.addr") {
		cfg.Server.Addr = v.GetString("server.addr")
	}
	if v.IsSet("server.allowed_origins") {
		cfg.Server.AllowedOrigins = v.GetStringSlice("server.allowed_origins")
	}
	if v.IsSet("storage.local_root") {
		cfg.Storage.LocalRoot = v.GetString("storage.local_root")
	}

	return cfg, nil
}
