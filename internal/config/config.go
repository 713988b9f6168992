package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	cfg, err := FromEnv(os.LookupEnv)
	if err != nil {
		log.Fatal("Invalid configuration", "error", err)
	}
	return cfg
}

// FromEnv builds a Config using lookup to read variables. DB_NAME and PORT are
// required; Turso, Slack and Pub/Sub are switched off when left unset.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	var missing []string
	required := func(key string) string {
		if value, ok := lookup(key); ok && value != "" {
			return value
		}
		missing = append(missing, key)
		return ""
	}
	optional := func(key, fallback string) string {
		if value, ok := lookup(key); ok {
			return value
		}
		return fallback
	}

	cfg := Config{
		DBName: required("DB_NAME"),
		Port:   required("PORT"),
		Slack: SlackConfig{
			Token:         optional("SLACK_BOT_TOKEN", ""),
			ChannelID:     optional("SLACK_CHANNEL_ID", ""),
			SigningSecret: optional("SLACK_SIGNING_SECRET", ""),
		},
		Turso: TursoConfig{
			PrimaryURL: optional("TURSO_PRIMARY_URL", ""),
			AuthToken:  optional("TURSO_AUTH_TOKEN", ""),
		},
		ProjectID: optional("GCP_PROJECT", ""),
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %v", missing)
	}

	courts, err := strconv.Atoi(optional("DEFAULT_COURTS", "2"))
	if err != nil || courts < 1 {
		return Config{}, fmt.Errorf("DEFAULT_COURTS must be a positive integer")
	}
	target, err := strconv.Atoi(optional("QUEUE_TARGET", "2"))
	if err != nil || target < 1 {
		return Config{}, fmt.Errorf("QUEUE_TARGET must be a positive integer")
	}
	cfg.Rotation = RotationConfig{DefaultCourts: courts, QueueTarget: target}

	if raw, ok := lookup("RNG_SEED"); ok && raw != "" {
		seed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("RNG_SEED must be an integer: %w", err)
		}
		cfg.Rotation.Seed = seed
		cfg.Rotation.HasSeed = true
	}
	return cfg, nil
}
