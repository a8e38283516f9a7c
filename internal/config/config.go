// /internal/config/config.go
package config

import (
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

func init() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, falling back to system environment variables")
	}
}

// Config is the process configuration, loaded from the environment.
type Config struct {
	StoragePath      string `env:"STORAGE_PATH" envDefault:"datastore.json"`
	ThrottlePath     string `env:"THROTTLE_PATH" envDefault:"throttle.json"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile          string `env:"LOG_FILE"`
	OracleURL        string `env:"ORACLE_URL"`
	OracleModel      string `env:"ORACLE_MODEL" envDefault:"gpt-4o-mini"`
	OracleKey        string `env:"ORACLE_API_KEY"`
	AutoApproveGoals bool   `env:"AUTO_APPROVE_GOALS" envDefault:"true"`
}

func New() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
