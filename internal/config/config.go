package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Kvittering"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"kvittering"`
	}

	Analyzer struct {
		Endpoint   string        `envconfig:"ANALYZER_ENDPOINT" default:"https://receipt-model.cognitiveservices.azure.com/"`
		APIKey     string        `envconfig:"ANALYZER_API_KEY" required:"true"`
		ModelID    string        `envconfig:"ANALYZER_MODEL_ID" default:"prebuilt-receipt"`
		APIVersion string        `envconfig:"ANALYZER_API_VERSION" default:"2023-07-31"`
		PollDelay  time.Duration `envconfig:"ANALYZER_POLL_DELAY" default:"30s"`
	}

	Auth struct {
		Secret string `envconfig:"CLIENT_SECRET" required:"true"`
	}

	Cache struct {
		Path string `envconfig:"CACHE_PATH" default:"kvittering-cache.db"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
