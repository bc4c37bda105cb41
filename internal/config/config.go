package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/recyclehub/recyclehub/internal/material"
	"github.com/recyclehub/recyclehub/internal/points"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"RecycleHub"`
		Env  string `envconfig:"ENV" default:"development"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	Storage struct {
		Path string `envconfig:"STORAGE_PATH" default:"recyclehub.db"`
	}

	Auth struct {
		Secret   string        `envconfig:"AUTH_SECRET" default:"dev-only-secret"`
		TokenTTL time.Duration `envconfig:"AUTH_TOKEN_TTL" default:"24h"`
	}

	// The points table and redemption tiers drifted across revisions of the
	// product rules; these defaults are the chosen canonical values and can
	// be overridden without a rebuild.
	Points struct {
		PerKg material.PointsTable `envconfig:"POINTS_PER_KG" default:"plastic:2,glass:1,paper:1,metal:5"`
		Tiers points.TierTable     `envconfig:"POINT_TIERS" default:"100:50,200:120,500:350"`
	}

	Voucher struct {
		Validity time.Duration `envconfig:"VOUCHER_VALIDITY" default:"2160h"` // 90 days
	}

	Photo struct {
		MaxBytes int `envconfig:"PHOTO_MAX_BYTES" default:"5242880"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
