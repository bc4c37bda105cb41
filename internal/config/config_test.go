package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recyclehub/recyclehub/internal/config"
	"github.com/recyclehub/recyclehub/internal/material"
	"github.com/recyclehub/recyclehub/internal/points"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "RecycleHub", cfg.App.Name)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "recyclehub.db", cfg.Storage.Path)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 90*24*time.Hour, cfg.Voucher.Validity)
	assert.Equal(t, 5242880, cfg.Photo.MaxBytes)

	assert.Equal(t, material.PointsTable{
		material.KindPlastic: 2,
		material.KindGlass:   1,
		material.KindPaper:   1,
		material.KindMetal:   5,
	}, cfg.Points.PerKg)

	assert.Equal(t, points.TierTable{
		{Points: 100, Value: 50},
		{Points: 200, Value: 120},
		{Points: 500, Value: 350},
	}, cfg.Points.Tiers)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("POINTS_PER_KG", "plastic:3")
	t.Setenv("POINT_TIERS", "50:20")
	t.Setenv("VOUCHER_VALIDITY", "48h")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, material.PointsTable{material.KindPlastic: 3}, cfg.Points.PerKg)
	assert.Equal(t, points.TierTable{{Points: 50, Value: 20}}, cfg.Points.Tiers)
	assert.Equal(t, 48*time.Hour, cfg.Voucher.Validity)
}

func TestLoad_RejectsBadTable(t *testing.T) {
	t.Setenv("POINTS_PER_KG", "plastic")

	_, err := config.Load()
	assert.Error(t, err)
}
