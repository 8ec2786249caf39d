package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ukraineBounds() RegionBounds {
	return RegionBounds{
		MinLatitude:  44.0,
		MaxLatitude:  52.5,
		MinLongitude: 22.0,
		MaxLongitude: 40.5,
	}
}

func TestRegionBoundsContains(t *testing.T) {
	b := ukraineBounds()

	tests := []struct {
		name     string
		lat, lng float64
		want     bool
	}{
		{"kyiv", 50.45, 30.52, true},
		{"lviv", 49.84, 24.03, true},
		{"southern edge inclusive", 44.0, 33.0, true},
		{"northern edge inclusive", 52.5, 30.0, true},
		{"western edge inclusive", 48.0, 22.0, true},
		{"eastern edge inclusive", 48.0, 40.5, true},
		{"too far south", 43.9, 33.0, false},
		{"too far north", 52.6, 30.0, false},
		{"too far west", 48.0, 21.9, false},
		{"too far east", 48.0, 40.6, false},
		{"warsaw", 52.23, 21.01, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, b.Contains(tt.lat, tt.lng))
		})
	}
}

func TestValidateProductionConfigRejectsInvertedBounds(t *testing.T) {
	cfg := &ProductionConfig{
		Database: DatabaseConfig{Host: "localhost", Name: "culturemap"},
		JWT:      JWTConfig{SecretKey: "test-secret"},
		Moderation: ModerationConfig{Bounds: RegionBounds{
			MinLatitude:  52.5,
			MaxLatitude:  44.0,
			MinLongitude: 22.0,
			MaxLongitude: 40.5,
		}},
	}
	assert.Error(t, ValidateProductionConfig(cfg))

	cfg.Moderation.Bounds = ukraineBounds()
	assert.NoError(t, ValidateProductionConfig(cfg))
}

func TestValidateProductionConfigRequiresJWTSecret(t *testing.T) {
	cfg := &ProductionConfig{
		Database:   DatabaseConfig{Host: "localhost", Name: "culturemap"},
		Moderation: ModerationConfig{Bounds: ukraineBounds()},
	}
	assert.Error(t, ValidateProductionConfig(cfg))

	cfg.JWT.UseRSAKeys = true
	assert.Error(t, ValidateProductionConfig(cfg))

	cfg.JWT.UseRSAKeys = false
	cfg.JWT.SecretKey = "test-secret"
	assert.NoError(t, ValidateProductionConfig(cfg))
}
