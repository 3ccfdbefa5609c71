package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalizeEnvKey(t *testing.T) {
	existing := map[string]any{
		"places": map[string]any{
			"defaultZoom":      10,
			"optimisticCreate": false,
			"defaultCenter": map[string]any{
				"lat": 32.0853,
			},
		},
		"geocoder": map[string]any{
			"baseUrl":  "",
			"cacheTTL": "10m",
		},
		"database": map[string]any{
			"sqlitePath": "placemap.db",
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "PLACES_DEFAULTZOOM", want: "places.defaultZoom"},
		{envKey: "PLACES_OPTIMISTICCREATE", want: "places.optimisticCreate"},
		{envKey: "PLACES_DEFAULTCENTER_LAT", want: "places.defaultCenter.lat"},
		{envKey: "GEOCODER_BASEURL", want: "geocoder.baseUrl"},
		{envKey: "GEOCODER_CACHETTL", want: "geocoder.cacheTTL"},
		{envKey: "DATABASE_SQLITEPATH", want: "database.sqlitePath"},
		// Unknown segments fall back to lowercase dotted keys.
		{envKey: "PLACES_MAXMARKERS", want: "places.maxmarkers"},
		{envKey: "TRACING_EXPORTER_URL", want: "tracing.exporter.url"},
	}

	for _, tt := range tests {
		t.Run(tt.envKey, func(t *testing.T) {
			assert.Equal(t, tt.want, canonicalizeEnvKey(tt.envKey, existing))
		})
	}
}
