package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"TICKETING_API_URL": "http://upstream:4000/api/v1",
		"JWT_SECRET":        "secret",
		"PORT":              "",
		"OFFER_CACHE_TTL":   "",
		"RATE_LIMIT":        "",
	})
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Equal(t, 2*time.Minute, cfg.OfferCacheTTL)
	require.Equal(t, 30*time.Second, cfg.SubmitGuardTTL)
	require.Equal(t, 10*time.Second, cfg.UpstreamTimeout)
	require.Equal(t, "60-M", cfg.RateLimit)
	require.Equal(t, "development", cfg.AppEnv)
}

func TestLoadRequiresUpstreamURL(t *testing.T) {
	_, err := LoadForTests(map[string]string{
		"TICKETING_API_URL": "",
		"JWT_SECRET":        "secret",
	})
	require.Error(t, err)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	_, err := LoadForTests(map[string]string{
		"TICKETING_API_URL": "http://upstream:4000/api/v1",
		"JWT_SECRET":        "",
	})
	require.Error(t, err)
}

func TestLoadParsesLists(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"TICKETING_API_URL":    "http://upstream:4000/api/v1",
		"JWT_SECRET":           "secret",
		"CORS_ALLOWED_ORIGINS": "https://eventku.id, https://staging.eventku.id",
		"PORT":                 "9090",
		"OFFER_CACHE_TTL":      "45s",
	})
	require.NoError(t, err)
	require.Equal(t, []string{"https://eventku.id", "https://staging.eventku.id"}, cfg.CORSAllowedOrigins)
	require.Equal(t, ":9090", cfg.HTTPAddr())
	require.Equal(t, 45*time.Second, cfg.OfferCacheTTL)
}
