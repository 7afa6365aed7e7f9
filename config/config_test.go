package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("POINTS_PER_MODULE", "")
	t.Setenv("CHALLENGE_BONUS_POINTS", "")
	t.Setenv("RANK_INTERVAL", "")
	t.Setenv("ALLOWED_ORIGINS", " http://a.test , ,http://b.test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int64(100), cfg.PointsPerModule)
	assert.Equal(t, int64(1000), cfg.ChallengeBonusPoints)
	assert.Equal(t, time.Minute, cfg.RankInterval)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
}

func TestLoadRejectsBadNumbers(t *testing.T) {
	t.Setenv("POINTS_PER_MODULE", "lots")
	_, err := Load()
	assert.ErrorContains(t, err, "POINTS_PER_MODULE")
}

func TestValidateRequiresDatabase(t *testing.T) {
	cfg := &Config{GatewayToken: "t", R2AccountID: "a", R2Bucket: "b", PointsPerModule: 1, ChallengeBonusPoints: 1}
	assert.ErrorContains(t, cfg.Validate(), "DATABASE_URL")

	cfg.DatabaseURL = "postgres://x"
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsWildcardOrigin(t *testing.T) {
	cfg := &Config{
		DatabaseURL: "postgres://x", GatewayToken: "t", R2AccountID: "a", R2Bucket: "b",
		PointsPerModule: 1, ChallengeBonusPoints: 1,
		AllowedOrigins: []string{"https://app.test", "*"},
	}
	assert.ErrorContains(t, cfg.Validate(), "ALLOWED_ORIGINS")

	cfg.AllowedOrigins = []string{"https://app.test"}
	assert.NoError(t, cfg.Validate())
}
