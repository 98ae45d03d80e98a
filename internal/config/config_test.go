package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCSV(t *testing.T) {
	t.Parallel()

	assert.Nil(t, CSV(""))
	assert.Equal(t, []string{"a", "b"}, CSV(" a , ,b "))
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("VT_TEST_INT", "42")
	t.Setenv("VT_TEST_BAD_INT", "x")
	t.Setenv("VT_TEST_DUR", "90s")
	t.Setenv("VT_TEST_BOOL", "false")

	assert.Equal(t, 42, EnvIntDefault("VT_TEST_INT", 1))
	assert.Equal(t, 1, EnvIntDefault("VT_TEST_BAD_INT", 1))
	assert.Equal(t, 90*time.Second, EnvDurationDefault("VT_TEST_DUR", time.Second))
	assert.Equal(t, time.Second, EnvDurationDefault("VT_TEST_MISSING", time.Second))
	assert.False(t, EnvBoolDefault("VT_TEST_BOOL", true))
	assert.Equal(t, "def", EnvDefault("VT_TEST_MISSING", "def"))
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_TTL", "")
	t.Setenv("ES_INDEX", "")

	cfg := Load()
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, "videos", cfg.ESIndex)
}
