package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSV(t *testing.T) {
	assert.Nil(t, CSV(""))
	assert.Equal(t, []string{"kafka:9092", "kafka2:9092"}, CSV(" kafka:9092 ,, kafka2:9092 "))
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("STOREFRONT_TEST_INT", "not-a-number")
	t.Setenv("STOREFRONT_TEST_DUR", "250ms")
	t.Setenv("STOREFRONT_TEST_STR", "")

	assert.Equal(t, 7, EnvIntDefault("STOREFRONT_TEST_INT", 7))
	assert.Equal(t, 250*time.Millisecond, EnvDurationDefault("STOREFRONT_TEST_DUR", time.Second))
	assert.Equal(t, time.Second, EnvDurationDefault("STOREFRONT_TEST_MISSING", time.Second))
	assert.Equal(t, "fallback", EnvDefault("STOREFRONT_TEST_STR", "fallback"))
}

func TestMissing(t *testing.T) {
	var m Missing
	m.Str("x", "PRESENT")
	require.NoError(t, m.Err())

	m.Str("", "DATABASE_URL")
	m.Bytes(nil, "JWT_SECRET")
	err := m.Err()
	require.Error(t, err)
	assert.Equal(t, "missing required env DATABASE_URL, JWT_SECRET", err.Error())
}
