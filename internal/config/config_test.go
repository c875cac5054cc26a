package config

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeaders(t *testing.T) {
	header, err := ParseHeaders([]string{
		"X-Token:abc",
		"X-Meta:a:b:c",
		"Cookie: session=1",
	})
	require.NoError(t, err)

	assert.Equal(t, "abc", header.Get("X-Token"))
	// Everything after the first colon belongs to the value.
	assert.Equal(t, "a:b:c", header.Get("X-Meta"))
	// The value is not trimmed.
	assert.Equal(t, " session=1", header.Get("Cookie"))
}

func TestParseHeadersRepeatedKey(t *testing.T) {
	header, err := ParseHeaders([]string{"X-Tag:one", "X-Tag:two"})
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, header.Values("X-Tag"))
}

func TestParseHeadersInvalid(t *testing.T) {
	_, err := ParseHeaders([]string{"no-colon-here"})
	assert.Error(t, err)

	_, err = ParseHeaders([]string{":value-without-key"})
	assert.Error(t, err)
}

func TestParseHeadersFirstColonProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("value is everything after the first colon", prop.ForAll(
		func(key, value string) bool {
			header, err := ParseHeaders([]string{key + ":" + value})
			if err != nil {
				return false
			}
			return header.Get(key) == value
		},
		gen.RegexMatch(`[A-Za-z][A-Za-z0-9-]{0,24}`),
		gen.RegexMatch(`[ -~]{0,64}`),
	))

	properties.TestingRun(t)
}

func TestBasicAuth(t *testing.T) {
	assert.Equal(t, "Basic dXNlcjpwYXNz", BasicAuth("user:pass"))
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"localhost:8080", "ws://localhost:8080"},
		{"echo.example.com", "ws://echo.example.com"},
		{"ws://already", "ws://already"},
		{"wss://secure.example.com/path", "wss://secure.example.com/path"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeURL(tt.in))
	}
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, DefaultWait, cfg.Wait)
	assert.Empty(t, cfg.Origin)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("WSLINE_WAIT", "5")
	t.Setenv("WSLINE_ORIGIN", "https://example.com")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Wait)
	assert.Equal(t, "https://example.com", cfg.Origin)
}
