// Package config holds the parsed command line surface and the helpers
// that turn it into dial material: header maps, basic auth, URL
// normalization and TLS client configuration.
package config

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// DefaultWait is how long batch mode stays connected after the last
// queued command before closing.
const DefaultWait = 2 * time.Second

// Config is the fully parsed configuration for one invocation.
// Exactly one of ListenPort / ConnectURL is set by the time a session
// starts; the CLI layer enforces the conflict rules.
type Config struct {
	ListenPort int
	ConnectURL string

	Protocol     int
	Origin       string
	Host         string
	Subprotocols []string
	Headers      []string
	Auth         string

	Execute []string
	Wait    time.Duration

	CA         string
	Cert       string
	Key        string
	Passphrase string
	NoCheck    bool

	NoColor bool
	Slash   bool
}

// envDefaults are picked up before flags are applied, so flags win.
type envDefaults struct {
	Origin      string  `env:"WSLINE_ORIGIN"`
	WaitSeconds float64 `env:"WSLINE_WAIT" envDefault:"2"`
}

// FromEnv returns a Config pre-populated from the environment.
func FromEnv() (*Config, error) {
	var e envDefaults
	if err := env.Parse(&e); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &Config{
		Origin: e.Origin,
		Wait:   time.Duration(e.WaitSeconds * float64(time.Second)),
	}, nil
}

// ParseHeaders converts raw "key:value" strings into an http.Header.
// The first colon separates key from value; further colons belong to
// the value. A string with no colon is an error.
func ParseHeaders(raw []string) (http.Header, error) {
	header := http.Header{}
	for _, h := range raw {
		key, value, ok := strings.Cut(h, ":")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid header %q: expected key:value", h)
		}
		header.Add(key, value)
	}
	return header, nil
}

// BasicAuth encodes a literal "username:password" string into an
// Authorization header value.
func BasicAuth(userpass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(userpass))
}

// NormalizeURL prepends a ws:// scheme to a bare host or host:port
// target. Targets that already carry a scheme pass through untouched.
func NormalizeURL(raw string) string {
	if strings.Contains(raw, "://") {
		return raw
	}
	return "ws://" + raw
}
