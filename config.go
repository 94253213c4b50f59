package jsonrpc

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Duration decodes TOML duration strings such as "30s" or "1m30s".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// BasicAuthConfig carries Basic credentials.
type BasicAuthConfig struct {
	Username string `toml:"username"`
	Password string `toml:"password"`
}

// TransportConfig is the TOML schema for building an HTTPTransport. The url,
// credential and header values go through ${VAR} environment expansion so
// secrets can stay out of the file.
type TransportConfig struct {
	URL             string            `toml:"url"`
	BasicAuth       *BasicAuthConfig  `toml:"basicAuth"`
	BearerToken     string            `toml:"bearerToken"`
	Headers         map[string]string `toml:"headers"`
	Timeout         Duration          `toml:"timeout"`
	ConnectTimeout  Duration          `toml:"connectTimeout"`
	PoolIdleTimeout Duration          `toml:"poolIdleTimeout"`
	MaxConnsPerHost int               `toml:"maxConnsPerHost"`
	TCPKeepalive    Duration          `toml:"tcpKeepalive"`
	TCPNoDelay      *bool             `toml:"tcpNoDelay"`
	HTTPSOnly       bool              `toml:"httpsOnly"`
}

// LoadEnv loads .env style files into the process environment before config
// expansion. Existing variables are not overridden.
func LoadEnv(files ...string) error {
	return godotenv.Load(files...)
}

// LoadTransportConfig reads a TOML transport config from path.
func LoadTransportConfig(path string) (*TransportConfig, error) {
	var cfg TransportConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("jsonrpc: load config %s: %w", path, err)
	}
	return &cfg, nil
}

// Build creates the configured transport.
func (c *TransportConfig) Build() (*HTTPTransport, error) {
	if c.URL == "" {
		return nil, errors.New("jsonrpc: config url is required")
	}

	b := NewHTTPTransportBuilder()
	if c.BasicAuth != nil {
		b.BasicAuth(os.ExpandEnv(c.BasicAuth.Username), os.ExpandEnv(c.BasicAuth.Password))
	}
	if c.BearerToken != "" {
		b.BearerAuth(os.ExpandEnv(c.BearerToken))
	}
	for name, value := range c.Headers {
		b.Header(name, os.ExpandEnv(value))
	}
	if c.Timeout > 0 {
		b.Timeout(time.Duration(c.Timeout))
	}
	if c.ConnectTimeout > 0 {
		b.ConnectTimeout(time.Duration(c.ConnectTimeout))
	}
	if c.PoolIdleTimeout > 0 {
		b.PoolIdleTimeout(time.Duration(c.PoolIdleTimeout))
	}
	if c.MaxConnsPerHost > 0 {
		b.MaxConnsPerHost(c.MaxConnsPerHost)
	}
	if c.TCPKeepalive > 0 {
		b.TCPKeepalive(time.Duration(c.TCPKeepalive))
	}
	if c.TCPNoDelay != nil {
		b.TCPNoDelay(*c.TCPNoDelay)
	}
	if c.HTTPSOnly {
		b.HTTPSOnly(true)
	}
	return b.Build(os.ExpandEnv(c.URL))
}
