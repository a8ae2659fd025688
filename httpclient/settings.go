package httpclient

import (
	"fmt"
	"maps"
	"time"

	"github.com/kbukum/netfoundation/config"
	"github.com/kbukum/netfoundation/param"
	"github.com/kbukum/netfoundation/security"
	"github.com/kbukum/netfoundation/validation"
	"github.com/kbukum/netfoundation/version"
)

const (
	// DefaultTimeout bounds an exchange when no timeout is configured.
	DefaultTimeout = 30 * time.Second
	// product prefixes the default User-Agent.
	product = "netfoundation"
)

// Settings configure request assembly and the response pipeline. Pass them
// by value; a Service keeps its own copy.
type Settings struct {
	// Timeout bounds each exchange.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gt=0"`
	// Encoding selects array, boolean and body encoding.
	Encoding param.Policy `yaml:"encoding" mapstructure:"encoding"`
	// Debug enables the exchange trace.
	Debug bool `yaml:"debug" mapstructure:"debug"`
	// StrictDecoding rejects response fields the target type does not
	// declare. Validate tags on the target are checked either way.
	StrictDecoding bool `yaml:"strict_decoding" mapstructure:"strict_decoding"`
	// Headers are sent with every request; router headers override them.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`
	// UserAgent is set unless the request carries its own.
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`
	// Auth is applied after all other headers.
	Auth *AuthConfig `yaml:"auth" mapstructure:"auth"`
	// Transport configures the default executor.
	Transport TransportConfig `yaml:"transport" mapstructure:"transport"`
}

// DefaultSettings returns settings with every default applied.
func DefaultSettings() Settings {
	var s Settings
	s.ApplyDefaults()
	s.Debug = true
	return s
}

// ApplyDefaults fills zero fields. Debug is left as configured.
func (s *Settings) ApplyDefaults() {
	if s.Timeout <= 0 {
		s.Timeout = DefaultTimeout
	}
	s.Encoding.ApplyDefaults()
	if s.UserAgent == "" {
		s.UserAgent = version.UserAgent(product)
	}
	s.Transport.ApplyDefaults()
}

// Validate checks the settings after defaults have been applied.
func (s *Settings) Validate() error {
	if err := validation.Validate(s); err != nil {
		return fmt.Errorf("httpclient: invalid settings: %w", err)
	}
	if s.Auth != nil {
		if err := s.Auth.Validate(); err != nil {
			return err
		}
	}
	if s.Transport.TLS != nil {
		if err := s.Transport.TLS.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// WithHeader returns a copy of s with an extra default header.
func (s Settings) WithHeader(key, value string) Settings {
	h := make(map[string]string, len(s.Headers)+1)
	maps.Copy(h, s.Headers)
	h[key] = value
	s.Headers = h
	return s
}

// WithEncoding returns a copy of s using policy.
func (s Settings) WithEncoding(policy param.Policy) Settings {
	s.Encoding = policy
	return s
}

// LoadSettings reads the "network" section of the named application's
// configuration, applies defaults and validates the result.
//
//	network:
//	  timeout: 10s
//	  debug: false
//	  encoding:
//	    array_encoding: no_brackets
//	    bool_encoding: literal
//	    body_encoder: json
func LoadSettings(appName string, opts ...config.LoaderOption) (Settings, error) {
	var file struct {
		Network Settings `mapstructure:"network"`
	}
	if err := config.LoadConfig(appName, &file, opts...); err != nil {
		return Settings{}, err
	}
	s := file.Network
	s.ApplyDefaults()
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// TransportConfig configures the default executor.
type TransportConfig struct {
	// TLS configures server verification and client certificates.
	TLS *security.TLSConfig `yaml:"tls" mapstructure:"tls"`
	// HTTP2 negotiates HTTP/2 over TLS.
	HTTP2 bool `yaml:"http2" mapstructure:"http2"`
	// ReadIdleTimeout sends HTTP/2 health-check pings after this much
	// silence on a connection. Zero disables them.
	ReadIdleTimeout time.Duration `yaml:"read_idle_timeout" mapstructure:"read_idle_timeout" validate:"gte=0"`
	// MaxIdleConns limits idle connections across all hosts.
	MaxIdleConns int `yaml:"max_idle_conns" mapstructure:"max_idle_conns" validate:"gte=0"`
	// MaxIdleConnsPerHost limits idle connections per host.
	MaxIdleConnsPerHost int `yaml:"max_idle_conns_per_host" mapstructure:"max_idle_conns_per_host" validate:"gte=0"`
	// IdleConnTimeout closes idle connections after this duration.
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout" mapstructure:"idle_conn_timeout" validate:"gte=0"`
	// DisableRedirects returns 3xx responses instead of following them.
	DisableRedirects bool `yaml:"disable_redirects" mapstructure:"disable_redirects"`
}

// ApplyDefaults fills zero pool limits.
func (c *TransportConfig) ApplyDefaults() {
	if c.MaxIdleConns == 0 {
		c.MaxIdleConns = 100
	}
	if c.MaxIdleConnsPerHost == 0 {
		c.MaxIdleConnsPerHost = 10
	}
	if c.IdleConnTimeout == 0 {
		c.IdleConnTimeout = 90 * time.Second
	}
}
