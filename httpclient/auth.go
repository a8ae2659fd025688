package httpclient

import (
	"encoding/base64"
	"net/url"

	"github.com/kbukum/netfoundation/validation"
)

// AuthType identifies the authentication method.
type AuthType string

const (
	// AuthNone disables authentication.
	AuthNone AuthType = ""
	// AuthBearer uses Bearer token authentication.
	AuthBearer AuthType = "bearer"
	// AuthBasic uses HTTP Basic authentication.
	AuthBasic AuthType = "basic"
	// AuthAPIKey uses API key authentication (header or query parameter).
	AuthAPIKey AuthType = "api_key"
	// AuthCustom uses a custom authentication function.
	AuthCustom AuthType = "custom"
)

const defaultAPIKeyName = "X-API-Key"

// AuthConfig configures request authentication.
type AuthConfig struct {
	// Type is the authentication method.
	Type AuthType `yaml:"type" mapstructure:"type" validate:"omitempty,oneof=bearer basic api_key custom"`
	// Token is the bearer token (AuthBearer).
	Token string `yaml:"token" mapstructure:"token"`
	// Username is the basic auth username (AuthBasic).
	Username string `yaml:"username" mapstructure:"username"`
	// Password is the basic auth password (AuthBasic).
	Password string `yaml:"password" mapstructure:"password"`
	// Key is the API key value (AuthAPIKey).
	Key string `yaml:"key" mapstructure:"key"`
	// In specifies where to place the API key: "header" (default) or "query" (AuthAPIKey).
	In string `yaml:"in" mapstructure:"in" validate:"omitempty,oneof=header query"`
	// Name is the header or query parameter name (AuthAPIKey). Defaults to "X-API-Key".
	Name string `yaml:"name" mapstructure:"name"`
	// Apply is a custom function to modify the request (AuthCustom).
	Apply func(*TransportRequest) `yaml:"-" mapstructure:"-"`
}

// BearerAuth creates a bearer token auth config.
func BearerAuth(token string) *AuthConfig {
	return &AuthConfig{Type: AuthBearer, Token: token}
}

// BasicAuth creates a basic auth config.
func BasicAuth(username, password string) *AuthConfig {
	return &AuthConfig{Type: AuthBasic, Username: username, Password: password}
}

// APIKeyAuth creates an API key auth config sent via header.
func APIKeyAuth(key string) *AuthConfig {
	return &AuthConfig{Type: AuthAPIKey, Key: key, In: "header", Name: defaultAPIKeyName}
}

// APIKeyAuthHeader creates an API key auth config with a custom header name.
func APIKeyAuthHeader(key, headerName string) *AuthConfig {
	return &AuthConfig{Type: AuthAPIKey, Key: key, In: "header", Name: headerName}
}

// APIKeyAuthQuery creates an API key auth config sent via query parameter.
func APIKeyAuthQuery(key, paramName string) *AuthConfig {
	return &AuthConfig{Type: AuthAPIKey, Key: key, In: "query", Name: paramName}
}

// CustomAuth creates a custom auth config with a request modifier function.
func CustomAuth(fn func(*TransportRequest)) *AuthConfig {
	return &AuthConfig{Type: AuthCustom, Apply: fn}
}

// Validate checks that the fields required by Type are present.
func (a *AuthConfig) Validate() error {
	v := validation.New()
	switch a.Type {
	case AuthNone:
	case AuthBearer:
		v.Required("auth.token", a.Token)
	case AuthBasic:
		v.Required("auth.username", a.Username)
	case AuthAPIKey:
		v.Required("auth.key", a.Key)
		if a.In != "" {
			v.OneOf("auth.in", a.In, []string{"header", "query"})
		}
	case AuthCustom:
		v.Custom(a.Apply != nil, "auth.apply", "is required for custom auth")
	default:
		v.AddError("auth.type", "must be one of [bearer basic api_key custom]")
	}
	return v.Err()
}

// apply applies authentication to an assembled request.
func (a *AuthConfig) apply(req *TransportRequest) {
	if a == nil {
		return
	}
	switch a.Type {
	case AuthBearer:
		req.Header.Set("Authorization", "Bearer "+a.Token)
	case AuthBasic:
		cred := base64.StdEncoding.EncodeToString([]byte(a.Username + ":" + a.Password))
		req.Header.Set("Authorization", "Basic "+cred)
	case AuthAPIKey:
		name := a.Name
		if name == "" {
			name = defaultAPIKeyName
		}
		if a.In == "query" {
			item := url.QueryEscape(name) + "=" + url.QueryEscape(a.Key)
			if req.URL.RawQuery != "" {
				req.URL.RawQuery += "&" + item
			} else {
				req.URL.RawQuery = item
			}
		} else {
			req.Header.Set(name, a.Key)
		}
		req.credentials = append(req.credentials, name)
	case AuthCustom:
		if a.Apply != nil {
			a.Apply(req)
		}
	}
}
