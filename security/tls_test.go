package security

import (
	"crypto/tls"
	"testing"

	"github.com/kbukum/netfoundation/security/tlstest"
)

func TestTLSConfig_Build_Disabled(t *testing.T) {
	var nilCfg *TLSConfig
	for name, cfg := range map[string]*TLSConfig{"nil": nilCfg, "zero": {}} {
		result, err := cfg.Build()
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if result != nil {
			t.Errorf("%s: expected nil tls.Config", name)
		}
	}
}

func TestTLSConfig_Build_Basic(t *testing.T) {
	tests := []struct {
		name    string
		cfg     TLSConfig
		check   func(*tls.Config) bool
		wantErr bool
	}{
		{"skip verify", TLSConfig{SkipVerify: true}, func(c *tls.Config) bool { return c.InsecureSkipVerify }, false},
		{"server name", TLSConfig{ServerName: "api.internal"}, func(c *tls.Config) bool { return c.ServerName == "api.internal" }, false},
		{"default min version", TLSConfig{ServerName: "x"}, func(c *tls.Config) bool { return c.MinVersion == tls.VersionTLS12 }, false},
		{"tls 1.3", TLSConfig{MinVersion: "1.3"}, func(c *tls.Config) bool { return c.MinVersion == tls.VersionTLS13 }, false},
		{"bad version", TLSConfig{MinVersion: "1.0"}, nil, true},
		{"missing CA file", TLSConfig{CAFile: "/nonexistent/ca.pem"}, nil, true},
		{"missing cert files", TLSConfig{CertFile: "/nonexistent/c.pem", KeyFile: "/nonexistent/k.pem"}, nil, true},
		{"bad inline CA", TLSConfig{CAPEM: "garbage"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tt.cfg.Build()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result == nil || !tt.check(result) {
				t.Errorf("unexpected tls.Config: %+v", result)
			}
		})
	}
}

func TestTLSConfig_Validate(t *testing.T) {
	var nilCfg *TLSConfig
	if err := nilCfg.Validate(); err != nil {
		t.Errorf("nil config: unexpected error %v", err)
	}
	if err := (&TLSConfig{CertFile: "c.pem"}).Validate(); err == nil {
		t.Error("expected error for cert without key")
	}
	if err := (&TLSConfig{KeyFile: "k.pem"}).Validate(); err == nil {
		t.Error("expected error for key without cert")
	}
	if err := (&TLSConfig{CertFile: "c.pem", KeyFile: "k.pem", MinVersion: "1.2"}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestTLSConfig_IsEnabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  *TLSConfig
		want bool
	}{
		{"nil", nil, false},
		{"zero", &TLSConfig{}, false},
		{"ca pem", &TLSConfig{CAPEM: "x"}, true},
		{"min version", &TLSConfig{MinVersion: "1.3"}, true},
	}
	for _, tt := range tests {
		if got := tt.cfg.IsEnabled(); got != tt.want {
			t.Errorf("%s: IsEnabled() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestTLSConfig_Build_WithGeneratedCerts(t *testing.T) {
	certs := tlstest.Generate(t)
	cfg := &TLSConfig{
		CAFile:     certs.CAFile,
		CAPEM:      string(certs.CAPEM),
		CertFile:   certs.CertFile,
		KeyFile:    certs.KeyFile,
		ServerName: "localhost",
		MinVersion: "1.3",
	}
	result, err := cfg.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.RootCAs == nil {
		t.Error("expected RootCAs to be set")
	}
	if len(result.Certificates) != 1 {
		t.Errorf("expected 1 client certificate, got %d", len(result.Certificates))
	}
	if result.ServerName != "localhost" {
		t.Errorf("expected ServerName=localhost, got %s", result.ServerName)
	}
}

func TestTLSConfig_Build_InvalidCAContent(t *testing.T) {
	caFile := tlstest.WriteInvalidPEM(t, "bad-ca.pem")
	if _, err := (&TLSConfig{CAFile: caFile}).Build(); err == nil {
		t.Fatal("expected error for invalid CA PEM content")
	}
}
