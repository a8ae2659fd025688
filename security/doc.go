// Package security holds transport security settings for request executors.
//
//	cfg := security.TLSConfig{
//	    CAFile:     "/etc/ssl/internal-ca.pem",
//	    CertFile:   "/etc/ssl/client.pem",
//	    KeyFile:    "/etc/ssl/client-key.pem",
//	    MinVersion: "1.3",
//	}
//
//	tlsConfig, err := cfg.Build()
package security
