// Package tlsutil builds tls.Config values for the viewer's listener and for the
// client that downloads the registry export.
package tlsutil

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"github.com/minstroy46-sys/kursk-registry-sub000/errors"
)

// ServerConfig names the certificate served by the HTTP listener
type ServerConfig struct {
	CertFile   string
	KeyFile    string
	MinVersion string // "1.2" or "1.3"
}

// ClientConfig lists extra certificate authorities trusted when fetching the source
type ClientConfig struct {
	CAFiles    []string
	MinVersion string
}

// LoadServerTLSConfig creates a tls.Config for the HTTP listener
func LoadServerTLSConfig(cfg ServerConfig) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
	if err != nil {
		return nil, errors.WrapFatal(err, "tlsutil", "LoadServerTLSConfig", "load certificate")
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   ParseVersion(cfg.MinVersion),
	}, nil
}

// LoadClientTLSConfig creates a tls.Config for outbound requests.
// The system CA bundle is always trusted; CAFiles are added on top.
func LoadClientTLSConfig(cfg ClientConfig) (*tls.Config, error) {
	rootCAs, err := x509.SystemCertPool()
	if err != nil {
		rootCAs = x509.NewCertPool()
	}

	for _, caFile := range cfg.CAFiles {
		caPEM, err := os.ReadFile(caFile)
		if err != nil {
			return nil, errors.WrapFatal(err, "tlsutil", "LoadClientTLSConfig", fmt.Sprintf("read CA file %s", caFile))
		}
		if !rootCAs.AppendCertsFromPEM(caPEM) {
			return nil, errors.WrapFatal(
				fmt.Errorf("invalid PEM data"),
				"tlsutil",
				"LoadClientTLSConfig",
				fmt.Sprintf("parse CA certificate from %s", caFile),
			)
		}
	}

	return &tls.Config{
		RootCAs:    rootCAs,
		MinVersion: ParseVersion(cfg.MinVersion),
	}, nil
}

// ParseVersion converts "1.2" or "1.3" to the crypto/tls constant.
// Anything else yields TLS 1.2.
func ParseVersion(version string) uint16 {
	switch version {
	case "1.3":
		return tls.VersionTLS13
	default:
		return tls.VersionTLS12
	}
}

// ValidVersion reports whether version is accepted by ParseVersion as written
func ValidVersion(version string) bool {
	return version == "" || version == "1.2" || version == "1.3"
}
