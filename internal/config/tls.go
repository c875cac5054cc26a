package config

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"

	"golang.org/x/term"
)

// TLSConfig builds the client TLS configuration from the configured
// key material. It returns nil when nothing TLS-related was requested,
// leaving the transport to its defaults.
func (c *Config) TLSConfig() (*tls.Config, error) {
	if c.CA == "" && c.Cert == "" && c.Key == "" && !c.NoCheck {
		return nil, nil
	}

	cfg := &tls.Config{InsecureSkipVerify: c.NoCheck}

	if c.CA != "" {
		pemBytes, err := os.ReadFile(c.CA)
		if err != nil {
			return nil, fmt.Errorf("read ca file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pemBytes) {
			return nil, fmt.Errorf("ca file %s: no certificates found", c.CA)
		}
		cfg.RootCAs = pool
	}

	if c.Cert != "" || c.Key != "" {
		if c.Cert == "" || c.Key == "" {
			return nil, fmt.Errorf("client certificate requires both --cert and --key")
		}
		cert, err := c.loadKeyPair()
		if err != nil {
			return nil, err
		}
		cfg.Certificates = []tls.Certificate{cert}
	}

	return cfg, nil
}

func (c *Config) loadKeyPair() (tls.Certificate, error) {
	certPEM, err := os.ReadFile(c.Cert)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("read cert file: %w", err)
	}
	keyPEM, err := os.ReadFile(c.Key)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("read key file: %w", err)
	}

	block, _ := pem.Decode(keyPEM)
	if block == nil {
		return tls.Certificate{}, fmt.Errorf("key file %s: no PEM block found", c.Key)
	}
	if x509.IsEncryptedPEMBlock(block) {
		der, err := x509.DecryptPEMBlock(block, []byte(c.Passphrase))
		if err != nil {
			return tls.Certificate{}, fmt.Errorf("decrypt key: %w", err)
		}
		keyPEM = pem.EncodeToMemory(&pem.Block{Type: block.Type, Bytes: der})
	}

	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("load key pair: %w", err)
	}
	return cert, nil
}

// ReadPassphrase prompts on stderr and reads a passphrase from the
// terminal without echoing it. It runs once, before any dial activity.
func ReadPassphrase() (string, error) {
	fmt.Fprint(os.Stderr, "Passphrase: ")
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read passphrase: %w", err)
	}
	return string(secret), nil
}
