package tlsroots

import (
	"crypto/tls"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewPool(t *testing.T) {
	if p := NewPool(); p == nil || p.certPool == nil {
		t.Fatal("NewPool returned an unusable pool")
	}
}

func TestAddCertPEM(t *testing.T) {
	first, _ := generateKeyPair(t, 1)
	second, _ := generateKeyPair(t, 2)
	_, keyOnly := generateKeyPair(t, 3)

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"single", first, nil},
		{"bundle", append(append([]byte{}, first...), second...), nil},
		{"key blocks skipped", append(append([]byte{}, keyOnly...), first...), nil},
		{"only a key", keyOnly, ErrNoCertsFound},
		{"not pem", []byte("hello"), ErrNoCertsFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewPool().AddCertPEM(tt.data)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("AddCertPEM() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAddCertPEM_InvalidCert(t *testing.T) {
	data := []byte("-----BEGIN CERTIFICATE-----\naW52YWxpZA==\n-----END CERTIFICATE-----\n")
	err := NewPool().AddCertPEM(data)
	if err == nil || errors.Is(err, ErrNoCertsFound) {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestAddCertFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ca.pem")
	certPEM, _ := generateKeyPair(t, 1)
	if err := os.WriteFile(path, certPEM, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := NewPool().AddCertFile(path); err != nil {
		t.Fatalf("AddCertFile() error = %v", err)
	}

	if err := NewPool().AddCertFile(filepath.Join(dir, "missing.pem")); err == nil {
		t.Error("expected error for missing file")
	}

	empty := filepath.Join(dir, "empty.pem")
	if err := os.WriteFile(empty, nil, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	err := NewPool().AddCertFile(empty)
	if !errors.Is(err, ErrNoCertsFound) || !strings.Contains(err.Error(), "empty.pem") {
		t.Errorf("expected ErrNoCertsFound naming the file, got %v", err)
	}
}

func TestTLSConfig(t *testing.T) {
	p := NewPool()
	cfg := p.TLSConfig()
	if cfg.RootCAs != p.certPool {
		t.Error("TLSConfig does not use the pool")
	}
	if cfg.MinVersion != tls.VersionTLS12 {
		t.Errorf("MinVersion = %x, want TLS 1.2", cfg.MinVersion)
	}
}

func TestClientConfig(t *testing.T) {
	if cfg, err := ClientConfig(""); err != nil || cfg.RootCAs == nil {
		t.Fatalf("ClientConfig(\"\") = %v, %v", cfg, err)
	}

	if _, err := ClientConfig(filepath.Join(t.TempDir(), "missing.pem")); err == nil {
		t.Error("expected error for missing CA file")
	}
}
