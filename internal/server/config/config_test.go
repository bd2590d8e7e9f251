package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/notechain-go/pkg/crypto/adaptive"
)

const testKeyHex = "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff"

// validConfig returns Default with the data dir moved under t.TempDir.
func validConfig(t *testing.T) *ServerConfig {
	t.Helper()
	cfg := Default()
	cfg.Storage.DataDir = t.TempDir()
	return cfg
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.HTTP.Addr != DefaultHTTPAddr {
		t.Errorf("HTTP.Addr = %q, want %q", cfg.Server.HTTP.Addr, DefaultHTTPAddr)
	}
	if !cfg.Server.HTTP.AllowAnonymous {
		t.Error("anonymous callers should be allowed by default")
	}
	if cfg.Server.HTTP.RateLimit != DefaultRateLimit {
		t.Errorf("RateLimit = %d, want %d", cfg.Server.HTTP.RateLimit, DefaultRateLimit)
	}
	if cfg.Server.Local.SocketPath != "" {
		t.Errorf("admin socket should be off by default, got %q", cfg.Server.Local.SocketPath)
	}
	if cfg.Storage.Backend != BackendFile {
		t.Errorf("Backend = %q, want %q", cfg.Storage.Backend, BackendFile)
	}
	if cfg.Storage.DataDir != DefaultDataDir {
		t.Errorf("DataDir = %q, want %q", cfg.Storage.DataDir, DefaultDataDir)
	}
	if cfg.Security.EncryptionKey != "" || cfg.Security.EncryptionPassphrase != "" {
		t.Error("encryption should be off by default")
	}
	if cfg.Log.Level != DefaultLogLevel {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, DefaultLogLevel)
	}
	if cfg.Log.Format != DefaultLogFormat {
		t.Errorf("Log.Format = %q, want %q", cfg.Log.Format, DefaultLogFormat)
	}
}

func TestDefaultsMap_MatchesDefault(t *testing.T) {
	m := DefaultsMap()
	d := Default()

	if m["server.http.addr"] != d.Server.HTTP.Addr {
		t.Errorf("server.http.addr = %v", m["server.http.addr"])
	}
	if m["storage.backend"] != d.Storage.Backend {
		t.Errorf("storage.backend = %v", m["storage.backend"])
	}
	if m["server.http.shutdown_timeout"] != d.Server.HTTP.ShutdownTimeout.String() {
		t.Errorf("server.http.shutdown_timeout = %v", m["server.http.shutdown_timeout"])
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "server.yaml")
	content := `
server:
  http:
    addr: "0.0.0.0:9090"
    allow_anonymous: false
storage:
  backend: badger
  data_dir: "` + filepath.Join(dir, "data") + `"
  badger:
    gc_interval: 5m
log:
  level: debug
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv("NOTECHAIN_SERVER_HTTP_RATE_LIMIT", "7")

	cfg, loader, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loader == nil {
		t.Fatal("Load returned nil loader")
	}

	if cfg.Server.HTTP.Addr != "0.0.0.0:9090" {
		t.Errorf("Addr = %q", cfg.Server.HTTP.Addr)
	}
	if cfg.Server.HTTP.AllowAnonymous {
		t.Error("allow_anonymous from file not applied")
	}
	if cfg.Server.HTTP.RateLimit != 7 {
		t.Errorf("RateLimit = %d, want 7 from env", cfg.Server.HTTP.RateLimit)
	}
	if cfg.Storage.Backend != BackendBadger {
		t.Errorf("Backend = %q", cfg.Storage.Backend)
	}
	if cfg.Storage.Badger.GCInterval != 5*time.Minute {
		t.Errorf("GCInterval = %v", cfg.Storage.Badger.GCInterval)
	}
	if !cfg.Storage.Badger.SyncWrites {
		t.Error("SyncWrites default lost")
	}
	if cfg.Server.HTTP.ShutdownTimeout != DefaultShutdownTimeout {
		t.Errorf("ShutdownTimeout = %v, want default", cfg.Server.HTTP.ShutdownTimeout)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
}

func TestLoad_Invalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "server.yaml")
	if err := os.WriteFile(configPath, []byte("storage:\n  backend: sqlite\n"), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv("NOTECHAIN_STORAGE_DATA_DIR", t.TempDir())

	if _, _, err := Load(configPath); err == nil || !strings.Contains(err.Error(), "storage.backend") {
		t.Errorf("expected storage.backend error, got %v", err)
	}
}

func TestSanitize(t *testing.T) {
	cfg := Default()
	cfg.Security.EncryptionKey = testKeyHex
	cfg.Server.HTTP.CORSAllowedOrigins = []string{"https://a.example"}

	sanitized := Sanitize(cfg)

	if cfg.Security.EncryptionKey != testKeyHex {
		t.Error("Original config should not be modified")
	}
	if sanitized.Security.EncryptionKey == cfg.Security.EncryptionKey {
		t.Error("Sanitized config should mask the encryption key")
	}
	if strings.Contains(sanitized.Security.EncryptionKey, "445566") {
		t.Errorf("masked key leaks its body: %s", sanitized.Security.EncryptionKey)
	}

	sanitized.Server.HTTP.CORSAllowedOrigins[0] = "changed"
	if cfg.Server.HTTP.CORSAllowedOrigins[0] != "https://a.example" {
		t.Error("Sanitize must not share slices with the original")
	}
}

func TestSanitize_Passphrase(t *testing.T) {
	cfg := Default()
	cfg.Security.EncryptionPassphrase = "correct horse battery staple"

	if got := Sanitize(cfg).Security.EncryptionPassphrase; got != "***" {
		t.Errorf("passphrase = %q, want fully masked", got)
	}
}

func TestSanitize_EmptyKey(t *testing.T) {
	cfg := Default()

	if got := Sanitize(cfg).Security.EncryptionKey; got != "" {
		t.Errorf("empty key should stay empty, got %q", got)
	}
}

func TestVerify_ValidConfig(t *testing.T) {
	if err := Verify(validConfig(t)); err != nil {
		t.Errorf("Verify failed: %v", err)
	}
}

func TestVerify_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ServerConfig)
		want   string
	}{
		{"empty addr", func(c *ServerConfig) { c.Server.HTTP.Addr = "" }, "server.http.addr"},
		{"addr without port", func(c *ServerConfig) { c.Server.HTTP.Addr = "localhost" }, "server.http.addr"},
		{"tls cert without key", func(c *ServerConfig) { c.Server.HTTP.TLSCertFile = "cert.pem" }, "set together"},
		{"negative rate limit", func(c *ServerConfig) { c.Server.HTTP.RateLimit = -1 }, "rate_limit"},
		{"zero shutdown timeout", func(c *ServerConfig) { c.Server.HTTP.ShutdownTimeout = 0 }, "shutdown_timeout"},
		{"long socket path", func(c *ServerConfig) {
			c.Server.Local.SocketPath = "/" + strings.Repeat("s", MaxSocketPathLength)
		}, "server.local.socket_path"},
		{"unknown backend", func(c *ServerConfig) { c.Storage.Backend = "sqlite" }, "storage.backend"},
		{"empty data dir", func(c *ServerConfig) { c.Storage.DataDir = "" }, "storage.data_dir"},
		{"bad key hex", func(c *ServerConfig) { c.Security.EncryptionKey = "zz" }, "encryption_key"},
		{"short key", func(c *ServerConfig) { c.Security.EncryptionKey = "0011" }, "encryption_key"},
		{"key and passphrase", func(c *ServerConfig) {
			c.Security.EncryptionKey = testKeyHex
			c.Security.EncryptionPassphrase = "long enough passphrase"
		}, "mutually exclusive"},
		{"weak passphrase", func(c *ServerConfig) { c.Security.EncryptionPassphrase = "short" }, "security"},
		{"unknown algorithm", func(c *ServerConfig) {
			c.Security.EncryptionKey = testKeyHex
			c.Security.EncryptionAlgorithm = "rot13"
		}, "encryption_algorithm"},
		{"unknown log level", func(c *ServerConfig) { c.Log.Level = "loud" }, "log.level"},
		{"unknown log format", func(c *ServerConfig) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)

			err := Verify(cfg)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestVerify_CreateDataDir(t *testing.T) {
	cfg := validConfig(t)
	newDir := filepath.Join(cfg.Storage.DataDir, "subdir", "data")
	cfg.Storage.DataDir = newDir

	if err := Verify(cfg); err != nil {
		t.Errorf("Verify failed: %v", err)
	}

	if _, err := os.Stat(newDir); os.IsNotExist(err) {
		t.Error("Data directory should have been created")
	}
}

func TestSecuritySection_SealConfig(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		s := SecuritySection{EncryptionAlgorithm: "auto"}
		_, enabled, err := s.SealConfig()
		if err != nil || enabled {
			t.Errorf("SealConfig() = enabled %v, err %v; want disabled", enabled, err)
		}
	})

	t.Run("raw key", func(t *testing.T) {
		s := SecuritySection{EncryptionKey: testKeyHex, EncryptionAlgorithm: "chacha20-poly1305"}
		cfg, enabled, err := s.SealConfig()
		if err != nil || !enabled {
			t.Fatalf("SealConfig() = enabled %v, err %v", enabled, err)
		}
		if len(cfg.Key) != 32 {
			t.Errorf("key length = %d, want 32", len(cfg.Key))
		}
		if cfg.Algorithm != adaptive.CipherChaCha20 {
			t.Errorf("Algorithm = %q", cfg.Algorithm)
		}
	})

	t.Run("passphrase", func(t *testing.T) {
		s := SecuritySection{EncryptionPassphrase: "long enough passphrase"}
		cfg, enabled, err := s.SealConfig()
		if err != nil || !enabled {
			t.Fatalf("SealConfig() = enabled %v, err %v", enabled, err)
		}
		if string(cfg.Passphrase) != "long enough passphrase" || cfg.Key != nil {
			t.Errorf("unexpected seal config %+v", cfg)
		}
		if cfg.Algorithm != "" {
			t.Errorf("empty algorithm should select by hardware, got %q", cfg.Algorithm)
		}
	})
}
