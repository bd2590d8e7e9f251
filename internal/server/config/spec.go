package config

import "time"

// ServerConfig is the root configuration for notechain-server.
type ServerConfig struct {
	Server   ServerSection   `koanf:"server"`
	Storage  StorageSection  `koanf:"storage"`
	Security SecuritySection `koanf:"security"`
	Log      LogSection      `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	HTTP  HTTPConfig  `koanf:"http"`
	Local LocalConfig `koanf:"local"`
}

// LocalConfig configures the admin socket. An empty SocketPath disables it.
type LocalConfig struct {
	SocketPath string `koanf:"socket_path"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr        string `koanf:"addr"`
	TLSCertFile string `koanf:"tls_cert_file"`
	TLSKeyFile  string `koanf:"tls_key_file"`

	// AllowAnonymous maps requests without a caller id to the anonymous owner.
	AllowAnonymous bool `koanf:"allow_anonymous"`

	// RateLimit is requests per second per client address. 0 disables limiting.
	RateLimit int `koanf:"rate_limit"`

	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// MetricsEnabled serves /metrics.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// ShutdownTimeout bounds the graceful drain before the pre-restart hook runs.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// StorageSection configures the durable medium.
type StorageSection struct {
	// Backend is "file" or "badger".
	Backend string `koanf:"backend"`

	DataDir string `koanf:"data_dir"`

	Badger BadgerSection `koanf:"badger"`
}

// BadgerSection tunes the badger backend.
type BadgerSection struct {
	GCInterval time.Duration `koanf:"gc_interval"`
	SyncWrites bool          `koanf:"sync_writes"`
}

// SecuritySection configures at-rest encryption of the durable medium.
// Encryption is off when neither key nor passphrase is set.
type SecuritySection struct {
	// EncryptionKey is a hex-encoded master key.
	EncryptionKey string `koanf:"encryption_key"`

	// EncryptionPassphrase is stretched with Argon2id. Mutually exclusive
	// with EncryptionKey.
	EncryptionPassphrase string `koanf:"encryption_passphrase"`

	// EncryptionAlgorithm is "auto", "aes-gcm" or "chacha20-poly1305".
	EncryptionAlgorithm string `koanf:"encryption_algorithm"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
