package config

import "time"

// Default configuration values.
const (
	DefaultHTTPAddr        = "127.0.0.1:5080"
	DefaultRateLimit       = 100
	DefaultShutdownTimeout = 15 * time.Second

	BackendFile   = "file"
	BackendBadger = "badger"

	// MaxSocketPathLength fits sun_path on every unix platform.
	MaxSocketPathLength = 104

	DefaultBackend          = BackendFile
	DefaultDataDir          = "/var/lib/notechain-server/data"
	DefaultBadgerGCInterval = 10 * time.Minute

	DefaultEncryptionAlgorithm = "auto"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr:            DefaultHTTPAddr,
				AllowAnonymous:  true,
				RateLimit:       DefaultRateLimit,
				MetricsEnabled:  true,
				ShutdownTimeout: DefaultShutdownTimeout,
			},
		},
		Storage: StorageSection{
			Backend: DefaultBackend,
			DataDir: DefaultDataDir,
			Badger: BadgerSection{
				GCInterval: DefaultBadgerGCInterval,
				SyncWrites: true,
			},
		},
		Security: SecuritySection{
			EncryptionAlgorithm: DefaultEncryptionAlgorithm,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// DefaultsMap returns Default as dotted koanf keys.
func DefaultsMap() map[string]any {
	d := Default()
	return map[string]any{
		"server.http.addr":                 d.Server.HTTP.Addr,
		"server.http.tls_cert_file":        d.Server.HTTP.TLSCertFile,
		"server.http.tls_key_file":         d.Server.HTTP.TLSKeyFile,
		"server.http.allow_anonymous":      d.Server.HTTP.AllowAnonymous,
		"server.http.rate_limit":           d.Server.HTTP.RateLimit,
		"server.http.cors_allowed_origins": append([]string{}, d.Server.HTTP.CORSAllowedOrigins...),
		"server.http.metrics_enabled":      d.Server.HTTP.MetricsEnabled,
		"server.http.shutdown_timeout":     d.Server.HTTP.ShutdownTimeout.String(),
		"server.local.socket_path":         d.Server.Local.SocketPath,
		"storage.backend":                  d.Storage.Backend,
		"storage.data_dir":                 d.Storage.DataDir,
		"storage.badger.gc_interval":       d.Storage.Badger.GCInterval.String(),
		"storage.badger.sync_writes":       d.Storage.Badger.SyncWrites,
		"security.encryption_key":          d.Security.EncryptionKey,
		"security.encryption_passphrase":   d.Security.EncryptionPassphrase,
		"security.encryption_algorithm":    d.Security.EncryptionAlgorithm,
		"log.level":                        d.Log.Level,
		"log.format":                       d.Log.Format,
	}
}
