package config

import "github.com/yndnr/notechain-go/internal/telemetry/logger"

// Sanitize returns a copy of the config with sensitive fields masked.
//
// This is used for logging configuration without exposing secrets.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	sanitized := *cfg
	sanitized.Server.HTTP.CORSAllowedOrigins = append([]string(nil), cfg.Server.HTTP.CORSAllowedOrigins...)

	if sanitized.Security.EncryptionKey != "" {
		sanitized.Security.EncryptionKey = logger.RedactString(sanitized.Security.EncryptionKey)
	}
	if sanitized.Security.EncryptionPassphrase != "" {
		sanitized.Security.EncryptionPassphrase = "***"
	}

	return &sanitized
}
