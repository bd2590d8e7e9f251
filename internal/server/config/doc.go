// Package config provides server configuration for NoteChain.
//
// This package defines the server configuration structure and validation:
//
//   - spec.go: ServerConfig struct definition
//   - default.go: default values and the koanf defaults map
//   - load.go: loading through internal/infra/confloader
//   - verify.go: validation (addresses, backend, keys, paths)
//   - sanitize.go: log sanitization (hide sensitive values)
package config
