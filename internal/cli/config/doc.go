// Package config holds notechain-cli's per-user defaults.
//
// The file lives at ~/.notechain/cli.yaml:
//
//	server: http://notes.internal:5080
//	caller: alice
//	output: table
//
// Command-line flags and NOTECHAIN_* environment variables take
// precedence over the file.
package config
