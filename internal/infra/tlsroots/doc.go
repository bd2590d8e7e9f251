// Package tlsroots loads TLS material for both binaries.
//
// notechain-cli builds a Pool from the system roots plus an optional CA
// file to reach a server with a private certificate. notechain-server
// serves through a Watcher, which reloads the key pair when either file
// changes so certificates can be rotated without a restart.
package tlsroots
