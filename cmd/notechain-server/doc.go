// Command notechain-server serves the note store over HTTP.
//
// At startup it restores the note table from the configured stable medium
// and only then reports ready. On SIGINT or SIGTERM it stops the HTTP
// listener, writes a fresh snapshot and closes the medium.
//
// Usage:
//
//	notechain-server -config /etc/notechain/server.yaml
package main
