// Package httpserver provides the HTTP server for NoteChain.
//
// This package implements the external API using stdlib net/http:
//
//   - Note endpoints: /v1/notes, /v1/notes/{id}
//   - Health endpoints: /health, /ready, /metrics
//
// Every note request passes RequestID, Recover, Audit, CORS (when
// origins are configured), Caller and RateLimit in that order. Caller
// identity comes from the X-Caller-ID header; rate limits are per peer
// address. RequestID stores a request-scoped logger that the rest of the
// chain reaches through logger.L.
package httpserver
