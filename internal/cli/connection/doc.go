// Package connection talks to a notechain-server over HTTP.
//
// HTTPClient sends the caller identity in X-Caller-ID and unwraps the
// server's JSON envelope. Failed requests surface as *APIError carrying
// the server's NC-* error code.
package connection
