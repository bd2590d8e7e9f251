// Package command defines the notechain-cli commands on urfave/cli/v2.
//
// note talks to a running server over HTTP, admin talks to it over its
// local admin socket, stable reads a server's data directory offline and
// version prints build information.
package command
