// Package localserver serves the notechain-server admin socket.
//
// The socket is a unix domain socket created with mode 0600, so file
// permissions are the only access control. Each request is one line
// holding a command name. Each reply is one JSON object on its own line:
//
//	{"ok":true,"data":{...}}
//	{"ok":false,"error":"unknown command: drain"}
//
// Commands are status, reload, snapshot and shutdown. Call is the
// matching client used by notechain-cli.
package localserver
