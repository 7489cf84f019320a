// Package cli provides the interactive gophchat terminal client.
//
// It wires configuration, the local database, the REST client, the session
// manager and the chat components behind a small REPL. Typical flow: restore
// the previous session (or log in), list conversations, open one, stage
// files, type a draft and send.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// With -demo the client runs against a built-in backend and demo
// conversations instead of the server.
package cli
