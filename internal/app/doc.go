// Package app contains the core application logic. It defines the App
// struct, its configuration, and the run modes (single file, batch, remote,
// REPL and server), decoupled from the command-line entrypoint.
package app
