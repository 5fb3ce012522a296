// Package cli provides the interactive jobmarket command-line client.
//
// It wires configuration, the local SQLite database, the API client and an
// interactive REPL. Typical flow: log in, search postings, open one with
// "view" (which adds it to the recently viewed list), and revisit the list
// with "recent". Employers can also post, edit and delete their postings.
//
// A background watcher pings the server and flips the prompt between online
// and offline. The REPL is started via App.Run(ctx), which blocks until the
// user exits.
package cli
