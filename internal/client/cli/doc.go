// Package cli provides the interactive Lingopal command-line client.
//
// It wires configuration, local storage, the credential store, and the
// backend API client, runs the boot sequence, and then drops into an
// interactive REPL. Actions produced while the REPL is not yet accepting
// input (the boot route, for one) are parked on a deferred queue and
// flushed once the prompt is up.
//
// Key features:
//   - Login / Logout against the backend REST API
//   - Session restore with silent token refresh on startup
//   - Background connectivity watcher
//   - Status and profile inspection
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
