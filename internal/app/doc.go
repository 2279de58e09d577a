// Package app is the composition root for the vitrina application.
//
// Run wires configuration, the catalog HTTP client, the shared state store,
// the mutation coordinator and the TUI together, then blocks until the user
// quits or the context is cancelled.
//
// A background poller keeps the product collection fresh at a configurable
// cadence. Poll failures are logged and retried with exponential backoff;
// they never take the application down. Every load goes through the store's
// generation tokens so a slow, superseded response is discarded instead of
// overwriting newer data.
package app
