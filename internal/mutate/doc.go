// Package mutate coordinates product mutations against the remote API:
// per-entity save/upload/delete status, stale-response rejection and error
// surfacing. Results reach the collection store only after the server
// confirms them.
package mutate
