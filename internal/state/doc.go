// Package state holds the shared product collection snapshot consumed by
// the UI. The store is the only writer of the collection; views read
// snapshots and request mutations through explicit operations.
package state
