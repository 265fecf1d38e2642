// Package state persists build bookkeeping in a single SQLite database:
// the remote image cache index, page fingerprints from the previous build,
// and a short history of build outcomes.
package state
