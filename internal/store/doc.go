// Package store persists rigidification runs in SQLite.
//
// Responsibilities: schema migrations (embedded, applied with
// golang-migrate), run history (descriptor summary, rigid frames, index
// pairs), and a durable rigidify.Ledger so the exactly-once rule holds
// across process restarts.
package store
