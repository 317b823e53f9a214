// Package database provides SQLite-based storage of analysis runs.
//
// The HistoryDB stores:
//   - One row per completed run with its counters and the full result as JSON
//   - The document outcomes of each run, keyed by content fingerprint
//   - The most negative words of each run for quick listing
//
// SQLite is used through modernc.org/sqlite, a CGO-free driver, so the
// history is a single file under the XDG data directory.
package database
