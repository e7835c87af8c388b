// Package history keeps a SQLite ledger of export runs.
//
// Every `orxport export` invocation appends one row, whether it completed,
// failed or was cancelled, and `orxport history` lists the most recent rows.
// The ledger is informational; exports never read it.
package history
