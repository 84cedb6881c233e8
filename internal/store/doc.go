// Package store keeps a SQLite-backed history of analysis runs.
//
// Each run row carries the expression fingerprint, the request parameters,
// the expression tree and the full result as JSON. Rows are append-only and
// listed newest first by seq.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - user_version tracks applied migrations
//
// Run IDs are UUIDv7 by default, so they sort by creation time.
package store
