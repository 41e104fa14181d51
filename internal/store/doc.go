// Package store provides SQLite-backed durable storage for generator runs.
//
// A run log has three tables:
//   - runs: one header per generator invocation (mode, seed, config hash)
//   - attempts: every attempt of a run with its status and signature
//   - decisions: the recorded value/bound pairs of each attempt
//
// Writes are idempotent: re-writing a run or attempt with an existing key
// is silently ignored. Reads are ordered by seq so a run can be replayed
// and compared against a fresh generation.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Signature and sequence hashes are computed in internal/ir/hash.go.
package store
