// Package ir provides the canonical record types shared by the choice engine,
// the store and the CLI.
//
// This package contains type definitions and content-addressing helpers only.
// All other internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - NO float types anywhere; decision values and bounds are plain ints
//   - All JSON tags use snake_case
//   - Ordering is by logical position or attempt seq, never wall-clock time
package ir
