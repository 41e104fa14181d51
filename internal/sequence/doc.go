// Package sequence records the decisions made during one generation attempt
// and reads recorded decisions back.
//
// Two recorders exist:
//   - Linear keeps values only and renders them as "v0_v1_v2". It is the
//     signature format used by the random and exhaustive providers and the
//     input format of the exhaustive provider's debug replay.
//   - Delta keeps (value, bound) pairs and renders them one pair per line as
//     "value,bound". It is both the input and the output of the replay
//     provider.
//
// Recorders are keyed by logical position, so a provider that rewinds its
// position counter overwrites entries rather than appending duplicates.
package sequence
