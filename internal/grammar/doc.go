// Package grammar is the reference program grammar driven by the decision
// engine.
//
// It emits a single C function built from variable declarations, assignments,
// if/else, bounded for loops and return statements. Every choice is a
// decision on the attempt, weighted through a prob.Table, so the same
// grammar can be sampled randomly, enumerated exhaustively or replayed from
// a recorded sequence.
//
// The grammar is deliberately small. It exists to exercise the engine end to
// end and to give the command line tools something real to generate.
package grammar
