// Package engine implements the decision core of the program generator.
//
// The generator above this package never draws random numbers itself. Every
// choice it makes (which statement to emit, which operator, how many
// arguments) is a bounded decision asked of the Facade, and the Facade
// routes it to one of three providers:
//
//   - DefaultProvider draws from a seeded pseudo-random source.
//   - DFSProvider enumerates every decision sequence depth-first, one
//     sequence per attempt, up to a depth limit.
//   - DeltaProvider replays a recorded value/bound sequence and hands the
//     attempt over to the random provider at a switch point.
//
// ATTEMPTS:
//
// An Attempt is one run of the generator from scratch. It owns the error
// slot: the first decision error is stored on it and turns every later
// decision into a no-op returning that error. The driver (Facade.Drive)
// begins attempts, reads their outcome and resets the providers between
// them. Exhaustive runs attempt until the tree is enumerated; random runs
// until enough programs were emitted; replay runs once.
//
// DETERMINISM:
//
// Each provider stamps decisions with a logical position (Cursor), never a
// wall-clock value. The same seed, depth limit and grammar always produce
// the same signatures in the same order, which VerifyReplay checks.
//
// DEPTH:
//
// The DepthGuard lets the grammar abandon a branch early when the exhaustive
// search does not have enough positions left to complete a production. The
// minimum depth of each production is supplied by the grammar.
package engine
