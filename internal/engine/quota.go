package engine

import (
	"errors"
	"fmt"
)

// DefaultMaxAttempts bounds the attempts of one run when no quota is given.
const DefaultMaxAttempts = 1_000_000

// AttemptQuota counts the attempts of a run and enforces a maximum.
//
// Exhaustive enumeration terminates on its own once the tree is done, but
// a grammar that rarely completes under the depth limit can spend a very
// large number of discarded attempts getting there. The quota turns that
// into an error instead of an apparent hang.
type AttemptQuota struct {
	max     int
	current int
}

// NewAttemptQuota creates a quota allowing max attempts.
func NewAttemptQuota(max int) *AttemptQuota {
	return &AttemptQuota{max: max}
}

// Check counts one attempt and returns AttemptsExceededError once the count
// passes the limit.
func (q *AttemptQuota) Check(runID string) error {
	q.current++
	if q.current > q.max {
		return &AttemptsExceededError{
			RunID:    runID,
			Attempts: q.current,
			Limit:    q.max,
		}
	}
	return nil
}

// Current returns the number of attempts counted so far.
func (q *AttemptQuota) Current() int {
	return q.current
}

// Max returns the attempt limit.
func (q *AttemptQuota) Max() int {
	return q.max
}

// AttemptsExceededError is returned when a run exceeds its attempt quota.
type AttemptsExceededError struct {
	RunID    string
	Attempts int
	Limit    int
}

// Error implements the error interface.
func (e *AttemptsExceededError) Error() string {
	return fmt.Sprintf("run %s exceeded attempt quota: %d attempts > %d limit",
		e.RunID, e.Attempts, e.Limit)
}

// IsAttemptsExceededError returns true if err is an AttemptsExceededError.
// Uses errors.As to handle wrapped errors.
func IsAttemptsExceededError(err error) bool {
	var ae *AttemptsExceededError
	return errors.As(err, &ae)
}
