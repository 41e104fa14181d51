package harness

import "github.com/roach88/choicegen/internal/engine"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every assertion holds.
	Pass bool `json:"pass"`

	// Signatures are the emitted signatures in emission order, as read back
	// from the run log.
	Signatures []string `json:"signatures"`

	// Stats are the driver's counters for the run.
	Stats engine.Stats `json:"stats"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:       true,
		Signatures: []string{},
		Errors:     []string{},
	}
}

// AddError adds an assertion error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
