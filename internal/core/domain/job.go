package domain

import "time"

// OutcomeStatus is the per-account result of a ledger job.
type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeError   OutcomeStatus = "error"
)

// AccountOutcome records how one account fared in a job run.
type AccountOutcome struct {
	Account  AccountRef    `json:"account"`
	Status   OutcomeStatus `json:"status"`
	Error    string        `json:"error,omitempty"`
	Attempts int           `json:"attempts"`
}

// JobReport is the partial-success summary of a job run, keyed by account id.
type JobReport struct {
	Job        string                    `json:"job"`
	StartedAt  time.Time                 `json:"startedAt"`
	FinishedAt time.Time                 `json:"finishedAt"`
	Results    map[string]AccountOutcome `json:"results"`
}

// Failed returns the number of accounts that ended in error.
func (r *JobReport) Failed() int {
	n := 0
	for _, o := range r.Results {
		if o.Status == OutcomeError {
			n++
		}
	}
	return n
}
