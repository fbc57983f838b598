package frontier

import "fmt"

// Outcome is the result of processing one URL.
type Outcome int

// Page outcomes.
const (
	// OutcomeSkipped means the recipe was already ingested; nothing was written.
	OutcomeSkipped Outcome = iota
	OutcomeIngested
	OutcomeFetchFailed
	OutcomeParseFailed
	// OutcomeIncomplete means a store call failed and the page may be
	// partially written.
	OutcomeIncomplete
)

var outcomeNames = map[Outcome]string{
	OutcomeSkipped:     "skipped",
	OutcomeIngested:    "ingested",
	OutcomeFetchFailed: "fetch_failed",
	OutcomeParseFailed: "parse_failed",
	OutcomeIncomplete:  "incomplete",
}

// String implements fmt.Stringer.
func (o Outcome) String() string {
	if s, ok := outcomeNames[o]; ok {
		return s
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Summary counts outcomes over a run.
type Summary struct {
	Counts map[Outcome]int
	// Processed is the number of URLs attempted before the run ended.
	Processed int
	// Canceled reports whether the context ended the run early.
	Canceled bool
}

func (s *Summary) add(o Outcome) {
	if s.Counts == nil {
		s.Counts = make(map[Outcome]int)
	}
	s.Counts[o]++
	s.Processed++
}

// Count returns how many URLs ended with o.
func (s Summary) Count(o Outcome) int {
	return s.Counts[o]
}

// Failed returns the number of URLs that did not end skipped or ingested.
func (s Summary) Failed() int {
	return s.Processed - s.Count(OutcomeSkipped) - s.Count(OutcomeIngested)
}
