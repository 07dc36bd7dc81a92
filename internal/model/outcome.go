package model

// Outcome is the verdict a result report assigns to one test.
type Outcome int

const (
	// OutcomePassed indicates the report marked the test as passing.
	OutcomePassed Outcome = iota
	// OutcomeFailed indicates the report marked the test as failing.
	OutcomeFailed
	// OutcomeSkipped covers every other verdict the report can state.
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomePassed:
		return "passed"
	case OutcomeFailed:
		return "failed"
	default:
		return "skipped"
	}
}

// OutcomeRecord is one per-test entry parsed from a result report. TestName is
// kept exactly as the report stated it; correlation decides what it refers to.
// Records live for a single run and are discarded once correlation completes.
type OutcomeRecord struct {
	TestName    string
	Outcome     Outcome
	DurationMS  int64
	ErrorDetail string
}
