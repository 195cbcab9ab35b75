package model

type OutcomeStatus string

const (
	OutcomeApplied  OutcomeStatus = "APPLIED"
	OutcomeSkipped  OutcomeStatus = "SKIPPED"
	OutcomeDeferred OutcomeStatus = "DEFERRED"
	OutcomeFailed   OutcomeStatus = "FAILED"
)

// StudentOutcome records what happened to one student during a run.
type StudentOutcome struct {
	StudentID   int64
	StudentName string
	Status      OutcomeStatus
	Grade       *float64
	Comment     string
	Reason      string
}

// RunSummary aggregates the outcomes of one batch run.
type RunSummary struct {
	RunID    string
	Outcomes []StudentOutcome
	Applied  int
	Skipped  int
	Deferred int
	Failed   int
}

func (s *RunSummary) Add(outcome StudentOutcome) {
	s.Outcomes = append(s.Outcomes, outcome)
	switch outcome.Status {
	case OutcomeApplied:
		s.Applied++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeDeferred:
		s.Deferred++
	case OutcomeFailed:
		s.Failed++
	}
}
