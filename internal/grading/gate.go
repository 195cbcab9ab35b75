package grading

import "github.com/Gunter-Q12/hyper-speed-grader/internal/model"

type GateKind int

const (
	// GateProceed means the submission has an ungraded, non-empty answer.
	GateProceed GateKind = iota
	// GateAlreadyGraded means a grade is already recorded; re-runs skip the
	// student so the batch stays idempotent.
	GateAlreadyGraded
	// GateEmpty means the submission is absent or has an empty body.
	GateEmpty
)

type GateDecision struct {
	Kind          GateKind
	AnswerText    string
	ExistingGrade string
}

// EvaluateSubmission decides whether a student's submission should be graded.
// It must run before any oracle call: skipping here is what makes re-running
// the batch over an already-graded roster free.
func EvaluateSubmission(sub *model.Submission) GateDecision {
	if grade, ok := sub.RecordedGrade(); ok {
		return GateDecision{Kind: GateAlreadyGraded, ExistingGrade: grade}
	}
	answer := sub.AnswerText()
	if answer == "" {
		return GateDecision{Kind: GateEmpty}
	}
	return GateDecision{Kind: GateProceed, AnswerText: answer}
}
