package model

// GradingRequest is the input to the grading oracle. ReferenceAnswer is
// optional; an empty string means the task has no model answer.
type GradingRequest struct {
	SystemPrompt    string
	TaskText        string
	ReferenceAnswer string
	StudentAnswer   string
}

// GradingResult is the oracle's verdict for one submission. It is transient:
// consumed by the confirmation policy and discarded after the single write.
type GradingResult struct {
	Grade   float64 `json:"grade"`
	Comment string  `json:"comment"`
}

type DecisionAction string

const (
	ActionApply DecisionAction = "APPLY"
	ActionDefer DecisionAction = "DEFER"
	ActionSkip  DecisionAction = "SKIP"
)

// ConfirmationDecision is the terminal outcome of the policy evaluation for
// one student. ActionApply always carries a concrete grade.
type ConfirmationDecision struct {
	Action  DecisionAction
	Grade   float64
	Comment string
}
