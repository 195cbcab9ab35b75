package grading

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Gunter-Q12/hyper-speed-grader/internal/logger"
	"github.com/Gunter-Q12/hyper-speed-grader/internal/model"
)

// Mode controls how much human review gates each automatic grade.
type Mode string

const (
	// ModeFull reviews every result interactively.
	ModeFull Mode = "full"
	// ModeNone applies every result as returned.
	ModeNone Mode = "none"
	// ModeMistakes reviews only results that carry a comment; a clean result
	// (empty comment) is applied automatically.
	ModeMistakes Mode = "mistakes"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeFull, ModeNone, ModeMistakes:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown confirmation mode %q (want full, none or mistakes)", s)
	}
}

type OperatorAction int

const (
	OperatorAccept OperatorAction = iota
	OperatorEdit
	OperatorManual
)

// Operator is the synchronous port to the human reviewer. Implementations
// own their prompt loops: every method blocks until it has a usable answer
// and re-prompts on invalid input without side effects.
type Operator interface {
	// ChooseAction presents the pending grade and comment and returns the
	// reviewer's choice.
	ChooseAction(grade float64, comment string) (OperatorAction, error)
	// ReadGradeOverride returns the replacement grade; blank input keeps
	// current.
	ReadGradeOverride(current float64) (float64, error)
	// ReadCommentOverride returns the replacement comment; blank keeps
	// current, the clear token empties it.
	ReadCommentOverride(current string) (string, error)
	// ConfirmYesNo asks a yes/no question.
	ConfirmYesNo(prompt string) (bool, error)
}

// PolicyEngine turns a grading result into exactly one terminal decision per
// student: apply (with final grade and comment) or defer to manual grading.
type PolicyEngine struct {
	mode Mode
	op   Operator
	log  zerolog.Logger
}

func NewPolicyEngine(mode Mode, op Operator) *PolicyEngine {
	return &PolicyEngine{
		mode: mode,
		op:   op,
		log:  logger.Get(),
	}
}

// Decide evaluates the confirmation policy for one grading result. manualURL
// is the deep link shown when the reviewer defers to manual grading.
func (e *PolicyEngine) Decide(result model.GradingResult, manualURL string) (model.ConfirmationDecision, error) {
	if e.autoApply(result) {
		e.log.Debug().
			Str("mode", string(e.mode)).
			Float64("grade", result.Grade).
			Msg("Auto-applying grading result")
		return model.ConfirmationDecision{
			Action:  model.ActionApply,
			Grade:   result.Grade,
			Comment: result.Comment,
		}, nil
	}
	return e.interactive(result, manualURL)
}

func (e *PolicyEngine) autoApply(result model.GradingResult) bool {
	switch e.mode {
	case ModeNone:
		return true
	case ModeMistakes:
		return result.Comment == ""
	default:
		return false
	}
}

func (e *PolicyEngine) interactive(result model.GradingResult, manualURL string) (model.ConfirmationDecision, error) {
	grade := result.Grade
	comment := result.Comment

	for {
		action, err := e.op.ChooseAction(grade, comment)
		if err != nil {
			return model.ConfirmationDecision{}, fmt.Errorf("failed to read action: %w", err)
		}

		switch action {
		case OperatorAccept:
			return model.ConfirmationDecision{
				Action:  model.ActionApply,
				Grade:   grade,
				Comment: comment,
			}, nil

		case OperatorEdit:
			grade, err = e.op.ReadGradeOverride(grade)
			if err != nil {
				return model.ConfirmationDecision{}, fmt.Errorf("failed to read grade override: %w", err)
			}
			comment, err = e.op.ReadCommentOverride(comment)
			if err != nil {
				return model.ConfirmationDecision{}, fmt.Errorf("failed to read comment override: %w", err)
			}
			return model.ConfirmationDecision{
				Action:  model.ActionApply,
				Grade:   grade,
				Comment: comment,
			}, nil

		case OperatorManual:
			proceed, err := e.op.ConfirmYesNo(
				fmt.Sprintf("Grade manually at %s. Continue to the next student?", manualURL))
			if err != nil {
				return model.ConfirmationDecision{}, fmt.Errorf("failed to read confirmation: %w", err)
			}
			if proceed {
				return model.ConfirmationDecision{Action: model.ActionDefer}, nil
			}
			// Declined: back to the action menu.
		}
	}
}
