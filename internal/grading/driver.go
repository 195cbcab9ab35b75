package grading

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Gunter-Q12/hyper-speed-grader/internal/logger"
	"github.com/Gunter-Q12/hyper-speed-grader/internal/model"
	"github.com/Gunter-Q12/hyper-speed-grader/pkg/errors"
)

// LMS is the slice of the learning-management platform the driver consumes.
// canvas.Client satisfies it.
type LMS interface {
	ListAssignments(ctx context.Context, courseID int64) ([]model.Assignment, error)
	ListStudents(ctx context.Context, courseID int64) ([]model.Student, error)
	GetSubmission(ctx context.Context, courseID, assignmentID, userID int64) (*model.Submission, error)
	UpdateSubmissionGrade(ctx context.Context, courseID, assignmentID, userID int64, postedGrade, comment string) error
	SpeedGraderURL(courseID, assignmentID, userID int64) string
}

// Oracle is the grading oracle port. oracle.Client satisfies it.
type Oracle interface {
	Grade(ctx context.Context, req model.GradingRequest) (model.GradingResult, error)
}

type RunOptions struct {
	CourseID        int64
	TaskNum         int
	SystemPrompt    string
	TaskText        string
	ReferenceAnswer string
	// StudentNames restricts the batch to the named students; empty means
	// every enrolled student.
	StudentNames []string
	// DryRun replaces the persist step with a log line reporting the
	// intended write.
	DryRun bool
}

// Driver sequences the whole pipeline: roster x assignment x gate x oracle x
// confirmation policy. Students are processed strictly one at a time; the
// interactive prompts suspend the run, and the oracle and LMS are
// rate-sensitive at roster scale.
type Driver struct {
	lms    LMS
	oracle Oracle
	engine *PolicyEngine
	log    zerolog.Logger
}

func NewDriver(lms LMS, oracle Oracle, engine *PolicyEngine) *Driver {
	return &Driver{
		lms:    lms,
		oracle: oracle,
		engine: engine,
		log:    logger.Get(),
	}
}

// Run grades the selected assignment for every resolved student. Fatal errors
// (bad task index, roster fetch failure) abort before any student is touched;
// once iteration starts, per-student failures are recorded in the summary and
// never stop the batch.
func (d *Driver) Run(ctx context.Context, opts RunOptions) (*model.RunSummary, error) {
	startTime := time.Now()

	assignments, err := d.lms.ListAssignments(ctx, opts.CourseID)
	if err != nil {
		return nil, err
	}

	assignment, err := SelectAssignment(assignments, opts.TaskNum)
	if err != nil {
		return nil, err
	}

	roster, err := d.lms.ListStudents(ctx, opts.CourseID)
	if err != nil {
		return nil, err
	}

	students := ResolveRoster(d.log, roster, opts.StudentNames)

	summary := &model.RunSummary{RunID: uuid.NewString()}

	d.log.Info().
		Str("run_id", summary.RunID).
		Str("assignment", assignment.Name).
		Int("task_num", opts.TaskNum).
		Int("students", len(students)).
		Bool("dry_run", opts.DryRun).
		Msg("Starting grading run")

	for _, student := range students {
		// Cancellation aborts the whole run; it must not masquerade as
		// per-student failures.
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("grading run canceled: %w", err)
		}

		outcome := d.gradeStudent(ctx, opts, assignment, student)
		if outcome.Status == model.OutcomeFailed {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("grading run canceled: %w", err)
			}
			d.log.Error().
				Str("student", student.Name).
				Str("reason", outcome.Reason).
				Msg("Student failed, continuing with the rest of the batch")
		}
		summary.Add(outcome)
	}

	d.log.Info().
		Str("run_id", summary.RunID).
		Dur("duration", time.Since(startTime)).
		Int("applied", summary.Applied).
		Int("skipped", summary.Skipped).
		Int("deferred", summary.Deferred).
		Int("failed", summary.Failed).
		Msg("Grading run completed")

	return summary, nil
}

func (d *Driver) gradeStudent(ctx context.Context, opts RunOptions, assignment model.Assignment, student model.Student) model.StudentOutcome {
	log := d.log.With().Str("student", student.Name).Int64("student_id", student.ID).Logger()

	outcome := model.StudentOutcome{
		StudentID:   student.ID,
		StudentName: student.Name,
	}

	fail := func(err error) model.StudentOutcome {
		outcome.Status = model.OutcomeFailed
		outcome.Reason = errors.NewStudentError(student.Name, err).Error()
		return outcome
	}

	submission, err := d.lms.GetSubmission(ctx, opts.CourseID, assignment.ID, student.ID)
	if err != nil {
		return fail(err)
	}

	// The gate runs before any oracle call so re-runs over an already-graded
	// roster cost nothing.
	gate := EvaluateSubmission(submission)
	switch gate.Kind {
	case GateAlreadyGraded:
		log.Info().Str("existing_grade", gate.ExistingGrade).Msg("Already graded, skipping")
		outcome.Status = model.OutcomeSkipped
		outcome.Reason = "already graded: " + gate.ExistingGrade
		return outcome
	case GateEmpty:
		log.Info().Msg("No submission text, skipping")
		outcome.Status = model.OutcomeSkipped
		outcome.Reason = "empty submission"
		return outcome
	}

	result, err := d.oracle.Grade(ctx, model.GradingRequest{
		SystemPrompt:    opts.SystemPrompt,
		TaskText:        opts.TaskText,
		ReferenceAnswer: opts.ReferenceAnswer,
		StudentAnswer:   gate.AnswerText,
	})
	if err != nil {
		return fail(err)
	}

	log.Debug().Float64("grade", result.Grade).Str("comment", result.Comment).Msg("Oracle verdict")

	manualURL := d.lms.SpeedGraderURL(opts.CourseID, assignment.ID, student.ID)
	decision, err := d.engine.Decide(result, manualURL)
	if err != nil {
		return fail(err)
	}

	if decision.Action == model.ActionDefer {
		log.Info().Msg("Deferred to manual grading, no write")
		outcome.Status = model.OutcomeDeferred
		outcome.Reason = "deferred to manual grading"
		return outcome
	}

	postedGrade := strconv.FormatFloat(decision.Grade, 'f', -1, 64)

	if opts.DryRun {
		log.Info().
			Str("posted_grade", postedGrade).
			Str("comment", decision.Comment).
			Msg("Dry run, would write grade")
	} else {
		if err := d.lms.UpdateSubmissionGrade(ctx, opts.CourseID, assignment.ID, student.ID, postedGrade, decision.Comment); err != nil {
			// No grade was recorded, so the next run retries this student.
			return fail(err)
		}
		log.Info().Str("posted_grade", postedGrade).Msg("Grade written")
	}

	grade := decision.Grade
	outcome.Status = model.OutcomeApplied
	outcome.Grade = &grade
	outcome.Comment = decision.Comment
	return outcome
}
