package model

import "strconv"

// Submission is one student's answer to one assignment. Canvas reports a
// recorded grade in several fields depending on grading state; all of them
// are optional.
type Submission struct {
	UserID       int64    `json:"user_id"`
	Body         *string  `json:"body"`
	Score        *float64 `json:"score"`
	Grade        *string  `json:"grade"`
	PostedGrade  *string  `json:"posted_grade"`
	EnteredGrade *string  `json:"entered_grade"`
}

// RecordedGrade returns the first non-empty grade value, probing the fields
// in precedence order: score, grade, posted_grade, entered_grade.
func (s *Submission) RecordedGrade() (string, bool) {
	if s == nil {
		return "", false
	}
	if s.Score != nil {
		return strconv.FormatFloat(*s.Score, 'f', -1, 64), true
	}
	for _, field := range []*string{s.Grade, s.PostedGrade, s.EnteredGrade} {
		if field != nil && *field != "" {
			return *field, true
		}
	}
	return "", false
}

// AnswerText returns the submission body, or "" when the submission or its
// body is absent.
func (s *Submission) AnswerText() string {
	if s == nil || s.Body == nil {
		return ""
	}
	return *s.Body
}
