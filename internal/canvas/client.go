package canvas

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/Gunter-Q12/hyper-speed-grader/internal/config"
	"github.com/Gunter-Q12/hyper-speed-grader/internal/logger"
	"github.com/Gunter-Q12/hyper-speed-grader/internal/model"
)

// Client talks to the Canvas REST API. It performs no retries: transient
// failures surface to the batch driver, which isolates them per student.
type Client struct {
	cfg        *config.Config
	httpClient *http.Client
	log        zerolog.Logger
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Canvas.Timeout,
		},
		log: logger.Get(),
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u := c.cfg.Canvas.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.Canvas.Token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// ListAssignments returns every assignment of the course in API order. That
// order defines the 1-based task numbering used on the command line.
func (c *Client) ListAssignments(ctx context.Context, courseID int64) ([]model.Assignment, error) {
	path := fmt.Sprintf("/api/v1/courses/%d/assignments", courseID)

	var assignments []model.Assignment
	err := c.listPages(ctx, path, nil, func(data []byte) (int, error) {
		var page []model.Assignment
		if err := json.Unmarshal(data, &page); err != nil {
			return 0, err
		}
		assignments = append(assignments, page...)
		return len(page), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	c.log.Debug().Int("count", len(assignments)).Msg("Fetched course assignments")
	return assignments, nil
}

// ListStudents returns the student-role members of the course roster, in
// roster order.
func (c *Client) ListStudents(ctx context.Context, courseID int64) ([]model.Student, error) {
	path := fmt.Sprintf("/api/v1/courses/%d/users", courseID)
	query := url.Values{}
	query.Set("enrollment_type[]", "student")

	var students []model.Student
	err := c.listPages(ctx, path, query, func(data []byte) (int, error) {
		var page []model.Student
		if err := json.Unmarshal(data, &page); err != nil {
			return 0, err
		}
		students = append(students, page...)
		return len(page), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}

	c.log.Debug().Int("count", len(students)).Msg("Fetched course roster")
	return students, nil
}

// listPages walks Canvas page-numbered pagination until a short or empty page.
func (c *Client) listPages(ctx context.Context, path string, query url.Values, appendPage func([]byte) (int, error)) error {
	pageSize := c.cfg.Canvas.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	for page := 1; ; page++ {
		q := url.Values{}
		for k, vs := range query {
			q[k] = vs
		}
		q.Set("per_page", strconv.Itoa(pageSize))
		q.Set("page", strconv.Itoa(page))

		req, err := c.newRequest(ctx, http.MethodGet, path, q, nil)
		if err != nil {
			return err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("HTTP request failed: %w", err)
		}

		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("canvas returned status %d: %s", resp.StatusCode, string(data))
		}

		n, err := appendPage(data)
		if err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}

		if n < pageSize {
			return nil
		}
	}
}

// GetSubmission fetches the student's submission for the assignment. An
// absent submission (404) returns (nil, nil); the gate treats it like an
// empty body.
func (c *Client) GetSubmission(ctx context.Context, courseID, assignmentID, userID int64) (*model.Submission, error) {
	path := fmt.Sprintf("/api/v1/courses/%d/assignments/%d/submissions/%d", courseID, assignmentID, userID)

	req, err := c.newRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var submission model.Submission
		if err := json.NewDecoder(resp.Body).Decode(&submission); err != nil {
			return nil, fmt.Errorf("failed to decode submission: %w", err)
		}
		return &submission, nil
	case http.StatusNotFound:
		return nil, nil
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("canvas returned status %d: %s", resp.StatusCode, string(body))
	}
}

type gradeUpdate struct {
	Submission gradeUpdateSubmission `json:"submission"`
	Comment    *gradeUpdateComment   `json:"comment,omitempty"`
}

type gradeUpdateSubmission struct {
	PostedGrade string `json:"posted_grade"`
}

type gradeUpdateComment struct {
	TextComment string `json:"text_comment"`
}

// UpdateSubmissionGrade writes the grade and optional comment in a single
// call. The comment field is omitted entirely when empty.
func (c *Client) UpdateSubmissionGrade(ctx context.Context, courseID, assignmentID, userID int64, postedGrade, comment string) error {
	path := fmt.Sprintf("/api/v1/courses/%d/assignments/%d/submissions/%d", courseID, assignmentID, userID)

	update := gradeUpdate{
		Submission: gradeUpdateSubmission{PostedGrade: postedGrade},
	}
	if comment != "" {
		update.Comment = &gradeUpdateComment{TextComment: comment}
	}

	jsonData, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("failed to marshal grade update: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPut, path, nil, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}

	c.log.Debug().
		Int64("user_id", userID).
		Str("posted_grade", postedGrade).
		Msg("Writing grade to Canvas")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("canvas rejected credentials (status %d)", resp.StatusCode)
	default:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("canvas returned status %d: %s", resp.StatusCode, string(body))
	}
}

// SpeedGraderURL builds the deep link to the manual-review view for one
// submission. Falls back to a placeholder when the base URL is unset.
func (c *Client) SpeedGraderURL(courseID, assignmentID, userID int64) string {
	if c.cfg.Canvas.BaseURL == "" {
		return "<submission link unavailable>"
	}
	return fmt.Sprintf("%s/courses/%d/gradebook/speed_grader?assignment_id=%d&student_id=%d",
		c.cfg.Canvas.BaseURL, courseID, assignmentID, userID)
}
