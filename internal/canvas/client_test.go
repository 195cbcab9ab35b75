package canvas

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strconv"
	"testing"
	"time"

	"github.com/Gunter-Q12/hyper-speed-grader/internal/config"
	"github.com/Gunter-Q12/hyper-speed-grader/internal/model"
)

func testConfig(baseURL string, pageSize int) *config.Config {
	return &config.Config{
		Canvas: config.CanvasConfig{
			BaseURL:  baseURL,
			Token:    "test-token",
			CourseID: 7,
			Timeout:  5 * time.Second,
			PageSize: pageSize,
		},
	}
}

func TestListStudentsPaginates(t *testing.T) {
	// 3 students with page size 2: two pages, the second one short.
	all := []model.Student{
		{ID: 1, Name: "Alice"},
		{ID: 2, Name: "Bob"},
		{ID: 3, Name: "Carol"},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/courses/7/users" {
			t.Errorf("Unexpected path: %q.", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-token" {
			t.Errorf("Unexpected auth header: %q.", auth)
		}
		if enrollment := r.URL.Query().Get("enrollment_type[]"); enrollment != "student" {
			t.Errorf("Unexpected enrollment filter: %q.", enrollment)
		}

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		start := (page - 1) * 2
		end := start + 2
		if start > len(all) {
			start = len(all)
		}
		if end > len(all) {
			end = len(all)
		}
		json.NewEncoder(w).Encode(all[start:end])
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL, 2))
	students, err := client.ListStudents(context.Background(), 7)
	if err != nil {
		t.Fatalf("Failed to list students: '%v'.", err)
	}

	if !reflect.DeepEqual(all, students) {
		t.Errorf("Unexpected students. Expected: '%+v', actual: '%+v'.", all, students)
	}
}

func TestGetSubmission(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/courses/7/assignments/100/submissions/1":
			fmt.Fprint(w, `{"user_id": 1, "body": "my answer", "score": 4.5, "grade": "4.5"}`)
		case "/api/v1/courses/7/assignments/100/submissions/2":
			http.NotFound(w, r)
		default:
			t.Errorf("Unexpected path: %q.", r.URL.Path)
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL, 50))

	submission, err := client.GetSubmission(context.Background(), 7, 100, 1)
	if err != nil {
		t.Fatalf("Failed to get submission: '%v'.", err)
	}
	if submission == nil || submission.AnswerText() != "my answer" {
		t.Errorf("Unexpected submission: %+v.", submission)
	}
	if grade, ok := submission.RecordedGrade(); !ok || grade != "4.5" {
		t.Errorf("Unexpected recorded grade: %q (%v).", grade, ok)
	}

	// Absent submission is (nil, nil), not an error.
	submission, err = client.GetSubmission(context.Background(), 7, 100, 2)
	if err != nil {
		t.Fatalf("404 should not be an error, got: '%v'.", err)
	}
	if submission != nil {
		t.Errorf("Expected nil submission for 404, got: %+v.", submission)
	}
}

func TestUpdateSubmissionGrade(t *testing.T) {
	testCases := []struct {
		name        string
		postedGrade string
		comment     string
		expected    string
	}{
		{
			"grade with comment",
			"4", "see the rubric",
			`{"submission":{"posted_grade":"4"},"comment":{"text_comment":"see the rubric"}}`,
		},
		{
			"comment omitted when empty",
			"5", "",
			`{"submission":{"posted_grade":"5"}}`,
		},
	}

	for i, testCase := range testCases {
		var body string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPut {
				t.Errorf("Case %d: unexpected method: %q.", i, r.Method)
			}
			data, _ := io.ReadAll(r.Body)
			body = string(data)
			fmt.Fprint(w, `{}`)
		}))

		client := NewClient(testConfig(server.URL, 50))
		err := client.UpdateSubmissionGrade(context.Background(), 7, 100, 1, testCase.postedGrade, testCase.comment)
		server.Close()

		if err != nil {
			t.Errorf("Case %d (%s): failed to update grade: '%v'.", i, testCase.name, err)
			continue
		}
		if body != testCase.expected {
			t.Errorf("Case %d (%s): unexpected payload. Expected: '%s', actual: '%s'.",
				i, testCase.name, testCase.expected, body)
		}
	}
}

func TestUpdateSubmissionGradeSurfacesErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL, 50))
	if err := client.UpdateSubmissionGrade(context.Background(), 7, 100, 1, "4", ""); err == nil {
		t.Fatalf("HTTP 401 should surface as an error.")
	}
}

func TestSpeedGraderURL(t *testing.T) {
	client := NewClient(testConfig("https://canvas.test", 50))
	expected := "https://canvas.test/courses/7/gradebook/speed_grader?assignment_id=100&student_id=1"
	if actual := client.SpeedGraderURL(7, 100, 1); actual != expected {
		t.Errorf("Unexpected URL. Expected: '%s', actual: '%s'.", expected, actual)
	}

	client = NewClient(testConfig("", 50))
	if actual := client.SpeedGraderURL(7, 100, 1); actual != "<submission link unavailable>" {
		t.Errorf("Unexpected placeholder: '%s'.", actual)
	}
}
