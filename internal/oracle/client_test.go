package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Gunter-Q12/hyper-speed-grader/internal/config"
	"github.com/Gunter-Q12/hyper-speed-grader/internal/model"
	pkgerrors "github.com/Gunter-Q12/hyper-speed-grader/pkg/errors"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		Oracle: config.OracleConfig{
			BaseURL:     baseURL,
			APIKey:      "test-key",
			Model:       "test-model",
			MaxTokens:   8192,
			Temperature: 1.3,
			Timeout:     5 * time.Second,
		},
	}
}

func chatReply(content string) string {
	reply := map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"content": content}},
		},
		"usage": map[string]int{
			"prompt_tokens":     100,
			"completion_tokens": 20,
			"total_tokens":      120,
		},
	}
	data, _ := json.Marshal(reply)
	return string(data)
}

func TestGradeParsesVerdicts(t *testing.T) {
	testCases := []struct {
		name     string
		content  string
		expected model.GradingResult
	}{
		{
			"numeric grade with comment",
			`{"grade": 4.5, "comment": "unclear explanation"}`,
			model.GradingResult{Grade: 4.5, Comment: "unclear explanation"},
		},
		{
			"numeric-string grade",
			`{"grade": "3", "comment": "ok"}`,
			model.GradingResult{Grade: 3, Comment: "ok"},
		},
		{
			"missing comment defaults to empty",
			`{"grade": 5}`,
			model.GradingResult{Grade: 5, Comment: ""},
		},
		{
			"zero is a valid grade",
			`{"grade": 0, "comment": "wrong"}`,
			model.GradingResult{Grade: 0, Comment: "wrong"},
		},
	}

	for i, testCase := range testCases {
		content := testCase.content
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, chatReply(content))
		}))

		client := NewClient(testConfig(server.URL))
		actual, err := client.Grade(context.Background(), model.GradingRequest{
			SystemPrompt:  "grade it",
			TaskText:      "the task",
			StudentAnswer: "the answer",
		})
		server.Close()

		if err != nil {
			t.Errorf("Case %d (%s): failed to grade: '%v'.", i, testCase.name, err)
			continue
		}
		if actual != testCase.expected {
			t.Errorf("Case %d (%s): unexpected result. Expected: '%+v', actual: '%+v'.",
				i, testCase.name, testCase.expected, actual)
		}
	}
}

func TestGradeRejectsBadVerdicts(t *testing.T) {
	testCases := []struct {
		name        string
		content     string
		expectedErr error
	}{
		{"missing grade", `{"comment": "nice try"}`, pkgerrors.ErrMissingGrade},
		{"non-numeric grade", `{"grade": "excellent"}`, pkgerrors.ErrInvalidGrade},
		{"grade is an object", `{"grade": {"value": 4}}`, pkgerrors.ErrInvalidGrade},
		{"empty content", ``, pkgerrors.ErrEmptyResponse},
	}

	for i, testCase := range testCases {
		content := testCase.content
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, chatReply(content))
		}))

		client := NewClient(testConfig(server.URL))
		_, err := client.Grade(context.Background(), model.GradingRequest{
			SystemPrompt:  "grade it",
			TaskText:      "the task",
			StudentAnswer: "the answer",
		})
		server.Close()

		if !errors.Is(err, testCase.expectedErr) {
			t.Errorf("Case %d (%s): unexpected error. Expected: '%v', actual: '%v'.",
				i, testCase.name, testCase.expectedErr, err)
		}
	}
}

func TestGradeRequestShape(t *testing.T) {
	var captured struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
		ResponseFormat struct {
			Type string `json:"type"`
		} `json:"response_format"`
		MaxTokens   int     `json:"max_tokens"`
		Temperature float64 `json:"temperature"`
		Stream      bool    `json:"stream"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Unexpected path: %q.", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Unexpected auth header: %q.", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("Failed to decode request: '%v'.", err)
		}
		fmt.Fprint(w, chatReply(`{"grade": 1}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	_, err := client.Grade(context.Background(), model.GradingRequest{
		SystemPrompt:    "grade strictly",
		TaskText:        "explain recursion",
		ReferenceAnswer: "a function calling itself",
		StudentAnswer:   "it calls itself",
	})
	if err != nil {
		t.Fatalf("Failed to grade: '%v'.", err)
	}

	if captured.Model != "test-model" {
		t.Errorf("Unexpected model: %q.", captured.Model)
	}
	if captured.ResponseFormat.Type != "json_object" {
		t.Errorf("Unexpected response format: %q.", captured.ResponseFormat.Type)
	}
	if captured.MaxTokens != 8192 || captured.Temperature != 1.3 || captured.Stream {
		t.Errorf("Unexpected sampling params: %+v.", captured)
	}

	if len(captured.Messages) != 3 {
		t.Fatalf("Expected 3 messages, got %d.", len(captured.Messages))
	}
	if captured.Messages[0].Role != "system" || captured.Messages[0].Content != "grade strictly" {
		t.Errorf("Unexpected system message: %+v.", captured.Messages[0])
	}
	expectedTask := "Task: explain recursion\nReference answer: a function calling itself"
	if captured.Messages[1].Role != "system" || captured.Messages[1].Content != expectedTask {
		t.Errorf("Unexpected task message: %+v.", captured.Messages[1])
	}
	if captured.Messages[2].Role != "user" || captured.Messages[2].Content != "it calls itself" {
		t.Errorf("Unexpected user message: %+v.", captured.Messages[2])
	}
}

func TestGradeRejectsEmptyInputs(t *testing.T) {
	client := NewClient(testConfig("http://unused.test"))

	if _, err := client.Grade(context.Background(), model.GradingRequest{
		SystemPrompt: "p", TaskText: "", StudentAnswer: "a",
	}); err == nil {
		t.Errorf("Empty task text should be rejected.")
	}

	if _, err := client.Grade(context.Background(), model.GradingRequest{
		SystemPrompt: "p", TaskText: "t", StudentAnswer: "",
	}); err == nil {
		t.Errorf("Empty student answer should be rejected.")
	}
}

func TestGradeSurfacesHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	_, err := client.Grade(context.Background(), model.GradingRequest{
		SystemPrompt: "p", TaskText: "t", StudentAnswer: "a",
	})
	if err == nil {
		t.Fatalf("HTTP 429 should surface as an error.")
	}
}
