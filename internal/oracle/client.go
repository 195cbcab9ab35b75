package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/Gunter-Q12/hyper-speed-grader/internal/config"
	"github.com/Gunter-Q12/hyper-speed-grader/internal/logger"
	"github.com/Gunter-Q12/hyper-speed-grader/internal/model"
	"github.com/Gunter-Q12/hyper-speed-grader/pkg/errors"
)

// Client calls the grading oracle over an OpenAI-compatible chat-completions
// endpoint. The oracle must answer with a JSON object carrying a "grade"
// field and an optional "comment". No retries happen here; the caller owns
// retry/skip policy.
type Client struct {
	cfg        *config.Config
	httpClient *http.Client
	log        zerolog.Logger
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Oracle.Timeout,
		},
		log: logger.Get(),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	ResponseFormat responseFormat `json:"response_format"`
	MaxTokens      int            `json:"max_tokens"`
	Temperature    float64        `json:"temperature"`
	Stream         bool           `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *tokenUsage `json:"usage"`
}

type tokenUsage struct {
	PromptTokens        int `json:"prompt_tokens"`
	CompletionTokens    int `json:"completion_tokens"`
	TotalTokens         int `json:"total_tokens"`
	PromptTokensDetails *struct {
		CachedTokens int `json:"cached_tokens"`
	} `json:"prompt_tokens_details"`
}

// Grade asks the oracle to grade one student answer.
func (c *Client) Grade(ctx context.Context, req model.GradingRequest) (model.GradingResult, error) {
	if req.TaskText == "" {
		return model.GradingResult{}, errors.ValidationError{
			Field: "task_text", Value: req.TaskText, Message: "task text is required",
		}
	}
	if req.StudentAnswer == "" {
		return model.GradingResult{}, errors.ValidationError{
			Field: "student_answer", Value: req.StudentAnswer, Message: "student answer is required",
		}
	}

	taskMessage := "Task: " + req.TaskText
	if req.ReferenceAnswer != "" {
		taskMessage += "\nReference answer: " + req.ReferenceAnswer
	}

	chatReq := chatRequest{
		Model: c.cfg.Oracle.Model,
		Messages: []chatMessage{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "system", Content: taskMessage},
			{Role: "user", Content: req.StudentAnswer},
		},
		ResponseFormat: responseFormat{Type: "json_object"},
		MaxTokens:      c.cfg.Oracle.MaxTokens,
		Temperature:    c.cfg.Oracle.Temperature,
		Stream:         false,
	}

	jsonData, err := json.Marshal(chatReq)
	if err != nil {
		return model.GradingResult{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.cfg.Oracle.BaseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return model.GradingResult{}, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.Oracle.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return model.GradingResult{}, fmt.Errorf("oracle request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return model.GradingResult{}, fmt.Errorf("oracle returned status %d: %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return model.GradingResult{}, fmt.Errorf("failed to decode oracle response: %w", err)
	}

	c.logUsage(chatResp.Usage)

	if len(chatResp.Choices) == 0 || chatResp.Choices[0].Message.Content == "" {
		return model.GradingResult{}, errors.ErrEmptyResponse
	}

	return parseVerdict(chatResp.Choices[0].Message.Content)
}

// parseVerdict extracts {grade, comment} from the oracle's JSON content. The
// grade may arrive as a JSON number or a numeric string; anything else, or a
// missing/non-finite grade, is a hard failure for this student.
func parseVerdict(content string) (model.GradingResult, error) {
	var verdict struct {
		Grade   json.RawMessage `json:"grade"`
		Comment string          `json:"comment"`
	}
	if err := json.Unmarshal([]byte(content), &verdict); err != nil {
		return model.GradingResult{}, fmt.Errorf("oracle content is not valid JSON: %w", err)
	}

	if len(verdict.Grade) == 0 {
		return model.GradingResult{}, errors.ErrMissingGrade
	}

	grade, err := coerceGrade(verdict.Grade)
	if err != nil {
		return model.GradingResult{}, err
	}

	return model.GradingResult{
		Grade:   grade,
		Comment: verdict.Comment,
	}, nil
}

func coerceGrade(raw json.RawMessage) (float64, error) {
	var number float64
	if err := json.Unmarshal(raw, &number); err != nil {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, fmt.Errorf("%w: %s", errors.ErrInvalidGrade, string(raw))
		}
		parsed, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", errors.ErrInvalidGrade, text)
		}
		number = parsed
	}

	if math.IsNaN(number) || math.IsInf(number, 0) {
		return 0, fmt.Errorf("%w: grade is not finite", errors.ErrInvalidGrade)
	}
	return number, nil
}

// logUsage emits token accounting. Observational only: it never affects
// control flow.
func (c *Client) logUsage(usage *tokenUsage) {
	if usage == nil {
		return
	}

	c.log.Info().
		Int("prompt_tokens", usage.PromptTokens).
		Int("completion_tokens", usage.CompletionTokens).
		Int("total_tokens", usage.TotalTokens).
		Msg("Oracle API usage")

	if usage.PromptTokensDetails != nil && usage.PromptTokensDetails.CachedTokens > 0 && usage.PromptTokens > 0 {
		ratio := float64(usage.PromptTokensDetails.CachedTokens) * 100 / float64(usage.PromptTokens)
		c.log.Debug().
			Float64("cache_ratio_pct", ratio).
			Msg("Prompt cache hit")
	}
}
