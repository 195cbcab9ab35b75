package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Gunter-Q12/hyper-speed-grader/pkg/errors"
)

type Config struct {
	App     AppConfig     `yaml:"app"`
	Canvas  CanvasConfig  `yaml:"canvas"`
	Oracle  OracleConfig  `yaml:"oracle"`
	Grading GradingConfig `yaml:"grading"`
	Logging LoggingConfig `yaml:"logging"`
}

type AppConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type CanvasConfig struct {
	BaseURL  string        `yaml:"base_url"`
	Token    string        `yaml:"token"`
	CourseID int64         `yaml:"course_id"`
	Timeout  time.Duration `yaml:"timeout"`
	PageSize int           `yaml:"page_size"`
}

type OracleConfig struct {
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

type GradingConfig struct {
	ConfirmMode string `yaml:"confirm_mode"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func defaults() *Config {
	return &Config{
		App: AppConfig{
			Name:    "hyper-speed-grader",
			Version: "dev",
		},
		Canvas: CanvasConfig{
			BaseURL:  "https://canvas.instructure.com",
			Timeout:  60 * time.Second,
			PageSize: 50,
		},
		Oracle: OracleConfig{
			BaseURL:     "https://api.openai.com/v1",
			Model:       "gpt-4o",
			MaxTokens:   8192,
			Temperature: 1.3,
			Timeout:     120 * time.Second,
		},
		Grading: GradingConfig{
			ConfirmMode: "full",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads the optional YAML config file and applies environment overrides
// on top of it. path wins over CONFIG_PATH; an absent file is not an error
// since the tool can run entirely from environment variables.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "config.yaml"
	}

	config := defaults()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}

	// Request paths are absolute, so a trailing slash on a base URL would
	// produce double slashes in every call.
	config.Canvas.BaseURL = strings.TrimRight(config.Canvas.BaseURL, "/")
	config.Oracle.BaseURL = strings.TrimRight(config.Oracle.BaseURL, "/")

	return config, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("CANVAS_API_URL"); v != "" {
		c.Canvas.BaseURL = v
	}
	if v := os.Getenv("CANVAS_API_KEY"); v != "" {
		c.Canvas.Token = v
	}
	if v := os.Getenv("CANVAS_COURSE_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid CANVAS_COURSE_ID %q: %w", v, err)
		}
		c.Canvas.CourseID = id
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		c.Oracle.BaseURL = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.Oracle.APIKey = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		c.Oracle.Model = v
	}
	return nil
}

// Validate checks the fields that must be present before any student is
// touched. Called once at startup.
func (c *Config) Validate() error {
	if c.Canvas.Token == "" {
		return fmt.Errorf("%w: set CANVAS_API_KEY or canvas.token", errors.ErrMissingCredentials)
	}
	if c.Oracle.APIKey == "" {
		return fmt.Errorf("%w: set OPENAI_API_KEY or oracle.api_key", errors.ErrMissingCredentials)
	}
	if c.Canvas.CourseID == 0 {
		return errors.ValidationError{
			Field:   "canvas.course_id",
			Value:   c.Canvas.CourseID,
			Message: "course id is required",
		}
	}
	switch c.Grading.ConfirmMode {
	case "full", "none", "mistakes":
	default:
		return errors.ValidationError{
			Field:   "grading.confirm_mode",
			Value:   c.Grading.ConfirmMode,
			Message: "must be full, none or mistakes",
		}
	}
	return nil
}
