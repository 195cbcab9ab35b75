package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/Gunter-Q12/hyper-speed-grader/internal/canvas"
	"github.com/Gunter-Q12/hyper-speed-grader/internal/config"
	"github.com/Gunter-Q12/hyper-speed-grader/internal/grading"
	"github.com/Gunter-Q12/hyper-speed-grader/internal/logger"
	"github.com/Gunter-Q12/hyper-speed-grader/internal/oracle"
	"github.com/Gunter-Q12/hyper-speed-grader/internal/report"
)

var args struct {
	Prompt       string `help:"File with the grader system prompt."`
	Task         string `help:"File with the task description text."`
	TaskNum      int    `help:"1-based index of the assignment to grade."`
	Reference    string `help:"Optional file with a model answer."`
	Students     string `help:"Optional file with newline-separated student names; default is the whole roster."`
	Confirm      string `help:"Confirmation mode: full, none or mistakes. Defaults to grading.confirm_mode from the config."`
	DryRun       bool   `help:"Report intended writes without persisting anything."`
	Report       string `help:"Write an .xlsx run report to this path."`
	Config       string `help:"Config file path (default config.yaml or $CONFIG_PATH)."`
	ListStudents bool   `help:"Print the enrolled student names and exit."`
}

func main() {
	// .env is optional; real environments set the variables directly.
	_ = godotenv.Load()

	kong.Parse(&args,
		kong.Name("grader"),
		kong.Description("Grade Canvas text submissions with an LLM, with interactive confirmation."),
	)

	cfg, err := config.Load(args.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.Get()

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	// No signal trapping: cancellation is via process termination, and a
	// re-run relies on the already-graded skip rule instead of resuming.
	ctx := context.Background()

	lms := canvas.NewClient(cfg)

	if args.ListStudents {
		students, err := lms.ListStudents(ctx, cfg.Canvas.CourseID)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to list students")
		}
		fmt.Printf("Enrolled students in course %d:\n", cfg.Canvas.CourseID)
		for _, student := range students {
			fmt.Println(student.Name)
		}
		return
	}

	if args.Prompt == "" || args.Task == "" {
		log.Fatal().Msg("--prompt and --task are required")
	}
	if args.TaskNum < 1 {
		log.Fatal().Int("task_num", args.TaskNum).Msg("--task-num must be a positive 1-based index")
	}

	systemPrompt, err := readTextFile(args.Prompt)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read prompt file")
	}
	taskText, err := readTextFile(args.Task)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read task file")
	}

	var referenceAnswer string
	if args.Reference != "" {
		referenceAnswer, err = readTextFile(args.Reference)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to read reference answer file")
		}
	}

	var studentNames []string
	if args.Students != "" {
		studentNames, err = readNameList(args.Students)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to read student list file")
		}
	}

	confirm := args.Confirm
	if confirm == "" {
		confirm = cfg.Grading.ConfirmMode
	}
	mode, err := grading.ParseMode(confirm)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid confirmation mode")
	}

	operator := grading.NewTerminalOperator(os.Stdin, os.Stdout)
	engine := grading.NewPolicyEngine(mode, operator)
	driver := grading.NewDriver(lms, oracle.NewClient(cfg), engine)

	summary, err := driver.Run(ctx, grading.RunOptions{
		CourseID:        cfg.Canvas.CourseID,
		TaskNum:         args.TaskNum,
		SystemPrompt:    systemPrompt,
		TaskText:        taskText,
		ReferenceAnswer: referenceAnswer,
		StudentNames:    studentNames,
		DryRun:          args.DryRun,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Grading run aborted")
	}

	fmt.Printf("\nDone: %d applied, %d skipped, %d deferred, %d failed\n",
		summary.Applied, summary.Skipped, summary.Deferred, summary.Failed)

	if args.Report != "" {
		meta := report.Meta{
			CourseID:    cfg.Canvas.CourseID,
			Assignment:  fmt.Sprintf("#%d", args.TaskNum),
			ConfirmMode: string(mode),
			DryRun:      args.DryRun,
			GeneratedAt: time.Now(),
		}
		if err := report.Write(args.Report, summary, meta); err != nil {
			log.Warn().Err(err).Str("path", args.Report).Msg("Failed to write run report")
		} else {
			log.Info().Str("path", args.Report).Msg("Run report written")
		}
	}
}

func readTextFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("file %s is empty", path)
	}
	return text, nil
}

// readNameList reads one display name per line, skipping blanks.
func readNameList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, line := range strings.Split(string(data), "\n") {
		name := strings.TrimSpace(line)
		if name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("file %s contains no names", path)
	}
	return names, nil
}
