package report

import (
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Gunter-Q12/hyper-speed-grader/internal/model"
)

const resultsSheet = "Results"

// Meta describes the run a report belongs to.
type Meta struct {
	CourseID    int64
	Assignment  string
	ConfirmMode string
	DryRun      bool
	GeneratedAt time.Time
}

// Write saves the run outcomes as an Excel workbook: a metadata block, a
// header row and one row per student.
func Write(path string, summary *model.RunSummary, meta Meta) error {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName(file.GetSheetName(0), resultsSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	metaRows := [][]interface{}{
		{"Run ID", summary.RunID},
		{"Course", meta.CourseID},
		{"Assignment", meta.Assignment},
		{"Confirm mode", meta.ConfirmMode},
		{"Dry run", meta.DryRun},
		{"Generated at", meta.GeneratedAt.Format(time.RFC3339)},
	}
	for i, row := range metaRows {
		if err := setRow(file, i+1, row); err != nil {
			return err
		}
	}

	headerRow := len(metaRows) + 2
	header := []interface{}{"Student", "Student ID", "Outcome", "Grade", "Comment", "Reason"}
	if err := setRow(file, headerRow, header); err != nil {
		return err
	}

	for i, outcome := range summary.Outcomes {
		grade := ""
		if outcome.Grade != nil {
			grade = strconv.FormatFloat(*outcome.Grade, 'f', -1, 64)
		}
		row := []interface{}{
			outcome.StudentName,
			outcome.StudentID,
			string(outcome.Status),
			grade,
			outcome.Comment,
			outcome.Reason,
		}
		if err := setRow(file, headerRow+1+i, row); err != nil {
			return err
		}
	}

	if err := file.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

func setRow(file *excelize.File, row int, values []interface{}) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := file.SetCellValue(resultsSheet, cell, value); err != nil {
			return fmt.Errorf("failed to set cell %s: %w", cell, err)
		}
	}
	return nil
}
