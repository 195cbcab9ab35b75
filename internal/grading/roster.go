package grading

import (
	"github.com/rs/zerolog"

	"github.com/Gunter-Q12/hyper-speed-grader/internal/model"
)

// ResolveRoster picks the students to grade. With no explicit names it
// returns the whole roster in roster order. With names it resolves each one
// by exact display-name match, in the given order; misses are warned about
// and dropped, duplicates are kept (the student is processed twice).
func ResolveRoster(log zerolog.Logger, roster []model.Student, explicitNames []string) []model.Student {
	if len(explicitNames) == 0 {
		return roster
	}

	byName := make(map[string]model.Student, len(roster))
	for _, student := range roster {
		if _, seen := byName[student.Name]; !seen {
			byName[student.Name] = student
		}
	}

	selected := make([]model.Student, 0, len(explicitNames))
	for _, name := range explicitNames {
		student, ok := byName[name]
		if !ok {
			log.Warn().Str("name", name).Msg("Student not found in course roster")
			continue
		}
		selected = append(selected, student)
	}

	return selected
}
