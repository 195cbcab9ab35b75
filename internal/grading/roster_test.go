package grading

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Gunter-Q12/hyper-speed-grader/internal/model"
)

func TestResolveRoster(t *testing.T) {
	roster := []model.Student{
		{ID: 1, Name: "Alice"},
		{ID: 2, Name: "Bob"},
		{ID: 3, Name: "Carol"},
	}

	testCases := []struct {
		names            []string
		expected         []model.Student
		expectedWarnings int
	}{
		// No explicit names: whole roster in roster order.
		{
			nil,
			roster,
			0,
		},

		// Explicit names keep their own order, not roster order.
		{
			[]string{"Carol", "Alice"},
			[]model.Student{{ID: 3, Name: "Carol"}, {ID: 1, Name: "Alice"}},
			0,
		},

		// Unknown names warn and are dropped.
		{
			[]string{"Alice", "Ghost"},
			[]model.Student{{ID: 1, Name: "Alice"}},
			1,
		},

		// Duplicates resolve to duplicate entries.
		{
			[]string{"Bob", "Bob"},
			[]model.Student{{ID: 2, Name: "Bob"}, {ID: 2, Name: "Bob"}},
			0,
		},

		// Nothing matches.
		{
			[]string{"Ghost", "Phantom"},
			[]model.Student{},
			2,
		},
	}

	for i, testCase := range testCases {
		var logOutput bytes.Buffer
		log := zerolog.New(&logOutput)

		actual := ResolveRoster(log, roster, testCase.names)
		if !reflect.DeepEqual(testCase.expected, actual) {
			t.Errorf("Case %d: unexpected students. Expected: '%+v', actual: '%+v'.",
				i, testCase.expected, actual)
			continue
		}

		warnings := strings.Count(logOutput.String(), `"level":"warn"`)
		if warnings != testCase.expectedWarnings {
			t.Errorf("Case %d: unexpected warning count. Expected: %d, actual: %d.",
				i, testCase.expectedWarnings, warnings)
		}
	}
}
