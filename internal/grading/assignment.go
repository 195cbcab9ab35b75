package grading

import (
	"fmt"

	"github.com/Gunter-Q12/hyper-speed-grader/internal/model"
	"github.com/Gunter-Q12/hyper-speed-grader/pkg/errors"
)

// SelectAssignment picks an assignment by its 1-based position in the
// course's assignment list.
func SelectAssignment(assignments []model.Assignment, taskNum int) (model.Assignment, error) {
	if len(assignments) == 0 {
		return model.Assignment{}, errors.ErrNoAssignments
	}
	if taskNum < 1 || taskNum > len(assignments) {
		return model.Assignment{}, fmt.Errorf("%w: task %d of %d",
			errors.ErrTaskIndexOutOfRange, taskNum, len(assignments))
	}
	return assignments[taskNum-1], nil
}
