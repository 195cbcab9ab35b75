package model

// Student is one course participant as returned by the Canvas users API.
type Student struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Assignment is a gradable task. Assignments are addressed by their 1-based
// position in the course's assignment list, which follows API order.
type Assignment struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
