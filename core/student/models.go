package student

import (
	"context"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("student not found")

// Student is the display data of a student as known by the registry.
type Student struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Phone       string `json:"phone"`
}

// Registry lists the students assigned to a teacher.
type Registry interface {
	// ListAssigned returns the teacher's students in a stable order.
	ListAssigned(ctx context.Context, teacherID string) ([]Student, error)
}
