package store

import (
	"fmt"

	"projecttracker/internal/model"
)

// ReferenceError reports a project-scoped record whose project_name does not
// name an existing project.
type ReferenceError struct {
	Category    model.Category
	ProjectName string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s references unknown project %q", e.Category, e.ProjectName)
}

func errCredentialCategory() error {
	return &model.ValidationError{
		Field:   "category",
		Message: "credentials are managed through register and login",
	}
}
