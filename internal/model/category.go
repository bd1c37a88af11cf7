package model

import "fmt"

// Category names one record kind. The value doubles as the routing-key
// suffix for events and the section name in the shell.
type Category string

const (
	CategoryProject        Category = "project"
	CategoryTask           Category = "task"
	CategoryTodo           Category = "todo"
	CategoryRisk           Category = "risk"
	CategoryBudget         Category = "budget"
	CategoryCost           Category = "cost"
	CategoryCostEstimation Category = "cost_estimation"
	CategoryResource       Category = "resource"
	CategoryIssue          Category = "issue"
	CategoryMilestone      Category = "milestone"
	CategoryCharter        Category = "charter"
	CategoryCalendar       Category = "calendar"
	CategoryTraining       Category = "training"
	CategoryCredential     Category = "credential"
)

// categories is the fixed order used for listings and the full report.
var categories = []Category{
	CategoryProject,
	CategoryTask,
	CategoryRisk,
	CategoryBudget,
	CategoryResource,
	CategoryIssue,
	CategoryMilestone,
	CategoryCharter,
	CategoryCost,
	CategoryTodo,
	CategoryCalendar,
	CategoryCostEstimation,
	CategoryTraining,
	CategoryCredential,
}

// Categories returns every category in report order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// ParseCategory accepts a category identifier as typed by a user.
func ParseCategory(s string) (Category, error) {
	for _, c := range categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", &ValidationError{Field: "category", Message: fmt.Sprintf("unknown category %q", s)}
}

// ProjectScoped reports whether records of c must reference a project.
func (c Category) ProjectScoped() bool {
	switch c {
	case CategoryProject, CategoryTraining, CategoryCredential:
		return false
	}
	return true
}

// New returns an empty record of category c.
func New(c Category) (Record, error) {
	switch c {
	case CategoryProject:
		return &Project{}, nil
	case CategoryTask:
		return &Task{}, nil
	case CategoryTodo:
		return &Todo{}, nil
	case CategoryRisk:
		return &Risk{}, nil
	case CategoryBudget:
		return &BudgetLine{}, nil
	case CategoryCost:
		return &Cost{}, nil
	case CategoryCostEstimation:
		return &CostEstimation{}, nil
	case CategoryResource:
		return &Resource{}, nil
	case CategoryIssue:
		return &Issue{}, nil
	case CategoryMilestone:
		return &Milestone{}, nil
	case CategoryCharter:
		return &CharterEntry{}, nil
	case CategoryCalendar:
		return &CalendarEntry{}, nil
	case CategoryTraining:
		return &TrainingProgram{}, nil
	case CategoryCredential:
		return &Credential{}, nil
	}
	return nil, &ValidationError{Field: "category", Message: fmt.Sprintf("unknown category %q", c)}
}

// All returns one zero value per table, for schema bootstrap.
func All() []any {
	out := make([]any, 0, len(categories))
	for _, c := range categories {
		r, _ := New(c)
		out = append(out, r)
	}
	return out
}

// Filter keeps the records of concrete type T.
func Filter[T Record](recs []Record) []T {
	out := make([]T, 0, len(recs))
	for _, r := range recs {
		if t, ok := r.(T); ok {
			out = append(out, t)
		}
	}
	return out
}
