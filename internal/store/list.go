package store

import (
	"fmt"

	"gorm.io/gorm"

	"projecttracker/internal/model"
)

type lister func(tx *gorm.DB) ([]model.Record, error)

var listers = map[model.Category]lister{
	model.CategoryProject:        listOf[model.Project],
	model.CategoryTask:           listOf[model.Task],
	model.CategoryTodo:           listOf[model.Todo],
	model.CategoryRisk:           listOf[model.Risk],
	model.CategoryBudget:         listOf[model.BudgetLine],
	model.CategoryCost:           listOf[model.Cost],
	model.CategoryCostEstimation: listOf[model.CostEstimation],
	model.CategoryResource:       listOf[model.Resource],
	model.CategoryIssue:          listOf[model.Issue],
	model.CategoryMilestone:      listOf[model.Milestone],
	model.CategoryCharter:        listOf[model.CharterEntry],
	model.CategoryCalendar:       listOf[model.CalendarEntry],
	model.CategoryTraining:       listOf[model.TrainingProgram],
}

func listerFor(cat model.Category) (lister, error) {
	if cat == model.CategoryCredential {
		return nil, errCredentialCategory()
	}
	l, ok := listers[cat]
	if !ok {
		return nil, &model.ValidationError{Field: "category", Message: fmt.Sprintf("unknown category %q", cat)}
	}
	return l, nil
}

func listOf[T any, PT interface {
	*T
	model.Record
}](tx *gorm.DB) ([]model.Record, error) {
	var rows []T
	if err := tx.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]model.Record, len(rows))
	for i := range rows {
		out[i] = PT(&rows[i])
	}
	return out, nil
}
