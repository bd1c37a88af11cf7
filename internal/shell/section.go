package shell

import (
	"context"
	"io"
	"strings"

	"projecttracker/internal/session"
	"projecttracker/internal/store"
)

// SessionState is what the shell carries between commands: the gate that
// knows who is logged in and the currently selected project.
type SessionState struct {
	Gate    *session.Gate
	Project string // "" means every project
}

// Env is what a section handler renders from.
type Env struct {
	Store *store.Store
	State *SessionState
}

// Handler renders one section.
type Handler interface {
	Render(ctx context.Context, env *Env, out io.Writer) error
}

type Section int

const (
	SectionDashboard Section = iota
	SectionCharter
	SectionMilestones
	SectionPortfolio
	SectionTasks
	SectionResources
	SectionRisks
	SectionBudget
	SectionCosts
	SectionCostEstimation
	SectionIssues
	SectionTodos
	SectionCalendar
	SectionTraining
	SectionReporting
	SectionROI
)

var sectionNames = [...]string{
	SectionDashboard:      "dashboard",
	SectionCharter:        "charter",
	SectionMilestones:     "milestones",
	SectionPortfolio:      "portfolio",
	SectionTasks:          "tasks",
	SectionResources:      "resources",
	SectionRisks:          "risks",
	SectionBudget:         "budget",
	SectionCosts:          "costs",
	SectionCostEstimation: "cost_estimation",
	SectionIssues:         "issues",
	SectionTodos:          "todos",
	SectionCalendar:       "calendar",
	SectionTraining:       "training",
	SectionReporting:      "reporting",
	SectionROI:            "roi",
}

func (s Section) String() string {
	if s < 0 || int(s) >= len(sectionNames) {
		return "unknown"
	}
	return sectionNames[s]
}

// Sections returns every section in navigation order.
func Sections() []Section {
	out := make([]Section, len(sectionNames))
	for i := range sectionNames {
		out[i] = Section(i)
	}
	return out
}

// ParseSection accepts a section name; spaces and dashes match underscores.
func ParseSection(name string) (Section, bool) {
	name = strings.NewReplacer(" ", "_", "-", "_").Replace(strings.ToLower(strings.TrimSpace(name)))
	for i, n := range sectionNames {
		if n == name {
			return Section(i), true
		}
	}
	return 0, false
}
