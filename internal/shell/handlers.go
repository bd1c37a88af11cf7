package shell

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"projecttracker/internal/model"
	"projecttracker/internal/report"
)

// defaultHandlers maps every section to its renderer.
func defaultHandlers() map[Section]Handler {
	return map[Section]Handler{
		SectionDashboard:      dashboardHandler{},
		SectionCharter:        categoryHandler{title: "Project Charter", category: model.CategoryCharter},
		SectionMilestones:     categoryHandler{title: "Milestones", category: model.CategoryMilestone},
		SectionPortfolio:      portfolioHandler{},
		SectionTasks:          categoryHandler{title: "Tasks", category: model.CategoryTask},
		SectionResources:      categoryHandler{title: "Resources", category: model.CategoryResource},
		SectionRisks:          riskHandler{},
		SectionBudget:         categoryHandler{title: "Budget", category: model.CategoryBudget},
		SectionCosts:          categoryHandler{title: "Costs", category: model.CategoryCost},
		SectionCostEstimation: categoryHandler{title: "Cost Estimation", category: model.CategoryCostEstimation},
		SectionIssues:         categoryHandler{title: "Issues", category: model.CategoryIssue},
		SectionTodos:          categoryHandler{title: "To-Do List", category: model.CategoryTodo},
		SectionCalendar:       categoryHandler{title: "Calendar", category: model.CategoryCalendar},
		SectionTraining:       categoryHandler{title: "Training Programs", category: model.CategoryTraining},
		SectionReporting:      reportingHandler{},
		SectionROI:            roiHandler{},
	}
}

// scoped lists c for the selected project, or everything when none is
// selected or c is not project-scoped.
func scoped(ctx context.Context, env *Env, c model.Category) ([]model.Record, error) {
	if env.State.Project != "" && c.ProjectScoped() {
		return env.Store.ListByProject(ctx, c, env.State.Project)
	}
	return env.Store.List(ctx, c)
}

func projects(ctx context.Context, env *Env) ([]*model.Project, error) {
	recs, err := env.Store.List(ctx, model.CategoryProject)
	if err != nil {
		return nil, err
	}
	return model.Filter[*model.Project](recs), nil
}

type categoryHandler struct {
	title    string
	category model.Category
}

func (h categoryHandler) Render(ctx context.Context, env *Env, out io.Writer) error {
	recs, err := scoped(ctx, env, h.category)
	if err != nil {
		return err
	}
	heading := h.title
	if env.State.Project != "" && h.category.ProjectScoped() {
		heading += " · " + env.State.Project
	}
	title(out, heading)
	records(out, h.category, recs)
	return nil
}

type dashboardHandler struct{}

func (dashboardHandler) Render(ctx context.Context, env *Env, out io.Writer) error {
	recs, err := env.Store.List(ctx, model.CategoryProject)
	if err != nil {
		return err
	}
	d := report.Summarize(model.Filter[*model.Project](recs))

	title(out, "Dashboard")
	label(out, "Projects", d.Projects)
	for _, s := range []model.ProjectStatus{model.StatusNotStarted, model.StatusInProgress, model.StatusCompleted} {
		label(out, "  "+string(s), d.ByStatus[s])
	}
	label(out, "Budget", d.Budget.StringFixed(2))
	label(out, "Spent", d.Spent.StringFixed(2))

	records(out, model.CategoryProject, recs)
	return nil
}

type portfolioHandler struct{}

func (portfolioHandler) Render(ctx context.Context, env *Env, out io.Writer) error {
	ps, err := projects(ctx, env)
	if err != nil {
		return err
	}
	title(out, "Portfolio Tracking")
	totals := report.Portfolios(ps)
	if len(totals) == 0 {
		fmt.Fprintln(out, dimStyle.Render("no portfolio entries"))
		return nil
	}
	cells := make([][]string, 0, len(totals))
	for _, t := range totals {
		cells = append(cells, []string{
			string(t.Portfolio),
			strconv.Itoa(t.Projects),
			t.Budget.StringFixed(2),
			t.Spent.StringFixed(2),
			t.Remaining().StringFixed(2),
		})
	}
	rows(out, []string{"portfolio", "projects", "budget", "spent", "remaining"}, cells)
	return nil
}

type riskHandler struct{}

func (riskHandler) Render(ctx context.Context, env *Env, out io.Writer) error {
	if err := (categoryHandler{title: "Risk Management", category: model.CategoryRisk}).Render(ctx, env, out); err != nil {
		return err
	}
	recs, err := scoped(ctx, env, model.CategoryRisk)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		return nil
	}

	summary := report.Risks(model.Filter[*model.Risk](recs))
	for _, s := range []model.RiskStatus{model.RiskOpen, model.RiskMitigated, model.RiskClosed} {
		label(out, string(s), summary.ByStatus[s])
	}

	names, err := env.Store.ListProjectNames(ctx)
	if err != nil {
		return err
	}
	var cells [][]string
	for _, name := range names {
		if r, ok := summary.Top[name]; ok {
			cells = append(cells, []string{name, r.Description, strconv.FormatFloat(r.Severity, 'f', -1, 64)})
		}
	}
	rows(out, []string{"project", "top risk", "severity"}, cells)
	return nil
}

type reportingHandler struct{}

func (reportingHandler) Render(ctx context.Context, env *Env, out io.Writer) error {
	title(out, "Reporting")
	cells := [][]string{}
	for _, c := range model.Categories() {
		if c == model.CategoryCredential {
			continue
		}
		recs, err := scoped(ctx, env, c)
		if err != nil {
			return err
		}
		cells = append(cells, []string{string(c), strconv.Itoa(len(recs))})
	}
	rows(out, []string{"category", "records"}, cells)
	fmt.Fprintln(out, dimStyle.Render("export <file> writes the full report; export <category> <file> writes one category"))
	return nil
}

type roiHandler struct{}

func (roiHandler) Render(_ context.Context, _ *Env, out io.Writer) error {
	title(out, "ROI Calculation")
	fmt.Fprintln(out, dimStyle.Render("roi <initial investment> <cash flow,cash flow,...>"))
	return nil
}
