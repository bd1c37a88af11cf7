package report

import (
	"github.com/shopspring/decimal"

	"projecttracker/internal/model"
)

// PortfolioTotals aggregates the projects of one portfolio.
type PortfolioTotals struct {
	Portfolio model.Portfolio
	Projects  int
	Budget    decimal.Decimal
	Spent     decimal.Decimal
}

// Remaining is budget minus spent; negative when overspent.
func (p PortfolioTotals) Remaining() decimal.Decimal {
	return p.Budget.Sub(p.Spent)
}

var portfolios = []model.Portfolio{
	model.PortfolioTurnaround,
	model.PortfolioSpecial,
	model.PortfolioDigitisation,
}

// Portfolios returns one entry per portfolio with at least one project, in
// the fixed portfolio order.
func Portfolios(projects []*model.Project) []PortfolioTotals {
	byName := make(map[model.Portfolio]*PortfolioTotals, len(portfolios))
	for _, p := range projects {
		t, ok := byName[p.Portfolio]
		if !ok {
			t = &PortfolioTotals{Portfolio: p.Portfolio, Budget: decimal.Zero, Spent: decimal.Zero}
			byName[p.Portfolio] = t
		}
		t.Projects++
		t.Budget = t.Budget.Add(decimal.NewFromFloat(p.Budget))
		t.Spent = t.Spent.Add(decimal.NewFromFloat(p.Spent))
	}

	out := make([]PortfolioTotals, 0, len(byName))
	for _, name := range portfolios {
		if t, ok := byName[name]; ok {
			out = append(out, *t)
		}
	}
	return out
}

// Dashboard is the headline view across every project.
type Dashboard struct {
	Projects int
	ByStatus map[model.ProjectStatus]int
	Budget   decimal.Decimal
	Spent    decimal.Decimal
}

func Summarize(projects []*model.Project) Dashboard {
	d := Dashboard{
		ByStatus: map[model.ProjectStatus]int{},
		Budget:   decimal.Zero,
		Spent:    decimal.Zero,
	}
	for _, p := range projects {
		d.Projects++
		d.ByStatus[p.Status]++
		d.Budget = d.Budget.Add(decimal.NewFromFloat(p.Budget))
		d.Spent = d.Spent.Add(decimal.NewFromFloat(p.Spent))
	}
	return d
}

// RiskSummary counts risks per status and keeps the most severe risk of
// each project. Ties keep the earlier risk.
type RiskSummary struct {
	ByStatus map[model.RiskStatus]int
	Top      map[string]*model.Risk
}

func Risks(risks []*model.Risk) RiskSummary {
	s := RiskSummary{
		ByStatus: map[model.RiskStatus]int{},
		Top:      map[string]*model.Risk{},
	}
	for _, r := range risks {
		s.ByStatus[r.Status]++
		if cur, ok := s.Top[r.ProjectName]; !ok || r.Severity > cur.Severity {
			s.Top[r.ProjectName] = r
		}
	}
	return s
}
