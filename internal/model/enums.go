package model

// ProjectStatus is shared by projects, tasks, to-dos and milestones.
type ProjectStatus string

const (
	StatusNotStarted ProjectStatus = "Not Started"
	StatusInProgress ProjectStatus = "In Progress"
	StatusCompleted  ProjectStatus = "Completed"
)

type Portfolio string

const (
	PortfolioTurnaround   Portfolio = "Turnaround project"
	PortfolioSpecial      Portfolio = "Special project"
	PortfolioDigitisation Portfolio = "Digitisation and automation"
)

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

type RiskStatus string

const (
	RiskOpen      RiskStatus = "Open"
	RiskMitigated RiskStatus = "Mitigated"
	RiskClosed    RiskStatus = "Closed"
)

type IssueStatus string

const (
	IssueOpen   IssueStatus = "Open"
	IssueClosed IssueStatus = "Closed"
)

type CostStatus string

const (
	CostOnTrack     CostStatus = "On Track"
	CostOverBudget  CostStatus = "Over Budget"
	CostUnderBudget CostStatus = "Under Budget"
)

type TrainingStatus string

const (
	TrainingPlanned    TrainingStatus = "Planned"
	TrainingInProgress TrainingStatus = "In Progress"
	TrainingCompleted  TrainingStatus = "Completed"
)

func validProjectStatus(field string, s ProjectStatus) error {
	return oneOf(field, s, StatusNotStarted, StatusInProgress, StatusCompleted)
}

func validPriority(field string, p Priority) error {
	return oneOf(field, p, PriorityHigh, PriorityMedium, PriorityLow)
}
