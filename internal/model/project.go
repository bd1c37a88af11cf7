package model

import "time"

// Project is the identity every scoped record refers to by name.
type Project struct {
	Base        `field:"-"`
	Name        string        `gorm:"uniqueIndex;not null" json:"name" field:"name"`
	StartDate   time.Time     `json:"start_date" field:"start_date"`
	EndDate     time.Time     `json:"end_date" field:"end_date"`
	Budget      float64       `json:"budget" field:"budget"`
	Spent       float64       `json:"spent" field:"spent"`
	Status      ProjectStatus `json:"status" field:"status"`
	Portfolio   Portfolio     `json:"portfolio" field:"portfolio"`
	Impact      int           `json:"impact" field:"impact"`
	Deliverable string        `json:"deliverable" field:"deliverable"`
	Timeline    string        `json:"timeline" field:"timeline"`
}

func (*Project) TableName() string  { return "projects" }
func (*Project) Category() Category { return CategoryProject }

func (p *Project) Normalize() {
	p.StartDate = Date(p.StartDate)
	p.EndDate = Date(p.EndDate)
}

func (p *Project) Validate() error {
	return first(
		requireText("name", p.Name),
		nonNegative("budget", p.Budget),
		nonNegative("spent", p.Spent),
		nonNegative("impact", float64(p.Impact)),
		validProjectStatus("status", p.Status),
		oneOf("portfolio", p.Portfolio, PortfolioTurnaround, PortfolioSpecial, PortfolioDigitisation),
	)
}
