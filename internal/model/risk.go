package model

type Risk struct {
	Base        `field:"-"`
	ProjectName string     `gorm:"index;not null" json:"project_name" field:"project_name"`
	Description string     `json:"description" field:"description"`
	Likelihood  float64    `json:"likelihood" field:"likelihood"`
	Impact      float64    `json:"impact" field:"impact"`
	Severity    float64    `json:"severity" field:"severity"` // likelihood * impact, set on write
	Status      RiskStatus `json:"status" field:"status"`
}

func (*Risk) TableName() string    { return "risks" }
func (*Risk) Category() Category   { return CategoryRisk }
func (r *Risk) ProjectRef() string { return r.ProjectName }

// Normalize overwrites any supplied severity.
func (r *Risk) Normalize() {
	r.Severity = r.Likelihood * r.Impact
}

func (r *Risk) Validate() error {
	return first(
		requireText("project_name", r.ProjectName),
		inRange("likelihood", r.Likelihood, 0, 1),
		inRange("impact", r.Impact, 0, 1),
		oneOf("status", r.Status, RiskOpen, RiskMitigated, RiskClosed),
	)
}
