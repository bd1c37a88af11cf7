package model

type BudgetLine struct {
	Base        `field:"-"`
	ProjectName string  `gorm:"index;not null" json:"project_name" field:"project_name"`
	Label       string  `gorm:"column:category" json:"category" field:"category"`
	Allocated   float64 `json:"allocated" field:"allocated"`
	Spent       float64 `json:"spent" field:"spent"`
}

func (*BudgetLine) TableName() string    { return "budget_lines" }
func (*BudgetLine) Category() Category   { return CategoryBudget }
func (b *BudgetLine) ProjectRef() string { return b.ProjectName }
func (*BudgetLine) Normalize()           {}

func (b *BudgetLine) Validate() error {
	return first(
		requireText("project_name", b.ProjectName),
		requireText("category", b.Label),
		nonNegative("allocated", b.Allocated),
		nonNegative("spent", b.Spent),
	)
}

type Cost struct {
	Base        `field:"-"`
	ProjectName string     `gorm:"index;not null" json:"project_name" field:"project_name"`
	Label       string     `gorm:"column:category" json:"category" field:"category"`
	Planned     float64    `json:"planned" field:"planned"`
	Actual      float64    `json:"actual" field:"actual"`
	Status      CostStatus `json:"status" field:"status"`
}

func (*Cost) TableName() string    { return "costs" }
func (*Cost) Category() Category   { return CategoryCost }
func (c *Cost) ProjectRef() string { return c.ProjectName }
func (*Cost) Normalize()           {}

func (c *Cost) Validate() error {
	return first(
		requireText("project_name", c.ProjectName),
		requireText("category", c.Label),
		nonNegative("planned", c.Planned),
		nonNegative("actual", c.Actual),
		oneOf("status", c.Status, CostOnTrack, CostOverBudget, CostUnderBudget),
	)
}

type CostEstimation struct {
	Base        `field:"-"`
	ProjectName string  `gorm:"index;not null" json:"project_name" field:"project_name"`
	Item        string  `json:"item" field:"item"`
	Estimated   float64 `json:"estimated" field:"estimated"`
}

func (*CostEstimation) TableName() string    { return "cost_estimations" }
func (*CostEstimation) Category() Category   { return CategoryCostEstimation }
func (c *CostEstimation) ProjectRef() string { return c.ProjectName }
func (*CostEstimation) Normalize()           {}

func (c *CostEstimation) Validate() error {
	return first(
		requireText("project_name", c.ProjectName),
		requireText("item", c.Item),
		nonNegative("estimated", c.Estimated),
	)
}
