package model

import "time"

type Task struct {
	Base        `field:"-"`
	ProjectName string        `gorm:"index;not null" json:"project_name" field:"project_name"`
	Description string        `json:"description" field:"description"`
	Priority    Priority      `json:"priority" field:"priority"`
	Status      ProjectStatus `json:"status" field:"status"`
	StartDate   time.Time     `json:"start_date" field:"start_date"`
	EndDate     time.Time     `json:"end_date" field:"end_date"`
}

func (*Task) TableName() string    { return "tasks" }
func (*Task) Category() Category   { return CategoryTask }
func (t *Task) ProjectRef() string { return t.ProjectName }

func (t *Task) Normalize() {
	t.StartDate = Date(t.StartDate)
	t.EndDate = Date(t.EndDate)
}

func (t *Task) Validate() error {
	return first(
		requireText("project_name", t.ProjectName),
		validPriority("priority", t.Priority),
		validProjectStatus("status", t.Status),
	)
}

type Todo struct {
	Base        `field:"-"`
	ProjectName string        `gorm:"index;not null" json:"project_name" field:"project_name"`
	Description string        `json:"description" field:"description"`
	Priority    Priority      `json:"priority" field:"priority"`
	Status      ProjectStatus `json:"status" field:"status"`
	DueDate     time.Time     `json:"due_date" field:"due_date"`
}

func (*Todo) TableName() string    { return "todos" }
func (*Todo) Category() Category   { return CategoryTodo }
func (t *Todo) ProjectRef() string { return t.ProjectName }
func (t *Todo) Normalize()         { t.DueDate = Date(t.DueDate) }

func (t *Todo) Validate() error {
	return first(
		requireText("project_name", t.ProjectName),
		validPriority("priority", t.Priority),
		validProjectStatus("status", t.Status),
	)
}

type Milestone struct {
	Base        `field:"-"`
	ProjectName string        `gorm:"index;not null" json:"project_name" field:"project_name"`
	Description string        `json:"description" field:"description"`
	DueDate     time.Time     `json:"due_date" field:"due_date"`
	Status      ProjectStatus `json:"status" field:"status"`
}

func (*Milestone) TableName() string    { return "milestones" }
func (*Milestone) Category() Category   { return CategoryMilestone }
func (m *Milestone) ProjectRef() string { return m.ProjectName }
func (m *Milestone) Normalize()         { m.DueDate = Date(m.DueDate) }

func (m *Milestone) Validate() error {
	return first(
		requireText("project_name", m.ProjectName),
		validProjectStatus("status", m.Status),
	)
}

type Issue struct {
	Base        `field:"-"`
	ProjectName string      `gorm:"index;not null" json:"project_name" field:"project_name"`
	Description string      `json:"description" field:"description"`
	Priority    Priority    `json:"priority" field:"priority"`
	Status      IssueStatus `json:"status" field:"status"` // Open / Closed
}

func (*Issue) TableName() string    { return "issues" }
func (*Issue) Category() Category   { return CategoryIssue }
func (i *Issue) ProjectRef() string { return i.ProjectName }
func (*Issue) Normalize()           {}

func (i *Issue) Validate() error {
	return first(
		requireText("project_name", i.ProjectName),
		validPriority("priority", i.Priority),
		oneOf("status", i.Status, IssueOpen, IssueClosed),
	)
}
