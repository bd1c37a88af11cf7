package model

import "time"

type Resource struct {
	Base        `field:"-"`
	ProjectName string  `gorm:"index;not null" json:"project_name" field:"project_name"`
	Name        string  `gorm:"column:resource" json:"resource" field:"resource"`
	Allocation  float64 `json:"allocation" field:"allocation"` // percent, 0..100 inclusive
}

func (*Resource) TableName() string    { return "resources" }
func (*Resource) Category() Category   { return CategoryResource }
func (r *Resource) ProjectRef() string { return r.ProjectName }
func (*Resource) Normalize()           {}

func (r *Resource) Validate() error {
	return first(
		requireText("project_name", r.ProjectName),
		requireText("resource", r.Name),
		inRange("allocation", r.Allocation, 0, 100),
	)
}

type CharterEntry struct {
	Base         `field:"-"`
	ProjectName  string `gorm:"index;not null" json:"project_name" field:"project_name"`
	Objective    string `json:"objective" field:"objective"`
	Scope        string `json:"scope" field:"scope"`
	Stakeholders string `json:"stakeholders" field:"stakeholders"`
}

func (*CharterEntry) TableName() string    { return "charter_entries" }
func (*CharterEntry) Category() Category   { return CategoryCharter }
func (c *CharterEntry) ProjectRef() string { return c.ProjectName }
func (*CharterEntry) Normalize()           {}

func (c *CharterEntry) Validate() error {
	return requireText("project_name", c.ProjectName)
}

type CalendarEntry struct {
	Base        `field:"-"`
	ProjectName string    `gorm:"index;not null" json:"project_name" field:"project_name"`
	EventName   string    `json:"event_name" field:"event_name"`
	EventDate   time.Time `json:"event_date" field:"event_date"`
}

func (*CalendarEntry) TableName() string    { return "calendar_entries" }
func (*CalendarEntry) Category() Category   { return CategoryCalendar }
func (c *CalendarEntry) ProjectRef() string { return c.ProjectName }
func (c *CalendarEntry) Normalize()         { c.EventDate = Date(c.EventDate) }

func (c *CalendarEntry) Validate() error {
	return first(
		requireText("project_name", c.ProjectName),
		requireText("event_name", c.EventName),
	)
}

// TrainingProgram is not tied to a project.
type TrainingProgram struct {
	Base        `field:"-"`
	ProgramName string         `json:"program_name" field:"program_name"`
	Trainer     string         `json:"trainer" field:"trainer"`
	StartDate   time.Time      `json:"start_date" field:"start_date"`
	EndDate     time.Time      `json:"end_date" field:"end_date"`
	Status      TrainingStatus `json:"status" field:"status"`
}

func (*TrainingProgram) TableName() string  { return "training_programs" }
func (*TrainingProgram) Category() Category { return CategoryTraining }

func (t *TrainingProgram) Normalize() {
	t.StartDate = Date(t.StartDate)
	t.EndDate = Date(t.EndDate)
}

func (t *TrainingProgram) Validate() error {
	return first(
		requireText("program_name", t.ProgramName),
		oneOf("status", t.Status, TrainingPlanned, TrainingInProgress, TrainingCompleted),
	)
}
