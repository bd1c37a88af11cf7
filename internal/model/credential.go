package model

// Credential is owned by the session gate; PasswordHash never leaves it.
type Credential struct {
	Base         `field:"-"`
	Username     string `gorm:"uniqueIndex;not null" json:"username" field:"username"`
	PasswordHash string `gorm:"not null" json:"-" field:"-"`
}

func (*Credential) TableName() string  { return "credentials" }
func (*Credential) Category() Category { return CategoryCredential }
func (*Credential) Normalize()         {}

func (c *Credential) Validate() error {
	return first(
		requireText("username", c.Username),
		requireText("password", c.PasswordHash),
	)
}
