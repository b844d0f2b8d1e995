package entity

// TestUser is a SauceDemo account used by the suites.
type TestUser struct {
	Username         string `yaml:"username" json:"username"`
	Password         string `yaml:"password" json:"password"`
	Type             string `yaml:"type" json:"type"`
	Description      string `yaml:"description" json:"description"`
	ExpectedBehavior string `yaml:"expectedBehavior" json:"expectedBehavior"`
}

// Record converts the user into a test data record.
func (u TestUser) Record() Record {
	return Record{
		"username":         u.Username,
		"password":         u.Password,
		"type":             u.Type,
		"description":      u.Description,
		"expectedBehavior": u.ExpectedBehavior,
	}
}
