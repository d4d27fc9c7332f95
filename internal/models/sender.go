package models

// Sender groups messages under a human-facing organization name.
// At most one row may exist per (user_id, org_name); rows are created
// lazily the first time an organization name is seen for a user and
// reused afterwards.
type Sender struct {
	ID      string `gorm:"primaryKey;size:36" json:"id"`
	UserID  string `gorm:"not null;uniqueIndex:idx_senders_user_org;size:255" json:"user_id"`
	OrgName string `gorm:"not null;uniqueIndex:idx_senders_user_org;size:255" json:"org_name"`
}

// TableName returns the table name for Sender
func (Sender) TableName() string {
	return "senders"
}
