package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringList stores an ordered list of string tags as a JSON array so the
// same column works on both PostgreSQL and SQLite.
type StringList []string

// Value implements driver.Valuer. A nil list is stored as NULL.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal string list: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for string list", src)
	}
	if len(data) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(data, l)
}

// Contains reports whether the list contains the given tag.
func (l StringList) Contains(tag string) bool {
	for _, v := range l {
		if v == tag {
			return true
		}
	}
	return false
}

// Message is the canonical local record for one synced Gmail message.
// The primary key is the provider-assigned message ID, which is stable
// across repeated syncs; rows are only ever created or refreshed by the
// sync pipeline, never deleted.
type Message struct {
	ID       string     `gorm:"primaryKey;size:64" json:"id"`
	UserID   string     `gorm:"not null;index;size:255" json:"user_id"`
	From     string     `gorm:"column:from_addr;not null;size:512" json:"from"`
	To       string     `gorm:"column:to_addr;size:2048" json:"to,omitempty"`
	Subject  string     `gorm:"size:1024" json:"subject,omitempty"`
	Snippet  string     `gorm:"size:1024" json:"snippet,omitempty"`
	Body     string     `gorm:"not null" json:"body"`
	Date     *time.Time `json:"date,omitempty"`
	LabelIDs StringList `gorm:"column:label_ids;type:text" json:"label_ids,omitempty"`
	SenderID *string    `gorm:"column:sender_id;size:36" json:"sender_id,omitempty"`
}

// TableName returns the table name for Message
func (Message) TableName() string {
	return "messages"
}
