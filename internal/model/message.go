package model

import (
	"time"

	"gorm.io/gorm"
)

// MaxMessageLength is the longest message body, in characters.
const MaxMessageLength = 140

// Message represents a short post owned by exactly one user.
type Message struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Text      string    `json:"text" gorm:"size:140;not null;check:chk_messages_text,text <> ''"`
	Timestamp time.Time `json:"timestamp" gorm:"not null;index"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`

	// Relations
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// BeforeCreate stamps the insert time when the caller left it unset.
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}
	return nil
}
