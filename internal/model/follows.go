package model

import "time"

// Follows is a directed edge: FollowerID follows FollowedID.
type Follows struct {
	FollowedID uint      `json:"followed_id" gorm:"primaryKey;autoIncrement:false"`
	FollowerID uint      `json:"follower_id" gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt  time.Time `json:"created_at"`

	// Relations
	Followed User `json:"-" gorm:"foreignKey:FollowedID;constraint:OnDelete:CASCADE"`
	Follower User `json:"-" gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE"`
}

// TableName pins the join table name.
func (Follows) TableName() string {
	return "follows"
}

// Profile is the read model behind a user page.
type Profile struct {
	User           *User     `json:"user"`
	Messages       []Message `json:"messages"`
	MessageCount   int64     `json:"message_count"`
	FollowerCount  int64     `json:"follower_count"`
	FollowingCount int64     `json:"following_count"`
}
