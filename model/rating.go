package model

import "time"

// Rating is a signed vote (+1 upvote, -1 downvote) by one user on one
// transition. The composite unique index guarantees at most one row per
// (user, transition) pair.
type Rating struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID       int64     `json:"userId" gorm:"not null;uniqueIndex:uq_user_transition"`
	TransitionID string    `json:"transitionId" gorm:"size:36;not null;uniqueIndex:uq_user_transition;index"`
	Rating       int       `json:"rating" gorm:"not null"` // +1 or -1
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TableName specifies the table name.
func (Rating) TableName() string {
	return "ratings"
}
