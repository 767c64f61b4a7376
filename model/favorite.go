package model

import "time"

// Favorite is a presence-only bookmark relation between a user and a
// transition. At most one row per (user, transition) pair.
type Favorite struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID       int64     `json:"userId" gorm:"not null;uniqueIndex:uq_user_favorite"`
	TransitionID string    `json:"transitionId" gorm:"size:36;not null;uniqueIndex:uq_user_favorite;index"`
	CreatedAt    time.Time `json:"createdAt"`
}

// TableName specifies the table name.
func (Favorite) TableName() string {
	return "favorites"
}
