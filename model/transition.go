package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Crossfade duration bounds in seconds.
const (
	MinCrossfadeLength = 1
	MaxCrossfadeLength = 15
)

// TagList is a custom type for automatic scanning of a GORM JSON column.
type TagList []string

// Scan implements the sql.Scanner interface.
func (t *TagList) Scan(value interface{}) error {
	if value == nil {
		*t = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*t = nil
		return nil
	}
	if len(bytes) == 0 || string(bytes) == "null" {
		*t = nil
		return nil
	}
	return json.Unmarshal(bytes, t)
}

// Value implements the driver.Valuer interface.
func (t TagList) Value() (driver.Value, error) {
	if t == nil {
		return nil, nil
	}
	return json.Marshal(t)
}

// Transition is a user-submitted pairing of two tracks with a suggested
// crossfade. Immutable after creation except for the view counter.
type Transition struct {
	ID              string    `json:"id" gorm:"primaryKey;size:36"`
	UserID          int64     `json:"userId" gorm:"index;not null"`
	Song1ID         string    `json:"song1Id" gorm:"size:64;not null"`
	Song1Name       string    `json:"song1Name" gorm:"size:255;not null"`
	Song1Artist     string    `json:"song1Artist" gorm:"size:255;index"`
	Song1Image      string    `json:"song1Image" gorm:"size:512"`
	Song2ID         string    `json:"song2Id" gorm:"size:64;not null"`
	Song2Name       string    `json:"song2Name" gorm:"size:255;not null"`
	Song2Artist     string    `json:"song2Artist" gorm:"size:255;index"`
	Song2Image      string    `json:"song2Image" gorm:"size:512"`
	CrossfadeLength int       `json:"crossfadeLength" gorm:"not null"` // seconds, 1..15
	Description     string    `json:"description" gorm:"type:text"`
	Tags            TagList   `json:"tags,omitempty" gorm:"type:json"`
	ViewsCount      int64     `json:"viewsCount" gorm:"not null;default:0"`
	CreatedAt       time.Time `json:"createdAt" gorm:"index"`
}

// TableName specifies the table name.
func (Transition) TableName() string {
	return "transitions"
}
