package models

import "time"

// Tutor is a catalog entry. Like/dislike counters are mutated only by the
// tally store; everything else is set at seed time.
type Tutor struct {
	ID       int     `gorm:"primaryKey" json:"id"`
	Name     string  `gorm:"not null" json:"name"`
	Rating   float64 `json:"rating"`
	Subjects string  `json:"subjects"`
	Image    string  `json:"image"`
	Likes    int     `gorm:"default:0" json:"likes"`
	Dislikes int     `gorm:"default:0" json:"dislikes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
