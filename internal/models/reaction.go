package models

import "time"

// Reaction model - tracks individual user votes on tutors.
// The composite unique index is the invariant: one reaction per (user, tutor).
type Reaction struct {
	ID      int    `gorm:"primaryKey" json:"id"`
	UserID  int    `gorm:"uniqueIndex:idx_reactions_user_tutor" json:"user_id"`
	TutorID int    `gorm:"uniqueIndex:idx_reactions_user_tutor" json:"tutor_id"`
	Kind    string `gorm:"not null" json:"kind"` // "like" or "dislike"

	CreatedAt time.Time `json:"created_at"`
}
