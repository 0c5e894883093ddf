package models

import "time"

// ContactMessage is a contact-form submission. Stored first, then relayed to
// the configured messaging bot; Relayed records whether the relay succeeded.
type ContactMessage struct {
	ID      int    `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"not null" json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Message string `gorm:"not null" json:"message"`
	Relayed bool   `gorm:"default:false" json:"relayed"`

	CreatedAt time.Time `json:"created_at"`
}
