package handlers

import (
	"gorm.io/gorm"

	"github.com/tutorhub/backend/internal/notify"
	"github.com/tutorhub/backend/internal/realtime"
)

// Handler combines all handler types
type Handler struct {
	Auth    *AuthHandler
	Tutor   *TutorHandler
	Contact *ContactHandler
	User    *UserHandler
	Admin   *AdminHandler
	WS      *WSHandler
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(db *gorm.DB, hub *realtime.Hub, notifier notify.Notifier) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(db),
		Tutor:   NewTutorHandler(db),
		Contact: NewContactHandler(db, notifier),
		User:    NewUserHandler(db),
		Admin:   NewAdminHandler(db),
		WS:      NewWSHandler(hub),
	}
}
