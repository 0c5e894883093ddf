package handlers

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tutorhub/backend/internal/models"
	"github.com/tutorhub/backend/internal/notify"
)

type ContactHandler struct {
	db       *gorm.DB
	notifier notify.Notifier
}

func NewContactHandler(db *gorm.DB, notifier notify.Notifier) *ContactHandler {
	return &ContactHandler{db: db, notifier: notifier}
}

// Submit stores a contact-form message and relays it to the messaging bot.
// The visitor gets a success response as long as the message was stored;
// relay failures are logged, not surfaced.
func (h *ContactHandler) Submit(c *gin.Context) {
	var input struct {
		Name    string `json:"name" binding:"required"`
		Phone   string `json:"phone"`
		Email   string `json:"email" binding:"omitempty,email"`
		Message string `json:"message" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg := models.ContactMessage{
		Name:    input.Name,
		Phone:   input.Phone,
		Email:   input.Email,
		Message: input.Message,
	}

	if err := h.db.Create(&msg).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save message"})
		return
	}

	text := fmt.Sprintf(
		"New request:\nName: %s\nPhone: %s\nEmail: %s\nMessage: %s",
		input.Name, input.Phone, input.Email, input.Message,
	)

	if err := h.notifier.Send(c.Request.Context(), text); err != nil {
		log.Printf("Failed to relay contact message %d: %v", msg.ID, err)
	} else if err := h.db.Model(&msg).UpdateColumn("relayed", true).Error; err != nil {
		log.Printf("Failed to mark contact message %d as relayed: %v", msg.ID, err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Message sent successfully"})
}
