package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tutorhub/backend/internal/models"
)

type TutorHandler struct {
	db *gorm.DB
}

func NewTutorHandler(db *gorm.DB) *TutorHandler {
	return &TutorHandler{db: db}
}

// GetTutors returns the tutor catalog with current tallies
func (h *TutorHandler) GetTutors(c *gin.Context) {
	var tutors []models.Tutor

	if err := h.db.Order("rating desc").Find(&tutors).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tutors"})
		return
	}

	// If no tutors, return empty array not null
	if tutors == nil {
		tutors = []models.Tutor{}
	}

	c.JSON(http.StatusOK, tutors)
}

// GetTutor returns a single tutor by ID
func (h *TutorHandler) GetTutor(c *gin.Context) {
	tutorID := c.Param("id")
	var tutor models.Tutor

	if err := h.db.First(&tutor, tutorID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tutor not found"})
		return
	}

	c.JSON(http.StatusOK, tutor)
}
