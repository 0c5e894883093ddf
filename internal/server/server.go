package server

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/tutorhub/backend/internal/database"
	"github.com/tutorhub/backend/internal/handlers"
	"github.com/tutorhub/backend/internal/middleware"
	"github.com/tutorhub/backend/internal/models"
	"github.com/tutorhub/backend/internal/notify"
	"github.com/tutorhub/backend/internal/realtime"
	"github.com/tutorhub/backend/internal/store"
)

type Server struct {
	db      database.Service
	hub     *realtime.Hub
	handler *handlers.Handler
}

// NewServer creates and configures a new server. The returned hub must be
// started with Run before the server accepts traffic.
func NewServer() (*http.Server, *realtime.Hub) {
	// Create the schema first so the UNIQUE(user_id, tutor_id) constraint
	// exists before anything can vote
	rawDB, err := database.NewDatabase()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if err := rawDB.Initialize(); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}
	rawDB.Close()

	// GORM service (connects, migrates, seeds)
	dbService := database.New()
	gormDB := dbService.GetDB()

	// Tally store and broadcast hub
	tallyStore := store.NewGormStore(gormDB)
	hub := realtime.NewHub(tallyStore)

	// Create unified handler
	handler := handlers.NewHandler(gormDB, hub, notify.FromEnv())

	newServer := &Server{
		db:      dbService,
		hub:     hub,
		handler: handler,
	}

	// Configure Gin router
	router := newServer.RegisterRoutes()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080" // local dev fallback
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         "0.0.0.0:" + port,
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Printf("🚀 Server starting on port %s\n", port)
	fmt.Println("📝 Press Ctrl+C to stop the server")

	return server, hub
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	r := gin.Default()

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.db.Health())
	})

	// Real-time reaction channel (anonymous connections allowed)
	r.GET("/ws", s.handler.WS.Connect)

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		api.POST("/register", s.handler.Auth.Register)
		api.POST("/login", s.handler.Auth.Login)

		// Tutor catalog (public reads)
		api.GET("/tutors", s.handler.Tutor.GetTutors)
		api.GET("/tutors/:id", s.handler.Tutor.GetTutor)

		// Contact form (public)
		api.POST("/contact", s.handler.Contact.Submit)

		// User routes (public reads)
		api.GET("/users/:id", s.handler.User.GetUserProfile)

		// Protected routes (authentication required)
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			protected.GET("/me", s.handler.Auth.GetMe)
			protected.PUT("/users/:id", s.handler.User.UpdateUserProfile)
		}

		// Admin routes
		admin := api.Group("/admin")
		admin.Use(middleware.AuthMiddleware(), middleware.RequireRole(models.RoleAdmin))
		{
			admin.GET("/users", s.handler.Admin.ListUsers)
			admin.PUT("/users/:id/role", s.handler.Admin.UpdateUserRole)
			admin.DELETE("/users/:id", s.handler.Admin.DeleteUser)
		}
	}

	return r
}
