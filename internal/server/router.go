package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/siplanskills/backend/internal/handlers"
	"github.com/siplanskills/backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler          *handlers.AuthHandler
	AuthMiddleware       *middleware.AuthMiddleware
	CatalogHandler       *handlers.CatalogHandler
	LessonHandler        *handlers.LessonHandler
	QuizHandler          *handlers.QuizHandler
	CertificationHandler *handlers.CertificationHandler
	SessionHandler       *handlers.SessionHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:3000",
			"http://localhost:5173",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	api.POST("/register", cfg.AuthHandler.Register)
	api.POST("/login", cfg.AuthHandler.Login)

	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// Auth
	protected.POST("/refresh", cfg.AuthHandler.Refresh)
	protected.POST("/logout", cfg.AuthHandler.Logout)
	// Catalog
	protected.GET("/systems", cfg.CatalogHandler.ListSystems)
	protected.GET("/systems/:id/products", cfg.CatalogHandler.ListProducts)
	protected.GET("/products/:id/lessons", cfg.CatalogHandler.ListLessons)
	// Progress
	protected.GET("/products/:id/progress", cfg.LessonHandler.ProductProgress)
	protected.POST("/lessons/progress", cfg.LessonHandler.MarkProgress)
	protected.GET("/progress/generation", cfg.SessionHandler.ProgressGeneration)
	protected.GET("/progress/events", cfg.SessionHandler.ProgressEvents)
	// Quiz
	protected.GET("/lessons/:id/quiz", cfg.QuizHandler.GetLessonQuiz)
	protected.POST("/quizzes/submit", cfg.QuizHandler.SubmitQuiz)
	// Certification
	protected.GET("/tracks/:id/certification", cfg.CertificationHandler.GetCertification)
	// Session
	protected.POST("/session/heartbeat", cfg.SessionHandler.Heartbeat)

	return router
}
