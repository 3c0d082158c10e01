package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/lakshyaprep/lakshya-backend/internal/config"
	"github.com/lakshyaprep/lakshya-backend/internal/handler"
	"github.com/lakshyaprep/lakshya-backend/internal/middleware"
	"github.com/lakshyaprep/lakshya-backend/internal/response"
	"github.com/lakshyaprep/lakshya-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth      *handler.AuthHandler
	Paper     *handler.PaperHandler
	Question  *handler.QuestionHandler
	Progress  *handler.ProgressHandler
	Tutor     *handler.TutorHandler
	User      *handler.UserHandler
	Setting   *handler.SettingHandler
	Dashboard *handler.DashboardHandler
	Media     *handler.MediaHandler
	WS        *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Serve uploaded diagram images statically with aggressive caching (1 year).
	uploadsGroup := router.Group("/uploads")
	uploadsGroup.Use(middleware.CacheControl(31536000))
	{
		uploadsGroup.Static("/", cfg.UploadDir)
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 0. Public Group (No Auth) ─────────────────────────────────────
	// Runtime settings and the exam structure catalog are reference data
	// a client needs before login.
	publicAPI := router.Group("/api/v1/public")
	{
		publicAPI.GET("/settings", handlers.Setting.GetPublicSettings)
		publicAPI.GET("/exam-structures", handlers.Paper.ListExamStructures)
	}

	// Login and registration get a per-IP rate limiter; tutor routes get
	// their own tighter one since each call costs an LLM round trip.
	authLimiter := middleware.NewRateLimiter(30, time.Minute)
	tutorLimiter := middleware.NewRateLimiter(20, time.Minute)

	// ─── 1. Auth Group ─────────────────────────────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/register", authLimiter.Middleware(), handlers.Auth.Register)
		auth.POST("/login", authLimiter.Middleware(), handlers.Auth.Login)

		// Authenticated profile routes
		auth.GET("/me", middleware.RequireStudentJWT(authService), handlers.Auth.Me)
		auth.PUT("/me", middleware.RequireStudentJWT(authService), handlers.Auth.UpdateProfile)
		auth.POST("/change-password", middleware.RequireStudentJWT(authService), handlers.Auth.ChangePassword)
	}

	// ─── 2. Student Group (JWT) ────────────────────────────────────────
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(middleware.RequireStudentJWT(authService))
	{
		// Paper generation and retrieval
		studentAPI.POST("/papers/generate", handlers.Paper.GeneratePaper)
		studentAPI.POST("/papers/generate-exam", handlers.Paper.GenerateExamPaper)
		studentAPI.GET("/papers", handlers.Paper.ListPapers)
		studentAPI.GET("/papers/:id", handlers.Paper.GetPaper)
		studentAPI.DELETE("/papers/:id", handlers.Paper.DeletePaper)
		studentAPI.GET("/papers/:id/answer-key", handlers.Paper.GetAnswerKey)
		studentAPI.POST("/papers/:id/check", handlers.Paper.CheckAnswer)
		studentAPI.POST("/papers/:id/submit", handlers.Paper.SubmitAttempt)

		// Attempt history
		studentAPI.GET("/attempts", handlers.Paper.ListAttempts)
		studentAPI.GET("/attempts/:id", handlers.Paper.GetAttempt)

		// Progress tracking
		studentAPI.GET("/progress", handlers.Progress.GetProgress)
		studentAPI.POST("/progress/attempts", handlers.Progress.RecordAttempt)
		studentAPI.GET("/progress/weak-areas", handlers.Progress.GetWeakAreas)
		studentAPI.GET("/progress/recommendations", handlers.Progress.GetRecommendations)
		studentAPI.GET("/progress/summary", handlers.Progress.GetSummary)
		studentAPI.DELETE("/progress", handlers.Progress.ResetAll)
		studentAPI.DELETE("/progress/topic", handlers.Progress.ResetTopic)

		// Question browsing, catalog and dashboard
		studentAPI.GET("/questions", handlers.Question.BrowseQuestions)
		studentAPI.GET("/catalog", handlers.Question.GetCatalog)
		studentAPI.GET("/dashboard", handlers.Dashboard.GetStudentDashboard)

		// Tutor
		studentAPI.POST("/tutor/chat", tutorLimiter.Middleware(), handlers.Tutor.Chat)
		studentAPI.GET("/questions/:id/explanation", tutorLimiter.Middleware(), handlers.Tutor.ExplainQuestion)
	}

	// ─── 3. WebSocket Group (Student WS Auth) ──────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireStudentWSAuth(authService))
	{
		ws.GET("/student/tutor", handlers.WS.TutorStream)
	}

	// ─── 4. Admin Group (JWT) ──────────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService))
	{
		adminAPI.GET("/me", handlers.Auth.Me)

		// Question bank management
		adminAPI.GET("/questions", handlers.Question.ListQuestions)
		adminAPI.POST("/questions", handlers.Question.CreateQuestion)
		adminAPI.GET("/questions/:id", handlers.Question.GetQuestion)
		adminAPI.PUT("/questions/:id", handlers.Question.UpdateQuestion)
		adminAPI.DELETE("/questions/:id", handlers.Question.DeleteQuestion)
		adminAPI.POST("/questions/import", handlers.Question.ImportQuestions)
		adminAPI.POST("/questions/solutions/backfill", handlers.Question.BackfillSolutions)

		// User management
		adminAPI.GET("/users", handlers.User.ListUsers)
		adminAPI.POST("/users", handlers.User.CreateUser)
		adminAPI.GET("/users/:id", handlers.User.GetUser)
		adminAPI.PUT("/users/:id", handlers.User.UpdateUser)
		adminAPI.DELETE("/users/:id", handlers.User.DeleteUser)

		// Media upload
		adminAPI.POST("/media/upload", handlers.Media.UploadDiagram)

		// Dashboard
		adminAPI.GET("/dashboard", handlers.Dashboard.GetDashboard)

		// App Settings Routes
		settingsGroup := adminAPI.Group("/settings")
		{
			settingsGroup.GET("", handlers.Setting.GetAllSettings)
			settingsGroup.PUT("", handlers.Setting.UpdateSettings)
		}
	}

	return router
}
