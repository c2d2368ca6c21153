package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/SeSAC-PrePair/prepair/config"
	"github.com/SeSAC-PrePair/prepair/controllers"
	"github.com/SeSAC-PrePair/prepair/middleware"
	"github.com/SeSAC-PrePair/prepair/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	// Load config and set Gin mode from configuration
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", middleware.UserIDHeader},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}

	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db)
	interviewController := controllers.NewInterviewController(db)
	feedbackController := controllers.NewFeedbackController(db)
	rewardController := controllers.NewRewardController(db)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/signup", authController.SignUp)
	authGroup.POST("/signin", authController.SignIn)
	authGroup.POST("/email/request", authController.RequestEmailCode)
	authGroup.POST("/email/verify", authController.VerifyEmailCode)
	authGroup.POST("/password", authController.ResetPassword)
	authGroup.GET("/kakao", authController.KakaoRedirect)
	authGroup.GET("/kakao/callback", authController.KakaoCallback)
	authGroup.POST("/kakao/exchange", authController.KakaoExchange)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired())

	protected.GET("/users/me", authController.Me)
	protected.PUT("/users/me", authController.UpdateProfile)
	protected.PATCH("/users/me", authController.UpdateProfile)
	protected.DELETE("/users/me", authController.DeleteAccount)

	protected.GET("/interviews/first", interviewController.FirstQuestion)
	protected.GET("/interviews/me/today", interviewController.Today)
	protected.POST("/interviews/me/today", interviewController.SubmitToday)
	protected.GET("/interviews/me/histories", interviewController.Histories)
	protected.GET("/interviews/me/histories/:id", interviewController.HistoryByID)
	protected.GET("/interviews/me/stats", interviewController.Stats)

	protected.GET("/evaluation/feedback/:id", feedbackController.Get)
	protected.POST("/evaluation/feedback/:id", feedbackController.Regenerate)

	protected.GET("/users/me/rewards", rewardController.List)
	protected.POST("/users/me/rewards", rewardController.Redeem)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		ctx.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	})

	return r
}
