package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/SeSAC-PrePair/prepair/dispatch"
	"github.com/SeSAC-PrePair/prepair/middleware"
	"github.com/SeSAC-PrePair/prepair/models"
	"github.com/SeSAC-PrePair/prepair/utils"
)

// setupTest builds an in-memory database and a router with the protected API
// surface, seeded with the question bank and reward catalog.
func setupTest(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()

	utils.Logger = zap.NewNop()
	utils.Sugar = utils.Logger.Sugar()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Question{}, &models.Dispatch{},
		&models.Submission{}, &models.Reward{}, &models.Purchase{},
	))
	require.NoError(t, dispatch.SeedQuestionBank(db))
	require.NoError(t, dispatch.SeedRewards(db))

	authController := NewAuthController(db)
	interviewController := NewInterviewController(db)
	feedbackController := NewFeedbackController(db)
	rewardController := NewRewardController(db)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/auth/signin", authController.SignIn)
	api.POST("/auth/signup", authController.SignUp)
	api.POST("/auth/email/verify", authController.VerifyEmailCode)
	api.POST("/auth/password", authController.ResetPassword)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired())
	protected.GET("/users/me", authController.Me)
	protected.PUT("/users/me", authController.UpdateProfile)
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

	return db, r
}

// createUser inserts a ready-to-use account.
func createUser(t *testing.T, db *gorm.DB, points int) *models.User {
	t.Helper()

	hash, err := utils.HashPassword("secret123")
	require.NoError(t, err)

	user := &models.User{
		Name:         "김지원",
		Email:        fmt.Sprintf("%s@prepair.kr", strings.ToLower(strings.ReplaceAll(t.Name(), "/", "_"))),
		PasswordHash: hash,
		JobTrack:     "backend",
		Channels:     models.ChannelEmail,
		Cadence:      models.CadenceDaily,
		Points:       points,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// doRequest performs a request as the given user (0 means anonymous).
func doRequest(t *testing.T, r *gin.Engine, method, path string, userID uint, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	return doRequestFrom(t, r, method, path, userID, "", body)
}

// doRequestFrom additionally spoofs the client IP, for rate-limited routes.
func doRequestFrom(t *testing.T, r *gin.Engine, method, path string, userID uint, ip string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set(middleware.UserIDHeader, strconv.FormatUint(uint64(userID), 10))
	}
	if ip != "" {
		req.Header.Set("X-Forwarded-For", ip)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}
