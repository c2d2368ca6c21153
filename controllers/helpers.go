package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/SeSAC-PrePair/prepair/middleware"
	"github.com/SeSAC-PrePair/prepair/models"
	"github.com/SeSAC-PrePair/prepair/utils"
)

// getUserID reads the authenticated user ID set by the auth middleware.
func getUserID(ctx *gin.Context) (uint, bool) {
	return middleware.UserID(ctx)
}

// loadUser fetches the authenticated user row or writes the appropriate error response.
func loadUser(ctx *gin.Context, db *gorm.DB) (*models.User, bool) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return nil, false
	}

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40410, "존재하지 않는 사용자입니다.")
			return nil, false
		}
		utils.Error(ctx, http.StatusInternalServerError, 50010, "사용자 정보를 불러오지 못했습니다.")
		return nil, false
	}
	return &user, true
}

// sanitizeUserResponse hides credential fields and adds derived values.
func sanitizeUserResponse(user models.User) gin.H {
	return gin.H{
		"id":                 user.ID,
		"name":               user.Name,
		"email":              user.Email,
		"provider":           user.Provider,
		"job_track":          user.JobTrack,
		"position":           user.Position,
		"intro":              user.Intro,
		"channels":           user.ChannelList(),
		"cadence":            user.Cadence,
		"points":             user.Points,
		"consecutive_days":   user.ConsecutiveDays,
		"tier":               user.Tier(),
		"last_submission_at": user.LastSubmissionAt,
		"created_at":         user.CreatedAt,
	}
}

func isSameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

func isYesterday(last, today time.Time) bool {
	yesterday := today.Add(-24 * time.Hour)
	return last.Year() == yesterday.Year() && last.YearDay() == yesterday.YearDay()
}

func dayBounds(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return start, start.Add(24 * time.Hour)
}
