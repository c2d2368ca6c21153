package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SeSAC-PrePair/prepair/config"
	"github.com/SeSAC-PrePair/prepair/dispatch"
	"github.com/SeSAC-PrePair/prepair/models"
	"github.com/SeSAC-PrePair/prepair/utils"
)

// InterviewController handles question dispatch and answer submission endpoints.
type InterviewController struct {
	db *gorm.DB
}

// NewInterviewController creates a new controller instance.
func NewInterviewController(db *gorm.DB) *InterviewController {
	return &InterviewController{db: db}
}

// lockForUpdate applies a row lock on dialects that support it. SQLite (used
// in tests) rejects FOR UPDATE, and its single-writer model makes it moot.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// FirstQuestion returns the user's first dispatched question, creating it when
// signup deferred the dispatch (e.g. Kakao channel verification).
func (i *InterviewController) FirstQuestion(ctx *gin.Context) {
	user, ok := loadUser(ctx, i.db)
	if !ok {
		return
	}

	var d models.Dispatch
	err := i.db.Where("user_id = ?", user.ID).Order("dispatched_at ASC").First(&d).Error
	if err == nil {
		utils.Success(ctx, d)
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "질문을 불러오지 못했습니다.")
		return
	}

	created, err := dispatch.Create(i.db, user)
	if err != nil {
		if errors.Is(err, dispatch.ErrNoQuestion) {
			utils.Error(ctx, http.StatusNotFound, 40420, "준비된 질문이 없습니다.")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50021, "질문 발송에 실패했습니다.")
		return
	}
	utils.Success(ctx, created)
}

// Today returns today's dispatched question, creating the dispatch when absent.
// Repeated calls on the same calendar day return the same record.
func (i *InterviewController) Today(ctx *gin.Context) {
	user, ok := loadUser(ctx, i.db)
	if !ok {
		return
	}

	d, err := dispatch.OpenToday(i.db, user)
	if err != nil {
		if errors.Is(err, dispatch.ErrNoQuestion) {
			utils.Error(ctx, http.StatusNotFound, 40420, "준비된 질문이 없습니다.")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50022, "오늘의 질문을 불러오지 못했습니다.")
		return
	}
	utils.Success(ctx, d)
}

// SubmitToday records an answer to the user's open dispatch: it scores the
// answer, freezes the dispatch, awards the first-of-day bonus and streak, and
// opens the next dispatch. Only the first submission of a calendar day earns
// points; later ones score but earn zero.
func (i *InterviewController) SubmitToday(ctx *gin.Context) {
	user, ok := loadUser(ctx, i.db)
	if !ok {
		return
	}

	var req struct {
		Answer string `json:"answer" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "답변을 입력해주세요.")
		return
	}

	answer := utils.Sanitize(strings.TrimSpace(req.Answer))
	if answer == "" {
		utils.Error(ctx, http.StatusBadRequest, 40021, "답변을 입력해주세요.")
		return
	}

	cfg := config.Get()
	ev := EvaluateAnswer(user.JobTrack, answer)

	now := time.Now()
	todayStart, tomorrowStart := dayBounds(now)

	var (
		submission models.Submission
		earned     int
		firstOfDay bool
		streak     int
	)

	err := i.db.Transaction(func(tx *gorm.DB) error {
		var locked models.User
		if err := lockForUpdate(tx).First(&locked, user.ID).Error; err != nil {
			return err
		}

		// Only the most recent dispatch is updatable; an already answered one
		// means a fresh dispatch carries this answer.
		var d models.Dispatch
		err := tx.Where("user_id = ?", locked.ID).Order("dispatched_at DESC").First(&d).Error
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && d.Status == models.DispatchAnswered) {
			created, cerr := dispatch.Create(tx, &locked)
			if cerr != nil {
				return cerr
			}
			d = *created
		} else if err != nil {
			return err
		}

		var todayCount int64
		if err := tx.Model(&models.Submission{}).
			Where("user_id = ? AND created_at >= ? AND created_at < ?", locked.ID, todayStart, tomorrowStart).
			Count(&todayCount).Error; err != nil {
			return err
		}
		firstOfDay = todayCount == 0

		streak = locked.ConsecutiveDays
		if firstOfDay {
			earned = cfg.FirstOfDayBonus
			streak = 1
			if locked.LastSubmissionAt != nil && isYesterday(*locked.LastSubmissionAt, todayStart) {
				streak = locked.ConsecutiveDays + 1
			}
			if streak > 0 && streak%7 == 0 {
				earned += cfg.StreakWeeklyBonus
			}
		}

		submission = models.Submission{
			UserID:       locked.ID,
			DispatchID:   d.ID,
			QuestionText: d.QuestionText,
			Answer:       answer,
			Score:        ev.Score,
			Clarity:      ev.Clarity,
			Structure:    ev.Structure,
			Specificity:  ev.Specificity,
			JobFit:       ev.JobFit,
			Strengths:    ev.Strengths,
			Improvements: ev.Improvements,
			EarnedPoints: earned,
			FirstOfDay:   firstOfDay,
			CreatedAt:    now,
		}
		if err := tx.Create(&submission).Error; err != nil {
			return err
		}

		answeredAt := now
		d.Status = models.DispatchAnswered
		d.AnsweredAt = &answeredAt
		d.Answer = answer
		d.Score = ev.Score
		if err := tx.Save(&d).Error; err != nil {
			return err
		}

		locked.Points += earned
		locked.ConsecutiveDays = streak
		locked.LastSubmissionAt = &submission.CreatedAt
		return tx.Save(&locked).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "답변 저장에 실패했습니다.")
		return
	}

	// Queue the next question right away so the coaching loop continues.
	var next *models.Dispatch
	if d, err := dispatch.Create(i.db, user); err == nil {
		next = d
	} else if !errors.Is(err, dispatch.ErrNoQuestion) {
		utils.Sugar.Warnf("follow-up dispatch failed user=%d err=%v", user.ID, err)
	}

	utils.Success(ctx, gin.H{
		"submission":    submission,
		"earned_points": earned,
		"first_of_day":  firstOfDay,
		"streak":        streak,
		"next_dispatch": next,
	})
}

// Histories returns the paginated submission history, newest first.
func (i *InterviewController) Histories(ctx *gin.Context) {
	user, ok := loadUser(ctx, i.db)
	if !ok {
		return
	}

	page, pageSize := 1, 10
	if v := strings.TrimSpace(ctx.Query("page")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	if v := strings.TrimSpace(ctx.Query("page_size")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			pageSize = n
		}
	}

	var total int64
	if err := i.db.Model(&models.Submission{}).Where("user_id = ?", user.ID).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50024, "기록을 불러오지 못했습니다.")
		return
	}

	var items []models.Submission
	if err := i.db.Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&items).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50025, "기록을 불러오지 못했습니다.")
		return
	}

	utils.Success(ctx, gin.H{
		"items": items,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
		},
	})
}

// HistoryByID returns a single submission owned by the caller.
func (i *InterviewController) HistoryByID(ctx *gin.Context) {
	user, ok := loadUser(ctx, i.db)
	if !ok {
		return
	}

	id := strings.TrimSpace(ctx.Param("id"))
	var item models.Submission
	if err := i.db.Where("user_id = ?", user.ID).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40421, "기록을 찾을 수 없습니다.")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50026, "기록을 불러오지 못했습니다.")
		return
	}
	utils.Success(ctx, item)
}

// Stats returns daily submission counts for the trailing activity window, used
// by clients to rebuild the activity heatmap after login.
func (i *InterviewController) Stats(ctx *gin.Context) {
	user, ok := loadUser(ctx, i.db)
	if !ok {
		return
	}

	days := 119 // 17 weeks
	if v := strings.TrimSpace(ctx.Query("days")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 366 {
			days = n
		}
	}
	since := time.Now().AddDate(0, 0, -days)

	type dayRow struct {
		Day   string `json:"date"`
		Count int    `json:"count"`
	}
	var rows []dayRow
	err := i.db.Model(&models.Submission{}).
		Select("DATE(created_at) AS day, COUNT(*) AS count").
		Where("user_id = ? AND created_at >= ?", user.ID, since).
		Group("DATE(created_at)").
		Order("day ASC").
		Scan(&rows).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50027, "활동 기록을 불러오지 못했습니다.")
		return
	}

	utils.Success(ctx, gin.H{"days": days, "items": rows})
}
