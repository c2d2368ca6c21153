package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/SeSAC-PrePair/prepair/models"
	"github.com/SeSAC-PrePair/prepair/utils"
)

// FeedbackController serves the rubric feedback attached to a submission.
type FeedbackController struct {
	db *gorm.DB
}

// NewFeedbackController creates a new controller instance.
func NewFeedbackController(db *gorm.DB) *FeedbackController {
	return &FeedbackController{db: db}
}

func (f *FeedbackController) loadSubmission(ctx *gin.Context, userID uint) (*models.Submission, bool) {
	id := strings.TrimSpace(ctx.Param("id"))
	var sub models.Submission
	if err := f.db.Where("user_id = ?", userID).First(&sub, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40430, "기록을 찾을 수 없습니다.")
			return nil, false
		}
		utils.Error(ctx, http.StatusInternalServerError, 50030, "피드백을 불러오지 못했습니다.")
		return nil, false
	}
	return &sub, true
}

// Get returns the stored rubric breakdown for one submission.
func (f *FeedbackController) Get(ctx *gin.Context) {
	user, ok := loadUser(ctx, f.db)
	if !ok {
		return
	}
	sub, ok := f.loadSubmission(ctx, user.ID)
	if !ok {
		return
	}
	utils.Success(ctx, feedbackPayload(sub))
}

// Regenerate re-runs the rubric against the stored answer and persists the
// refreshed breakdown. Earned points are never touched: scoring is advisory,
// the points ledger is settled at submission time.
func (f *FeedbackController) Regenerate(ctx *gin.Context) {
	user, ok := loadUser(ctx, f.db)
	if !ok {
		return
	}
	sub, ok := f.loadSubmission(ctx, user.ID)
	if !ok {
		return
	}

	ev := EvaluateAnswer(user.JobTrack, sub.Answer)
	updates := map[string]any{
		"score":        ev.Score,
		"clarity":      ev.Clarity,
		"structure":    ev.Structure,
		"specificity":  ev.Specificity,
		"job_fit":      ev.JobFit,
		"strengths":    ev.Strengths,
		"improvements": ev.Improvements,
	}
	if err := f.db.Model(sub).Updates(updates).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50033, "피드백 재생성에 실패했습니다.")
		return
	}

	sub.Score = ev.Score
	sub.Clarity = ev.Clarity
	sub.Structure = ev.Structure
	sub.Specificity = ev.Specificity
	sub.JobFit = ev.JobFit
	sub.Strengths = ev.Strengths
	sub.Improvements = ev.Improvements
	utils.Success(ctx, feedbackPayload(sub))
}

func feedbackPayload(sub *models.Submission) gin.H {
	return gin.H{
		"submission_id": sub.ID,
		"question_text": sub.QuestionText,
		"score":         sub.Score,
		"rubric": gin.H{
			"clarity":     sub.Clarity,
			"structure":   sub.Structure,
			"specificity": sub.Specificity,
			"job_fit":     sub.JobFit,
		},
		"strengths":    sub.Strengths,
		"improvements": sub.Improvements,
		"created_at":   sub.CreatedAt,
	}
}
