// Package dispatch owns question selection and delivery: it creates the
// sent-question records and pushes them out over the user's channels.
package dispatch

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/SeSAC-PrePair/prepair/models"
	"github.com/SeSAC-PrePair/prepair/utils"
)

// ErrNoQuestion is returned when the bank has no question left for a track.
var ErrNoQuestion = errors.New("no question available for track")

// NextQuestion picks an unseen question for the user's track, preferring ones
// the user has not been asked yet and wrapping around when exhausted.
func NextQuestion(db *gorm.DB, user *models.User) (*models.Question, error) {
	track := strings.ToLower(strings.TrimSpace(user.JobTrack))
	if track == "" {
		track = "common"
	}

	var askedIDs []uint
	if err := db.Model(&models.Dispatch{}).Where("user_id = ?", user.ID).Pluck("question_id", &askedIDs).Error; err != nil {
		return nil, err
	}

	var q models.Question
	query := db.Where("job_track = ?", track)
	if len(askedIDs) > 0 {
		query = query.Where("id NOT IN ?", askedIDs)
	}
	err := query.Order("difficulty ASC, id ASC").First(&q).Error
	if err == nil {
		return &q, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// Bank exhausted for this user: start over from the easiest question.
	if err := db.Where("job_track = ?", track).Order("difficulty ASC, id ASC").First(&q).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoQuestion
		}
		return nil, err
	}
	return &q, nil
}

// Create opens a new dispatch for the user with the next question and
// delivers it over the subscribed channels (best-effort).
func Create(db *gorm.DB, user *models.User) (*models.Dispatch, error) {
	q, err := NextQuestion(db, user)
	if err != nil {
		return nil, err
	}

	d := models.Dispatch{
		UserID:       user.ID,
		QuestionID:   q.ID,
		QuestionText: q.Content,
		Channels:     user.Channels,
		Cadence:      user.Cadence,
		Status:       models.DispatchSent,
		DispatchedAt: time.Now(),
	}
	if err := db.Create(&d).Error; err != nil {
		return nil, err
	}

	Deliver(&d, user)
	return &d, nil
}

// Deliver pushes the question out over each subscribed channel. Delivery is
// best-effort: the dispatch record exists regardless of channel outcome.
func Deliver(d *models.Dispatch, user *models.User) {
	for _, ch := range user.ChannelList() {
		switch ch {
		case models.ChannelEmail:
			if user.Email == "" {
				continue
			}
			subject := "[PrePair] 오늘의 면접 질문이 도착했어요"
			body := fmt.Sprintf("%s님, 오늘의 질문입니다.\n\n%s\n\n앱에서 답변을 작성하고 피드백을 받아보세요.", user.Name, d.QuestionText)
			if err := utils.SendMail(user.Email, subject, body); err != nil {
				if utils.Sugar != nil {
					utils.Sugar.Warnf("email dispatch failed user=%d dispatch=%d err=%v", user.ID, d.ID, err)
				}
			}
		case models.ChannelKakao:
			// Kakao delivery goes through the messaging partner API; until that
			// contract lands we record the intent only.
			if utils.Sugar != nil {
				utils.Sugar.Infof("kakao dispatch queued user=%d dispatch=%d", user.ID, d.ID)
			}
		}
	}
}

// OpenToday returns the user's dispatch for the current calendar day,
// creating it when absent. Repeated calls on the same day return the same row.
func OpenToday(db *gorm.DB, user *models.User) (*models.Dispatch, error) {
	now := time.Now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var d models.Dispatch
	err := db.Where("user_id = ? AND dispatched_at >= ?", user.ID, todayStart).
		Order("dispatched_at DESC").First(&d).Error
	if err == nil {
		return &d, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return Create(db, user)
}

// StartScheduler launches a background goroutine that periodically dispatches
// due questions by cadence. It is best-effort and logs failures.
func StartScheduler(db *gorm.DB, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	go func() {
		for {
			// Sleep first to avoid racing immediately at startup
			time.Sleep(interval)
			runDuePass(db)
		}
	}()
}

func runDuePass(db *gorm.DB) {
	var users []models.User
	if err := db.Find(&users).Error; err != nil {
		if utils.Sugar != nil {
			utils.Sugar.Warnf("dispatch scheduler user query failed: %v", err)
		}
		return
	}

	now := time.Now()
	for i := range users {
		u := &users[i]
		due, err := isDue(db, u, now)
		if err != nil {
			if utils.Sugar != nil {
				utils.Sugar.Warnf("dispatch due check failed user=%d err=%v", u.ID, err)
			}
			continue
		}
		if !due {
			continue
		}
		if _, err := Create(db, u); err != nil && !errors.Is(err, ErrNoQuestion) {
			if utils.Sugar != nil {
				utils.Sugar.Warnf("scheduled dispatch failed user=%d err=%v", u.ID, err)
			}
		}
	}
}

// isDue reports whether the user's cadence window has no dispatch yet.
func isDue(db *gorm.DB, user *models.User, now time.Time) (bool, error) {
	var windowStart time.Time
	switch user.Cadence {
	case models.CadenceWeekly:
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7 // treat Sunday as end of the Monday-based week
		}
		day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		windowStart = day.AddDate(0, 0, -(weekday - 1))
	default:
		windowStart = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	}

	var count int64
	err := db.Model(&models.Dispatch{}).
		Where("user_id = ? AND dispatched_at >= ?", user.ID, windowStart).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count == 0, nil
}
