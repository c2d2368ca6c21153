package models

import "time"

// Dispatch statuses.
const (
	DispatchSent     = "sent"
	DispatchAnswered = "answered"
)

// Dispatch records one question sent to a user with its delivery metadata.
// Only the most recent dispatch of a user is updatable: once the answer is
// recorded the row is frozen and the next dispatch becomes the open one.
type Dispatch struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uint       `gorm:"index;not null" json:"user_id"`
	QuestionID   uint       `gorm:"index" json:"question_id"`
	QuestionText string     `gorm:"size:1024" json:"question_text"`
	Channels     string     `gorm:"size:64" json:"channels"`
	Cadence      string     `gorm:"size:16" json:"cadence"`
	Status       string     `gorm:"size:16;default:sent;index" json:"status"`
	DispatchedAt time.Time  `gorm:"index" json:"dispatched_at"`
	AnsweredAt   *time.Time `json:"answered_at"`
	Answer       string     `gorm:"type:text" json:"answer"`
	Score        int        `json:"score"`
	CreatedAt    time.Time  `json:"created_at"`
}
