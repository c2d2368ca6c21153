package models

import "time"

// Submission is one answered interview question with its scored feedback.
// Rows are append-only; they are removed only when the account is deleted.
type Submission struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"index;not null" json:"user_id"`
	DispatchID   uint      `gorm:"index" json:"dispatch_id"`
	QuestionText string    `gorm:"size:1024" json:"question_text"`
	Answer       string    `gorm:"type:text" json:"answer"`
	Score        int       `json:"score"`
	Clarity      int       `json:"clarity"`
	Structure    int       `json:"structure"`
	Specificity  int       `json:"specificity"`
	JobFit       int       `json:"job_fit"`
	Strengths    string    `gorm:"type:text" json:"strengths"`
	Improvements string    `gorm:"type:text" json:"improvements"`
	EarnedPoints int       `json:"earned_points"`
	FirstOfDay   bool      `json:"first_of_day"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
}
