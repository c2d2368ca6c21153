package models

import "time"

// Question is one interview question from the seeded bank.
type Question struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	JobTrack   string    `gorm:"size:64;index" json:"job_track"`
	Difficulty int       `gorm:"default:1" json:"difficulty"`
	Content    string    `gorm:"size:1024;not null" json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}
