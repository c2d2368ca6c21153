package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Notification channels a user can receive question dispatches on.
const (
	ChannelEmail = "email"
	ChannelKakao = "kakao"
)

// Dispatch cadences.
const (
	CadenceDaily  = "daily"
	CadenceWeekly = "weekly"
)

// User represents a PrePair member. Passwords are stored as bcrypt hashes only.
type User struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	Name             string         `gorm:"size:64;not null" json:"name"`
	Email            string         `gorm:"size:255;index" json:"email"`
	PasswordHash     string         `gorm:"size:255" json:"-"`
	Provider         string         `gorm:"size:32" json:"provider"`
	ProviderID       string         `gorm:"size:255" json:"provider_id"`
	JobTrack         string         `gorm:"size:64" json:"job_track"`
	Position         string         `gorm:"size:64" json:"position"`
	Intro            string         `gorm:"size:255" json:"intro"`
	Channels         string         `gorm:"size:64" json:"channels"`
	Cadence          string         `gorm:"size:16;default:daily" json:"cadence"`
	Points           int            `gorm:"default:0" json:"points"`
	ConsecutiveDays  int            `gorm:"default:0" json:"consecutive_days"`
	LastSubmissionAt *time.Time     `json:"last_submission_at"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}

// ChannelList splits the stored channel string into individual channels.
func (u *User) ChannelList() []string {
	if strings.TrimSpace(u.Channels) == "" {
		return nil
	}
	parts := strings.Split(u.Channels, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// HasChannel reports whether the user subscribed to the given channel.
func (u *User) HasChannel(ch string) bool {
	for _, c := range u.ChannelList() {
		if c == ch {
			return true
		}
	}
	return false
}

// Tier maps accumulated points onto the product's growth labels.
func (u *User) Tier() string {
	switch {
	case u.Points >= 5000:
		return "숲"
	case u.Points >= 2000:
		return "나무"
	case u.Points >= 500:
		return "새싹"
	default:
		return "씨앗"
	}
}
