package client

import (
	"encoding/json"
	"strconv"
	"time"
)

// ID is a user or record identifier. The backend serializes IDs as numbers;
// older deployments sent strings, so decoding accepts both.
type ID string

// UnmarshalJSON accepts both "42" and 42.
func (id *ID) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Uint converts the identifier for numeric contexts; zero when non-numeric.
func (id ID) Uint() uint {
	n, err := strconv.ParseUint(string(id), 10, 64)
	if err != nil {
		return 0
	}
	return uint(n)
}

// User mirrors the sanitized profile the backend returns.
type User struct {
	ID               ID         `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	Provider         string     `json:"provider"`
	JobTrack         string     `json:"job_track"`
	Position         string     `json:"position"`
	Intro            string     `json:"intro"`
	Channels         []string   `json:"channels"`
	Cadence          string     `json:"cadence"`
	Points           int        `json:"points"`
	ConsecutiveDays  int        `json:"consecutive_days"`
	Tier             string     `json:"tier"`
	LastSubmissionAt *time.Time `json:"last_submission_at"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Dispatch is one sent interview question.
type Dispatch struct {
	ID           ID         `json:"id"`
	UserID       ID         `json:"user_id"`
	QuestionID   ID         `json:"question_id"`
	QuestionText string     `json:"question_text"`
	Channels     string     `json:"channels"`
	Cadence      string     `json:"cadence"`
	Status       string     `json:"status"`
	DispatchedAt time.Time  `json:"dispatched_at"`
	AnsweredAt   *time.Time `json:"answered_at"`
	Answer       string     `json:"answer"`
	Score        int        `json:"score"`
}

// Submission is one scored answer from the history.
type Submission struct {
	ID           ID        `json:"id"`
	DispatchID   ID        `json:"dispatch_id"`
	QuestionText string    `json:"question_text"`
	Answer       string    `json:"answer"`
	Score        int       `json:"score"`
	Clarity      int       `json:"clarity"`
	Structure    int       `json:"structure"`
	Specificity  int       `json:"specificity"`
	JobFit       int       `json:"job_fit"`
	Strengths    string    `json:"strengths"`
	Improvements string    `json:"improvements"`
	EarnedPoints int       `json:"earned_points"`
	FirstOfDay   bool      `json:"first_of_day"`
	CreatedAt    time.Time `json:"created_at"`
}

// SubmitResult is the outcome of answering today's question.
type SubmitResult struct {
	Submission   Submission `json:"submission"`
	EarnedPoints int        `json:"earned_points"`
	FirstOfDay   bool       `json:"first_of_day"`
	Streak       int        `json:"streak"`
	NextDispatch *Dispatch  `json:"next_dispatch"`
}

// Pagination describes a paged listing.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// HistoryPage is one page of the submission history, newest first.
type HistoryPage struct {
	Items      []Submission `json:"items"`
	Pagination Pagination   `json:"pagination"`
}

// DayCount is one day's submission count, for the activity heatmap.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// StatsResult is the trailing activity window.
type StatsResult struct {
	Days  int        `json:"days"`
	Items []DayCount `json:"items"`
}

// Rubric is the per-axis score breakdown.
type Rubric struct {
	Clarity     int `json:"clarity"`
	Structure   int `json:"structure"`
	Specificity int `json:"specificity"`
	JobFit      int `json:"job_fit"`
}

// Feedback is the scored feedback for one submission.
type Feedback struct {
	SubmissionID ID        `json:"submission_id"`
	QuestionText string    `json:"question_text"`
	Score        int       `json:"score"`
	Rubric       Rubric    `json:"rubric"`
	Strengths    string    `json:"strengths"`
	Improvements string    `json:"improvements"`
	CreatedAt    time.Time `json:"created_at"`
}

// Reward is one redeemable catalog item.
type Reward struct {
	ID     ID     `json:"id"`
	Name   string `json:"name"`
	Vendor string `json:"vendor"`
	Cost   int    `json:"cost"`
}

// Purchase is one past redemption with its usage credentials.
type Purchase struct {
	ID         ID        `json:"id"`
	RewardID   ID        `json:"reward_id"`
	RewardName string    `json:"reward_name"`
	Cost       int       `json:"cost"`
	OrderNo    string    `json:"order_no"`
	Barcode    string    `json:"barcode"`
	PIN        string    `json:"pin"`
	Status     string    `json:"status"`
	ExpiresAt  time.Time `json:"expires_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// RewardsPage is the balance plus catalog plus past purchases.
type RewardsPage struct {
	Points    int        `json:"points"`
	Tier      string     `json:"tier"`
	Rewards   []Reward   `json:"rewards"`
	Purchases []Purchase `json:"purchases"`
}

// RedeemResult is the outcome of a redemption. RemainingPoints is nil when
// the response omits the reconciled balance.
type RedeemResult struct {
	Purchase        Purchase `json:"purchase"`
	RemainingPoints *int     `json:"remaining_points"`
}
