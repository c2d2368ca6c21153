// Package session holds the process-wide application state: the authenticated
// user, score history, sent-question records, purchase ledger, and activity
// heatmap. All mutation goes through Store action methods; there is no ambient
// global. A mutex serializes actions, which also closes the concurrent
// redemption race the points balance would otherwise have.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/SeSAC-PrePair/prepair/client"
)

// ErrInsufficientPoints is returned when a redemption exceeds the balance.
// The message is shown to the user as-is.
var ErrInsufficientPoints = errors.New("포인트가 부족합니다.")

// ErrNotAuthenticated is returned when an action needs a signed-in user.
var ErrNotAuthenticated = errors.New("로그인이 필요합니다.")

// Backend is the slice of the API client the store depends on. *client.Client
// satisfies it; tests substitute a mock.
type Backend interface {
	SetUserID(id string)
	ClearUserID()

	SignIn(ctx context.Context, email, password string) (client.SignInResult, error)
	Signup(ctx context.Context, req client.SignupRequest) (client.SignupResult, error)
	DeleteAccount(ctx context.Context, password string) error

	TodayQuestion(ctx context.Context) (client.Dispatch, error)
	SubmitAnswer(ctx context.Context, answer string) (client.SubmitResult, error)
	Stats(ctx context.Context) (client.StatsResult, error)

	Rewards(ctx context.Context) (client.RewardsPage, error)
	Redeem(ctx context.Context, rewardID client.ID) (client.RedeemResult, error)
}

// Store is the single application-state container. All fields are
// session-scoped: they reset on logout and account deletion.
type Store struct {
	mu      sync.Mutex
	backend Backend

	user       *client.User
	history    []client.Submission // newest first
	dispatches []client.Dispatch   // newest first; only the newest is updatable
	purchases  []client.Purchase   // newest first
	heatmap    *Heatmap

	// submittedDays is the date-bucketed first-of-day index: one key per
	// calendar day with at least one submission, checked in O(1).
	submittedDays map[string]bool
}

// NewStore creates an anonymous store over the given backend.
func NewStore(backend Backend) *Store {
	return &Store{
		backend:       backend,
		heatmap:       NewHeatmap(),
		submittedDays: map[string]bool{},
	}
}

// resetLocked clears every session-scoped field. Callers hold the mutex.
func (s *Store) resetLocked() {
	s.user = nil
	s.history = nil
	s.dispatches = nil
	s.purchases = nil
	s.heatmap.Reset()
	s.submittedDays = map[string]bool{}
	s.backend.ClearUserID()
}

// Login authenticates and replaces the session state in one step: profile,
// today's question record, and the heatmap rebuilt from server stats.
func (s *Store) Login(ctx context.Context, email, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.backend.SignIn(ctx, email, password)
	if err != nil {
		return err
	}

	s.resetLocked()
	s.backend.SetUserID(result.UserID.String())
	user := result.User
	if user.ID == "" {
		user.ID = result.UserID
	}
	s.user = &user

	if d, err := s.backend.TodayQuestion(ctx); err == nil {
		s.dispatches = []client.Dispatch{d}
	}
	s.rebuildHeatmapLocked(ctx)
	return nil
}

// Signup registers and enters the authenticated state. The first question
// record is present unless dispatch waits on channel verification.
func (s *Store) Signup(ctx context.Context, req client.SignupRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.backend.Signup(ctx, req)
	if err != nil {
		return err
	}

	s.resetLocked()
	s.backend.SetUserID(result.UserID.String())
	user := result.User
	if user.ID == "" {
		user.ID = result.UserID
	}
	s.user = &user

	if result.FirstDispatch != nil {
		s.dispatches = []client.Dispatch{*result.FirstDispatch}
	}
	return nil
}

// Logout drops the session. Purely local: there is no server-side session.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

// DeleteAccount removes the account server-side and resets the session.
func (s *Store) DeleteAccount(ctx context.Context, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return ErrNotAuthenticated
	}
	if err := s.backend.DeleteAccount(ctx, password); err != nil {
		return err
	}
	s.resetLocked()
	return nil
}

// InterviewResult is what RecordInterviewResult reports back to the caller.
type InterviewResult struct {
	Submission   client.Submission
	EarnedPoints int
	FirstOfDay   bool
	Streak       int
}

// RecordInterviewResult submits an answer and folds the scored result into
// the session: history (newest first), the newest sent-question record
// updated in place, heatmap, first-of-day index, and the point balance.
// Points are only ever earned on the first submission of a calendar day.
func (s *Store) RecordInterviewResult(ctx context.Context, answer string) (InterviewResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return InterviewResult{}, ErrNotAuthenticated
	}

	result, err := s.backend.SubmitAnswer(ctx, answer)
	if err != nil {
		return InterviewResult{}, err
	}

	now := time.Now()
	dayKey := now.Format(dateLayout)
	firstOfDay := !s.submittedDays[dayKey]

	earned := result.EarnedPoints
	if !firstOfDay {
		// The local index is authoritative for the session: repeat submissions
		// on the same day never earn, whatever the response claims.
		earned = 0
	}

	s.submittedDays[dayKey] = true
	s.heatmap.Record(now)

	sub := result.Submission
	s.history = append([]client.Submission{sub}, s.history...)

	// Only the newest dispatch record is updatable.
	if len(s.dispatches) > 0 {
		d := &s.dispatches[0]
		d.Status = "answered"
		d.Answer = sub.Answer
		d.Score = sub.Score
		answeredAt := now
		d.AnsweredAt = &answeredAt
	}
	if result.NextDispatch != nil {
		s.dispatches = append([]client.Dispatch{*result.NextDispatch}, s.dispatches...)
	}

	s.user.Points += earned
	if result.Streak > 0 {
		s.user.ConsecutiveDays = result.Streak
	}

	return InterviewResult{
		Submission:   sub,
		EarnedPoints: earned,
		FirstOfDay:   firstOfDay,
		Streak:       result.Streak,
	}, nil
}

// RedeemReward exchanges points for a reward. The balance is checked locally
// before any network call; an insufficient balance never mutates state. On
// success the balance reconciles to the server-reported remainder, falling
// back to a local subtraction when the response omits it.
func (s *Store) RedeemReward(ctx context.Context, rewardID client.ID, cost int) (client.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return client.Purchase{}, ErrNotAuthenticated
	}
	if s.user.Points < cost {
		return client.Purchase{}, ErrInsufficientPoints
	}

	result, err := s.backend.Redeem(ctx, rewardID)
	if err != nil {
		return client.Purchase{}, err
	}

	if result.RemainingPoints != nil {
		s.user.Points = *result.RemainingPoints
	} else {
		s.user.Points -= cost
	}
	s.purchases = append([]client.Purchase{result.Purchase}, s.purchases...)
	return result.Purchase, nil
}

// RefreshRewards pulls the balance, catalog, and purchase ledger. Non-critical:
// failures leave the current state untouched and return the catalog as nil.
func (s *Store) RefreshRewards(ctx context.Context) []client.Reward {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return nil
	}
	page, err := s.backend.Rewards(ctx)
	if err != nil {
		return nil
	}
	s.user.Points = page.Points
	if page.Tier != "" {
		s.user.Tier = page.Tier
	}
	s.purchases = page.Purchases
	return page.Rewards
}

// DeductPoints lowers the balance locally, e.g. for optimistic UI updates.
func (s *Store) DeductPoints(cost int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return ErrNotAuthenticated
	}
	if s.user.Points < cost {
		return ErrInsufficientPoints
	}
	s.user.Points -= cost
	return nil
}

// UpdateUserPoints overwrites the balance with a server-reported value.
func (s *Store) UpdateUserPoints(points int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user != nil {
		s.user.Points = points
	}
}

// rebuildHeatmapLocked restores the activity grid from server stats.
// Non-critical: on failure the heatmap simply starts empty.
func (s *Store) rebuildHeatmapLocked(ctx context.Context) {
	stats, err := s.backend.Stats(ctx)
	if err != nil {
		return
	}
	today := time.Now().Format(dateLayout)
	for _, day := range stats.Items {
		s.heatmap.SetCount(day.Date, day.Count)
		if day.Date == today && day.Count > 0 {
			s.submittedDays[today] = true
		}
	}
}

// IsAuthenticated reports whether a user is signed in.
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil
}

// User returns a copy of the signed-in profile, or nil when anonymous.
func (s *Store) User() *client.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Points returns the current balance; zero when anonymous.
func (s *Store) Points() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return 0
	}
	return s.user.Points
}

// History returns the score history, newest first.
func (s *Store) History() []client.Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]client.Submission(nil), s.history...)
}

// Dispatches returns the sent-question records, newest first.
func (s *Store) Dispatches() []client.Dispatch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]client.Dispatch(nil), s.dispatches...)
}

// Purchases returns the purchase ledger, newest first.
func (s *Store) Purchases() []client.Purchase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]client.Purchase(nil), s.purchases...)
}

// HeatmapCells renders the activity grid for display.
func (s *Store) HeatmapCells() [][]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.heatmap.Cells(time.Now())
}

// HeatmapLevel returns the display level for one day.
func (s *Store) HeatmapLevel(t time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.heatmap.Level(t)
}
