package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SeSAC-PrePair/prepair/client"
)

// mockBackend is a scriptable Backend for store tests.
type mockBackend struct {
	userID string

	signInResult client.SignInResult
	signInErr    error
	signupResult client.SignupResult
	signupErr    error
	deleteErr    error

	today    client.Dispatch
	todayErr error

	submitResult client.SubmitResult
	submitErr    error
	submitCalls  int

	stats    client.StatsResult
	statsErr error

	rewardsPage client.RewardsPage
	rewardsErr  error

	redeemResult client.RedeemResult
	redeemErr    error
	redeemCalls  int
}

func (m *mockBackend) SetUserID(id string) { m.userID = id }
func (m *mockBackend) ClearUserID()        { m.userID = "" }

func (m *mockBackend) SignIn(ctx context.Context, email, password string) (client.SignInResult, error) {
	return m.signInResult, m.signInErr
}

func (m *mockBackend) Signup(ctx context.Context, req client.SignupRequest) (client.SignupResult, error) {
	return m.signupResult, m.signupErr
}

func (m *mockBackend) DeleteAccount(ctx context.Context, password string) error {
	return m.deleteErr
}

func (m *mockBackend) TodayQuestion(ctx context.Context) (client.Dispatch, error) {
	return m.today, m.todayErr
}

func (m *mockBackend) SubmitAnswer(ctx context.Context, answer string) (client.SubmitResult, error) {
	m.submitCalls++
	return m.submitResult, m.submitErr
}

func (m *mockBackend) Stats(ctx context.Context) (client.StatsResult, error) {
	return m.stats, m.statsErr
}

func (m *mockBackend) Rewards(ctx context.Context) (client.RewardsPage, error) {
	return m.rewardsPage, m.rewardsErr
}

func (m *mockBackend) Redeem(ctx context.Context, rewardID client.ID) (client.RedeemResult, error) {
	m.redeemCalls++
	return m.redeemResult, m.redeemErr
}

func newLoggedInStore(t *testing.T, points int) (*Store, *mockBackend) {
	t.Helper()
	backend := &mockBackend{
		signInResult: client.SignInResult{
			UserID: "u1",
			User:   client.User{ID: "u1", Name: "김지원", Points: points},
		},
		today:    client.Dispatch{ID: "d1", QuestionText: "자기소개를 해주세요.", Status: "sent"},
		statsErr: errors.New("stats unavailable"),
	}
	store := NewStore(backend)
	require.NoError(t, store.Login(context.Background(), "test@prepair.kr", "secret"))
	return store, backend
}

func TestLoginPopulatesSession(t *testing.T) {
	store, backend := newLoggedInStore(t, 100)

	require.True(t, store.IsAuthenticated())
	user := store.User()
	require.NotNil(t, user)
	assert.Equal(t, "u1", user.ID.String())
	assert.Equal(t, "u1", backend.userID)

	dispatches := store.Dispatches()
	require.Len(t, dispatches, 1)
	assert.Equal(t, "d1", dispatches[0].ID.String())
	assert.Equal(t, "sent", dispatches[0].Status)
}

func TestLoginFailureLeavesAnonymous(t *testing.T) {
	backend := &mockBackend{signInErr: &client.APIError{Kind: client.KindAuth, HTTPStatus: 401}}
	store := NewStore(backend)

	err := store.Login(context.Background(), "x@y.z", "wrong")
	require.Error(t, err)
	assert.False(t, store.IsAuthenticated())
	assert.Nil(t, store.User())
}

func TestSignupPopulatesSession(t *testing.T) {
	first := client.Dispatch{ID: "d1", QuestionText: "자기소개를 해주세요.", Status: "sent"}
	backend := &mockBackend{
		signupResult: client.SignupResult{
			UserID:        "u7",
			User:          client.User{ID: "u7", Name: "신입", Points: 100},
			FirstDispatch: &first,
		},
	}
	store := NewStore(backend)

	err := store.Signup(context.Background(), client.SignupRequest{
		Name: "신입", Email: "new@prepair.kr", Password: "pass1234", Code: "482913",
		Channels: []string{"email"},
	})
	require.NoError(t, err)

	require.True(t, store.IsAuthenticated())
	assert.Equal(t, "u7", backend.userID)
	assert.Equal(t, 100, store.Points())

	dispatches := store.Dispatches()
	require.Len(t, dispatches, 1)
	assert.Equal(t, "d1", dispatches[0].ID.String())
}

func TestSignupWithoutFirstDispatch(t *testing.T) {
	// Kakao-channel signups get no question until the channel is verified.
	backend := &mockBackend{
		signupResult: client.SignupResult{
			UserID: "u8",
			User:   client.User{ID: "u8", Name: "카카오", Points: 100},
		},
	}
	store := NewStore(backend)

	err := store.Signup(context.Background(), client.SignupRequest{
		Name: "카카오", Email: "kakao@prepair.kr", Password: "pass1234", Code: "482913",
		Channels: []string{"email", "kakao"},
	})
	require.NoError(t, err)

	assert.True(t, store.IsAuthenticated())
	assert.Empty(t, store.Dispatches())
}

func TestSignupFailureLeavesAnonymous(t *testing.T) {
	backend := &mockBackend{signupErr: &client.APIError{Kind: client.KindValidation, HTTPStatus: 400}}
	store := NewStore(backend)

	err := store.Signup(context.Background(), client.SignupRequest{Email: "dup@prepair.kr"})
	require.Error(t, err)
	assert.False(t, store.IsAuthenticated())
	assert.Empty(t, backend.userID)
}

func TestRefreshRewardsUpdatesBalanceAndLedger(t *testing.T) {
	store, backend := newLoggedInStore(t, 100)
	backend.rewardsPage = client.RewardsPage{
		Points: 730,
		Tier:   "새싹",
		Rewards: []client.Reward{
			{ID: "1", Name: "아메리카노 기프티콘", Cost: 500},
		},
		Purchases: []client.Purchase{
			{ID: "p1", RewardName: "아메리카노 기프티콘", Status: "ready"},
		},
	}

	rewards := store.RefreshRewards(context.Background())
	require.Len(t, rewards, 1)
	assert.Equal(t, 730, store.Points())
	assert.Equal(t, "새싹", store.User().Tier)
	require.Len(t, store.Purchases(), 1)
	assert.Equal(t, "p1", store.Purchases()[0].ID.String())
}

func TestRefreshRewardsFailureIsSwallowed(t *testing.T) {
	store, backend := newLoggedInStore(t, 100)
	backend.rewardsErr = &client.APIError{Kind: client.KindNetwork}

	rewards := store.RefreshRewards(context.Background())
	assert.Nil(t, rewards)
	assert.Equal(t, 100, store.Points(), "failed refresh leaves the balance alone")
	assert.Empty(t, store.Purchases())
}

func TestRecordInterviewResultFirstOfDayOnly(t *testing.T) {
	store, backend := newLoggedInStore(t, 100)
	backend.submitResult = client.SubmitResult{
		Submission:   client.Submission{ID: "s1", Score: 80, Answer: "첫 번째 답변"},
		EarnedPoints: 50,
		FirstOfDay:   true,
		Streak:       1,
	}

	first, err := store.RecordInterviewResult(context.Background(), "첫 번째 답변")
	require.NoError(t, err)
	assert.True(t, first.FirstOfDay)
	assert.Equal(t, 50, first.EarnedPoints)
	assert.Equal(t, 150, store.Points())

	// A second submission the same day scores but earns nothing, whatever
	// the response claims.
	backend.submitResult.Submission = client.Submission{ID: "s2", Score: 90, Answer: "두 번째 답변"}
	second, err := store.RecordInterviewResult(context.Background(), "두 번째 답변")
	require.NoError(t, err)
	assert.False(t, second.FirstOfDay)
	assert.Equal(t, 0, second.EarnedPoints)
	assert.Equal(t, 150, store.Points())

	history := store.History()
	require.Len(t, history, 2)
	assert.Equal(t, "s2", history[0].ID.String(), "history is newest first")
	assert.Equal(t, "s1", history[1].ID.String())
}

func TestRecordInterviewResultUpdatesNewestDispatch(t *testing.T) {
	store, backend := newLoggedInStore(t, 100)
	next := client.Dispatch{ID: "d2", QuestionText: "다음 질문", Status: "sent"}
	backend.submitResult = client.SubmitResult{
		Submission:   client.Submission{ID: "s1", Score: 72, Answer: "답변"},
		EarnedPoints: 50,
		FirstOfDay:   true,
		Streak:       3,
		NextDispatch: &next,
	}

	_, err := store.RecordInterviewResult(context.Background(), "답변")
	require.NoError(t, err)

	dispatches := store.Dispatches()
	require.Len(t, dispatches, 2)
	assert.Equal(t, "d2", dispatches[0].ID.String(), "next question becomes the newest record")
	assert.Equal(t, "sent", dispatches[0].Status)
	assert.Equal(t, "answered", dispatches[1].Status)
	assert.Equal(t, 72, dispatches[1].Score)

	user := store.User()
	assert.Equal(t, 3, user.ConsecutiveDays)
}

func TestRecordInterviewResultFailurePreservesState(t *testing.T) {
	store, backend := newLoggedInStore(t, 100)
	backend.submitErr = &client.APIError{Kind: client.KindServer, HTTPStatus: 500}

	_, err := store.RecordInterviewResult(context.Background(), "답변")
	require.Error(t, err)
	assert.Empty(t, store.History())
	assert.Equal(t, 100, store.Points())
	assert.Equal(t, 0, store.HeatmapLevel(time.Now()))
}

func TestRedeemRewardInsufficientPoints(t *testing.T) {
	store, backend := newLoggedInStore(t, 100)

	_, err := store.RedeemReward(context.Background(), "1", 500)
	require.ErrorIs(t, err, ErrInsufficientPoints)
	assert.Equal(t, "포인트가 부족합니다.", err.Error())

	assert.Equal(t, 100, store.Points(), "balance untouched")
	assert.Empty(t, store.Purchases(), "ledger untouched")
	assert.Zero(t, backend.redeemCalls, "rejected before any network call")
}

func TestRedeemRewardReconcilesBalance(t *testing.T) {
	remaining := 480
	store, backend := newLoggedInStore(t, 1000)
	backend.redeemResult = client.RedeemResult{
		Purchase:        client.Purchase{ID: "p1", RewardName: "아메리카노 기프티콘", Cost: 500, Status: "ready"},
		RemainingPoints: &remaining,
	}

	purchase, err := store.RedeemReward(context.Background(), "1", 500)
	require.NoError(t, err)
	assert.Equal(t, "p1", purchase.ID.String())
	assert.Equal(t, 480, store.Points(), "server-reported remainder wins")

	purchases := store.Purchases()
	require.Len(t, purchases, 1)
	assert.Equal(t, "아메리카노 기프티콘", purchases[0].RewardName)
}

func TestRedeemRewardFallsBackToLocalSubtraction(t *testing.T) {
	store, backend := newLoggedInStore(t, 1000)
	backend.redeemResult = client.RedeemResult{
		Purchase: client.Purchase{ID: "p1", Cost: 500},
	}

	_, err := store.RedeemReward(context.Background(), "1", 500)
	require.NoError(t, err)
	assert.Equal(t, 500, store.Points())
}

func TestRedeemRewardServerFailurePreservesState(t *testing.T) {
	store, backend := newLoggedInStore(t, 1000)
	backend.redeemErr = &client.APIError{Kind: client.KindServer, HTTPStatus: 500}

	_, err := store.RedeemReward(context.Background(), "1", 500)
	require.Error(t, err)
	assert.Equal(t, 1000, store.Points())
	assert.Empty(t, store.Purchases())
}

func TestDeductPoints(t *testing.T) {
	store, _ := newLoggedInStore(t, 100)

	require.NoError(t, store.DeductPoints(30))
	assert.Equal(t, 70, store.Points())

	err := store.DeductPoints(500)
	require.ErrorIs(t, err, ErrInsufficientPoints)
	assert.Equal(t, 70, store.Points())
}

func TestUpdateUserPoints(t *testing.T) {
	store, _ := newLoggedInStore(t, 100)
	store.UpdateUserPoints(999)
	assert.Equal(t, 999, store.Points())
}

func TestLogoutResetsEverything(t *testing.T) {
	store, backend := newLoggedInStore(t, 100)
	backend.submitResult = client.SubmitResult{
		Submission:   client.Submission{ID: "s1", Score: 80},
		EarnedPoints: 50,
		FirstOfDay:   true,
	}
	_, err := store.RecordInterviewResult(context.Background(), "답변")
	require.NoError(t, err)

	store.Logout()

	assert.False(t, store.IsAuthenticated())
	assert.Nil(t, store.User())
	assert.Empty(t, store.History())
	assert.Empty(t, store.Dispatches())
	assert.Empty(t, store.Purchases())
	assert.Equal(t, 0, store.Points())
	assert.Equal(t, 0, store.HeatmapLevel(time.Now()))
	assert.Empty(t, backend.userID, "identity header cleared")
}

func TestDeleteAccountResetsEverything(t *testing.T) {
	store, backend := newLoggedInStore(t, 100)

	require.NoError(t, store.DeleteAccount(context.Background(), "secret"))
	assert.False(t, store.IsAuthenticated())
	assert.Empty(t, backend.userID)

	// deleting again is an error: nobody is signed in
	err := store.DeleteAccount(context.Background(), "secret")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestDeleteAccountFailureKeepsSession(t *testing.T) {
	store, backend := newLoggedInStore(t, 100)
	backend.deleteErr = &client.APIError{Kind: client.KindAuth, HTTPStatus: 401}

	err := store.DeleteAccount(context.Background(), "wrong")
	require.Error(t, err)
	assert.True(t, store.IsAuthenticated())
}

func TestAnonymousActionsRejected(t *testing.T) {
	store := NewStore(&mockBackend{})

	_, err := store.RecordInterviewResult(context.Background(), "답변")
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = store.RedeemReward(context.Background(), "1", 100)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	assert.ErrorIs(t, store.DeductPoints(10), ErrNotAuthenticated)
}

func TestHeatmapRebuiltFromStats(t *testing.T) {
	today := time.Now().Format("2006-01-02")
	backend := &mockBackend{
		signInResult: client.SignInResult{
			UserID: "u1",
			User:   client.User{ID: "u1", Points: 100},
		},
		today: client.Dispatch{ID: "d1", Status: "sent"},
		stats: client.StatsResult{
			Days:  119,
			Items: []client.DayCount{{Date: today, Count: 2}},
		},
	}
	store := NewStore(backend)
	require.NoError(t, store.Login(context.Background(), "a@b.c", "pw"))

	assert.Equal(t, 2, store.HeatmapLevel(time.Now()))

	// the rebuilt index knows today already has a submission
	backend.submitResult = client.SubmitResult{
		Submission:   client.Submission{ID: "s9", Score: 70},
		EarnedPoints: 50,
		FirstOfDay:   true,
	}
	result, err := store.RecordInterviewResult(context.Background(), "답변")
	require.NoError(t, err)
	assert.False(t, result.FirstOfDay)
	assert.Equal(t, 0, result.EarnedPoints)
}
