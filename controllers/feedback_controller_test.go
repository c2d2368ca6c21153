package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SeSAC-PrePair/prepair/models"
)

type feedbackPayloadJSON struct {
	SubmissionID uint   `json:"submission_id"`
	QuestionText string `json:"question_text"`
	Score        int    `json:"score"`
	Rubric       struct {
		Clarity     int `json:"clarity"`
		Structure   int `json:"structure"`
		Specificity int `json:"specificity"`
		JobFit      int `json:"job_fit"`
	} `json:"rubric"`
	Strengths    string `json:"strengths"`
	Improvements string `json:"improvements"`
}

func TestFeedbackGet(t *testing.T) {
	db, r := setupTest(t)
	user := createUser(t, db, 100)

	sub := models.Submission{
		UserID:       user.ID,
		QuestionText: "자기소개를 해주세요.",
		Answer:       sampleAnswer,
		Score:        78,
		Clarity:      20,
		Structure:    20,
		Specificity:  20,
		JobFit:       18,
		Strengths:    "답변 분량과 문장 호흡이 적절합니다.",
		CreatedAt:    time.Now(),
	}
	require.NoError(t, db.Create(&sub).Error)

	w, env := doRequest(t, r, http.MethodGet, fmt.Sprintf("/api/evaluation/feedback/%d", sub.ID), user.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var payload feedbackPayloadJSON
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	assert.Equal(t, sub.ID, payload.SubmissionID)
	assert.Equal(t, 78, payload.Score)
	assert.Equal(t, 20, payload.Rubric.Clarity)
	assert.Equal(t, 18, payload.Rubric.JobFit)
	assert.NotEmpty(t, payload.Strengths)
}

func TestFeedbackRegenerateIsDeterministicAndKeepsPoints(t *testing.T) {
	db, r := setupTest(t)
	user := createUser(t, db, 100)

	sub := models.Submission{
		UserID:       user.ID,
		QuestionText: "자기소개를 해주세요.",
		Answer:       sampleAnswer,
		Score:        1, // stale value, regenerate should replace it
		EarnedPoints: 50,
		CreatedAt:    time.Now(),
	}
	require.NoError(t, db.Create(&sub).Error)

	path := fmt.Sprintf("/api/evaluation/feedback/%d", sub.ID)

	w, env := doRequest(t, r, http.MethodPost, path, user.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var first feedbackPayloadJSON
	require.NoError(t, json.Unmarshal(env.Data, &first))
	assert.Greater(t, first.Score, 1)

	w, env = doRequest(t, r, http.MethodPost, path, user.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var second feedbackPayloadJSON
	require.NoError(t, json.Unmarshal(env.Data, &second))
	assert.Equal(t, first.Score, second.Score, "same answer scores the same")
	assert.Equal(t, first.Rubric, second.Rubric)

	var fresh models.Submission
	require.NoError(t, db.First(&fresh, sub.ID).Error)
	assert.Equal(t, first.Score, fresh.Score)
	assert.Equal(t, 50, fresh.EarnedPoints, "regeneration never touches the points ledger")
}

func TestFeedbackOwnershipEnforced(t *testing.T) {
	db, r := setupTest(t)
	owner := createUser(t, db, 100)
	other := &models.User{Name: "이수진", Email: "fb-other@prepair.kr", Channels: models.ChannelEmail, Cadence: models.CadenceDaily}
	require.NoError(t, db.Create(other).Error)

	sub := models.Submission{UserID: owner.ID, Answer: "답변", CreatedAt: time.Now()}
	require.NoError(t, db.Create(&sub).Error)

	w, _ := doRequest(t, r, http.MethodGet, fmt.Sprintf("/api/evaluation/feedback/%d", sub.ID), other.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
