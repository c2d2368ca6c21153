package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvelope(w http.ResponseWriter, status, code int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"code":    code,
		"message": message,
		"data":    data,
	})
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		kind   Kind
	}{
		{"validation", 400, KindValidation},
		{"auth", 401, KindAuth},
		{"forbidden", 403, KindForbidden},
		{"notfound", 404, KindNotFound},
		{"method", 405, KindMethod},
		{"ratelimit", 429, KindServer},
		{"server", 500, KindServer},
		{"badgateway", 502, KindServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeEnvelope(w, tt.status, tt.status*100, "", nil)
			}))
			defer ts.Close()

			c := New(ts.URL)
			_, err := c.Me(context.Background())
			require.Error(t, err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.kind, apiErr.Kind)
			assert.Equal(t, tt.status, apiErr.HTTPStatus)
			assert.NotEmpty(t, apiErr.Message, "every failure carries a user-facing message")
		})
	}
}

func TestServerMessagePreferred(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, 400, 40051, "포인트가 부족합니다.", nil)
	}))
	defer ts.Close()

	c := New(ts.URL)
	_, err := c.Redeem(context.Background(), "1")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindValidation, apiErr.Kind)
	assert.Equal(t, 40051, apiErr.Code)
	assert.Equal(t, "포인트가 부족합니다.", apiErr.Message)
}

func TestNonJSONErrorBodyTolerated(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>Bad Gateway</html>"))
	}))
	defer ts.Close()

	c := New(ts.URL)
	_, err := c.Me(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindServer, apiErr.Kind)
	assert.True(t, apiErr.IsServerError())
	assert.False(t, apiErr.IsNetworkError())
}

func TestEmptySuccessBodyTolerated(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	c := New(ts.URL)
	err := c.RequestEmailCode(context.Background(), "a@b.c")
	assert.NoError(t, err)
}

func TestNetworkFailureClassified(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // nothing is listening anymore

	c := New(ts.URL)
	_, err := c.Me(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindNetwork, apiErr.Kind)
	assert.True(t, apiErr.IsNetworkError())
	assert.Equal(t, "네트워크 연결을 확인해주세요.", apiErr.Message)
}

func TestUserIDHeaderAttached(t *testing.T) {
	var gotHeader string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get(UserIDHeader)
		writeEnvelope(w, 200, 0, "success", map[string]any{"id": 7})
	}))
	defer ts.Close()

	c := New(ts.URL)
	_, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotHeader, "anonymous calls carry no identity")

	c.SetUserID("7")
	_, err = c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "7", gotHeader)

	c.ClearUserID()
	_, err = c.Me(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotHeader)
}

func TestSignInParsesNumericAndStringIDs(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"numeric", `{"user_id": 42, "user": {"id": 42, "name": "김지원", "points": 100}}`},
		{"string", `{"user_id": "42", "user": {"id": "42", "name": "김지원", "points": 100}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"code":0,"message":"success","data":` + tt.data + `}`))
			}))
			defer ts.Close()

			c := New(ts.URL)
			result, err := c.SignIn(context.Background(), "a@b.c", "pw")
			require.NoError(t, err)
			assert.Equal(t, "42", result.UserID.String())
			assert.Equal(t, "42", result.User.ID.String())
			assert.Equal(t, uint(42), result.UserID.Uint())
			assert.Equal(t, 100, result.User.Points)
		})
	}
}

func TestSubmitAnswerRoundTrip(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/interviews/me/today", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "저는 백엔드 개발자입니다.", body["answer"])

		writeEnvelope(w, 200, 0, "success", map[string]any{
			"submission":    map[string]any{"id": 1, "score": 82},
			"earned_points": 50,
			"first_of_day":  true,
			"streak":        4,
		})
	}))
	defer ts.Close()

	c := New(ts.URL, WithUserID("1"))
	result, err := c.SubmitAnswer(context.Background(), "저는 백엔드 개발자입니다.")
	require.NoError(t, err)
	assert.Equal(t, 82, result.Submission.Score)
	assert.Equal(t, 50, result.EarnedPoints)
	assert.True(t, result.FirstOfDay)
	assert.Equal(t, 4, result.Streak)
	assert.Nil(t, result.NextDispatch)
}

func TestJobFeedParsesXML(t *testing.T) {
	const feedXML = `<?xml version="1.0" encoding="UTF-8"?>
<response>
  <header><resultCode>00</resultCode></header>
  <body>
    <totalCount>2</totalCount>
    <items>
      <item>
        <recrutPblntSn>2026001</recrutPblntSn>
        <instNm>한국정보화진흥원</instNm>
        <recrutPbancTtl>백엔드 개발자 채용</recrutPbancTtl>
        <workRgnNmLst>서울</workRgnNmLst>
        <pbancEndYmd>20260930</pbancEndYmd>
      </item>
      <item>
        <recrutPblntSn>2026002</recrutPblntSn>
        <instNm>한국데이터산업진흥원</instNm>
        <recrutPbancTtl>데이터 분석가 채용</recrutPbancTtl>
        <workRgnNmLst>부산</workRgnNmLst>
        <pbancEndYmd>20261015</pbancEndYmd>
      </item>
    </items>
  </body>
</response>`

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/list", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("serviceKey"))
		assert.Equal(t, "5", r.URL.Query().Get("numOfRows"))
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(feedXML))
	}))
	defer ts.Close()

	feed := NewJobFeed(ts.URL, "test-key")
	postings, err := feed.Latest(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, postings, 2)
	assert.Equal(t, "한국정보화진흥원", postings[0].Institution)
	assert.Equal(t, "백엔드 개발자 채용", postings[0].Title)
	assert.Equal(t, "부산", postings[1].Region)
}

func TestJobFeedGarbageBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not xml at all"))
	}))
	defer ts.Close()

	feed := NewJobFeed(ts.URL, "k")
	_, err := feed.Latest(context.Background(), 1)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindServer, apiErr.Kind)
}
