package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"qa_forum_backend/internal/model"
	"qa_forum_backend/internal/testutil"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type fakeGenerator struct {
	reply string
}

func (g fakeGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	return g.reply, nil
}

type testServer struct {
	t      *testing.T
	app    *App
	mailer *testutil.RecordingMailer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	m := &testutil.RecordingMailer{}
	app := New(testutil.Config(t), db, nil, Deps{Mailer: m, Generator: fakeGenerator{reply: "Go, Goroutines"}})
	t.Cleanup(app.services.hub.Stop)

	return &testServer{t: t, app: app, mailer: m}
}

func (s *testServer) do(method, path, token string, body interface{}) (int, envelope) {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.app.Router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func decode(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, v))
}

type registered struct {
	token string
	id    string
}

func (s *testServer) register(username string) registered {
	s.t.Helper()
	code, env := s.do("POST", "/api/auth/register", "", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	require.Equal(s.t, http.StatusCreated, code, env.Message)

	var res struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	decode(s.t, env, &res)
	return registered{token: res.Token, id: res.User.ID}
}

func (s *testServer) ask(token, title string, tags ...string) string {
	s.t.Helper()
	code, env := s.do("POST", "/api/questions", token, gin.H{"title": title, "body": "Details for " + title, "tags": tags})
	require.Equal(s.t, http.StatusCreated, code, env.Message)

	var q struct {
		ID string `json:"id"`
	}
	decode(s.t, env, &q)
	return q.ID
}

func TestAnswerVoteFlow(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("alice")
	bob := s.register("bob")

	questionID := s.ask(alice.token, "How do goroutines work?", "Go", "#concurrency")

	code, env := s.do("POST", "/api/answers/"+questionID, bob.token, gin.H{"body": "Use the go keyword."})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var answer struct {
		ID         string `json:"id"`
		QuestionID string `json:"questionId"`
	}
	decode(t, env, &answer)
	assert.Equal(t, questionID, answer.QuestionID)

	code, env = s.do("POST", "/api/answers/"+answer.ID+"/vote", bob.token, gin.H{"voteType": "up"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = s.do("POST", "/api/answers/"+answer.ID+"/vote", alice.token, gin.H{"voteType": "up"})
	require.Equal(t, http.StatusOK, code, env.Message)
	var vote struct {
		Votes int `json:"votes"`
	}
	decode(t, env, &vote)
	assert.Equal(t, 1, vote.Votes)

	code, env = s.do("GET", "/api/users/"+bob.id, "", nil)
	require.Equal(t, http.StatusOK, code)
	var profile struct {
		Reputation int `json:"reputation"`
	}
	decode(t, env, &profile)
	assert.Equal(t, 10, profile.Reputation)

	code, env = s.do("GET", "/api/questions/"+questionID, "", nil)
	require.Equal(t, http.StatusOK, code)
	var detail struct {
		Question struct {
			Tags        []string `json:"tags"`
			AnswerCount int      `json:"answerCount"`
		} `json:"question"`
		Answers []struct {
			ID    string `json:"id"`
			Votes int    `json:"votes"`
		} `json:"answers"`
	}
	decode(t, env, &detail)
	assert.Equal(t, []string{"go", "concurrency"}, detail.Question.Tags)
	assert.Equal(t, 1, detail.Question.AnswerCount)
	require.Len(t, detail.Answers, 1)
	assert.Equal(t, 1, detail.Answers[0].Votes)

	code, _ = s.do("GET", "/api/notifications/unread-count", bob.token, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestQuestionPagination(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("alice")
	for i := 0; i < 12; i++ {
		s.ask(alice.token, "Question number "+string(rune('A'+i)))
	}

	code, env := s.do("GET", "/api/questions?page=2&limit=5", "", nil)
	require.Equal(t, http.StatusOK, code)

	var list struct {
		Questions  []json.RawMessage `json:"questions"`
		Pagination struct {
			CurrentPage    int  `json:"currentPage"`
			TotalPages     int  `json:"totalPages"`
			TotalQuestions int  `json:"totalQuestions"`
			HasNextPage    bool `json:"hasNextPage"`
			HasPrevPage    bool `json:"hasPrevPage"`
		} `json:"pagination"`
	}
	decode(t, env, &list)
	assert.Len(t, list.Questions, 5)
	assert.Equal(t, 2, list.Pagination.CurrentPage)
	assert.Equal(t, 3, list.Pagination.TotalPages)
	assert.Equal(t, 12, list.Pagination.TotalQuestions)
	assert.True(t, list.Pagination.HasNextPage)
	assert.True(t, list.Pagination.HasPrevPage)
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do("POST", "/api/questions", "", gin.H{"title": "How do goroutines work?", "body": "body"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, env.Success)

	code, _ = s.do("GET", "/api/auth/me", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("alice")

	code, _ := s.do("GET", "/api/admin/stats", alice.token, nil)
	assert.Equal(t, http.StatusForbidden, code)

	require.NoError(t, s.app.DB.Model(&model.User{}).Where("id = ?", alice.id).Update("is_admin", true).Error)

	code, env := s.do("GET", "/api/admin/stats", alice.token, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
}

func TestBannedUserIsRejected(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("alice")
	require.NoError(t, s.app.DB.Model(&model.User{}).Where("id = ?", alice.id).Update("is_banned", true).Error)

	code, _ := s.do("GET", "/api/auth/me", alice.token, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do("POST", "/api/auth/login", "", gin.H{"email": "alice@example.com", "password": "password123"})
	assert.Equal(t, http.StatusForbidden, code)
}

func TestVerifyEmailLink(t *testing.T) {
	s := newTestServer(t)
	s.register("alice")
	require.Len(t, s.mailer.Messages, 1)

	html := s.mailer.Last().HTML
	start := bytes.Index([]byte(html), []byte("/api/auth/verify-email/"))
	require.GreaterOrEqual(t, start, 0)
	path := html[start : start+len("/api/auth/verify-email/")+64]

	code, env := s.do("GET", path, "", nil)
	require.Equal(t, http.StatusOK, code, env.Message)

	code, _ = s.do("GET", path, "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAISuggestTags(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("alice")

	code, env := s.do("POST", "/api/ai/suggest-tags", alice.token, gin.H{"title": "How do goroutines work?"})
	require.Equal(t, http.StatusOK, code, env.Message)

	var res struct {
		Tags []string `json:"tags"`
	}
	decode(t, env, &res)
	assert.Equal(t, []string{"go", "goroutines"}, res.Tags)
}

func TestHealthAndNotFound(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do("GET", "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)

	code, env = s.do("GET", "/api/nothing-here", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, env.Success)
}

func TestAnswersGoneAfterQuestionDeleted(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("alice")
	bob := s.register("bob")

	questionID := s.ask(alice.token, "How do goroutines work?", "go")
	code, env := s.do("POST", "/api/answers/"+questionID, bob.token, gin.H{"body": "Use the go keyword."})
	require.Equal(t, http.StatusCreated, code, env.Message)

	code, env = s.do("DELETE", "/api/questions/"+questionID, alice.token, nil)
	require.Equal(t, http.StatusOK, code, env.Message)

	code, env = s.do("GET", "/api/answers/question/"+questionID, "", nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	var list struct {
		Answers []json.RawMessage `json:"answers"`
	}
	decode(t, env, &list)
	assert.NotNil(t, list.Answers)
	assert.Empty(t, list.Answers)

	code, _ = s.do("GET", "/api/questions/"+questionID, "", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestSettingsUpdateKeepsReputation(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("alice")
	bob := s.register("bob")

	questionID := s.ask(alice.token, "How do goroutines work?", "go")
	code, env := s.do("POST", "/api/questions/"+questionID+"/vote", bob.token, gin.H{"voteType": "up"})
	require.Equal(t, http.StatusOK, code, env.Message)

	code, env = s.do("PUT", "/api/auth/settings", alice.token, gin.H{"theme": "dark"})
	require.Equal(t, http.StatusOK, code, env.Message)
	code, env = s.do("PUT", "/api/auth/profile", alice.token, gin.H{"bio": "Gopher", "username": " alice "})
	require.Equal(t, http.StatusOK, code, env.Message)

	var user struct {
		Username   string `json:"username"`
		Reputation int    `json:"reputation"`
		Settings   struct {
			Theme string `json:"theme"`
		} `json:"settings"`
	}
	decode(t, env, &user)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, 5, user.Reputation)
	assert.Equal(t, "dark", user.Settings.Theme)
}
