package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"qa_forum_backend/internal/config"
	"qa_forum_backend/internal/model"
	"qa_forum_backend/internal/util"
	"qa_forum_backend/pkg/logger"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

type MockUserLookup struct {
	mock.Mock
}

func (m *MockUserLookup) FindByID(id string) (*model.User, error) {
	args := m.Called(id)
	if u := args.Get(0); u != nil {
		return u.(*model.User), args.Error(1)
	}
	return nil, args.Error(1)
}

type recordingActivityRepo struct {
	seen chan string
	err  error
}

func (m *recordingActivityRepo) UpdateLastSeen(userID string) error {
	m.seen <- userID
	return m.err
}

func testConfig() *config.Config {
	return &config.Config{JWT: config.JWTConfig{Secret: "middleware-secret"}}
}

func token(t *testing.T, cfg *config.Config, userID string) string {
	t.Helper()
	tok, err := util.GenerateJWT(userID, cfg.JWT.Secret, time.Hour)
	require.NoError(t, err)
	return tok
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user == nil {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, user.Username)
	})
	r.GET("/", handlers...)
	return r
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	cfg := testConfig()
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	users := new(MockUserLookup)
	users.On("FindByID", "u1").Return(&model.User{UUIDBase: model.UUIDBase{ID: "u1"}, Username: "alice"}, nil)
	users.On("FindByID", "banned").Return(&model.User{UUIDBase: model.UUIDBase{ID: "banned"}, IsBanned: true}, nil)
	users.On("FindByID", "suspended").Return(&model.User{UUIDBase: model.UUIDBase{ID: "suspended"}, SuspendedUntil: &future}, nil)
	users.On("FindByID", "served").Return(&model.User{UUIDBase: model.UUIDBase{ID: "served"}, Username: "carol", SuspendedUntil: &past}, nil)
	users.On("FindByID", "gone").Return(nil, gorm.ErrRecordNotFound)

	r := newRouter(AuthMiddleware(cfg, users))

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"no token", "", http.StatusUnauthorized, ""},
		{"malformed", "Bearer nope", http.StatusUnauthorized, ""},
		{"valid", "Bearer " + token(t, cfg, "u1"), http.StatusOK, "alice"},
		{"banned", "Bearer " + token(t, cfg, "banned"), http.StatusForbidden, ""},
		{"suspended", "Bearer " + token(t, cfg, "suspended"), http.StatusForbidden, ""},
		{"suspension over", "Bearer " + token(t, cfg, "served"), http.StatusOK, "carol"},
		{"deleted user", "Bearer " + token(t, cfg, "gone"), http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := serve(r, req)
			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestQueryTokenOnlyForWebsocket(t *testing.T) {
	cfg := testConfig()
	users := new(MockUserLookup)
	users.On("FindByID", "u1").Return(&model.User{UUIDBase: model.UUIDBase{ID: "u1"}, Username: "alice"}, nil)
	r := newRouter(AuthMiddleware(cfg, users))

	req := httptest.NewRequest("GET", "/?token="+token(t, cfg, "u1"), nil)
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	req = httptest.NewRequest("GET", "/?token="+token(t, cfg, "u1"), nil)
	req.Header.Set("Upgrade", "websocket")
	w := serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", w.Body.String())
}

func TestTryAuthMiddleware(t *testing.T) {
	cfg := testConfig()
	users := new(MockUserLookup)
	users.On("FindByID", "u1").Return(&model.User{UUIDBase: model.UUIDBase{ID: "u1"}, Username: "alice"}, nil)
	users.On("FindByID", "banned").Return(&model.User{UUIDBase: model.UUIDBase{ID: "banned"}, Username: "mallory", IsBanned: true}, nil)
	r := newRouter(TryAuthMiddleware(cfg, users))

	w := serve(r, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, "anonymous", w.Body.String())

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, cfg, "u1"))
	assert.Equal(t, "alice", serve(r, req).Body.String())

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, cfg, "banned"))
	assert.Equal(t, "anonymous", serve(r, req).Body.String())

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w = serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "anonymous", w.Body.String())
}

func TestAdminMiddleware(t *testing.T) {
	setUser := func(u *model.User) gin.HandlerFunc {
		return func(c *gin.Context) {
			if u != nil {
				c.Set(util.ContextUserKey, u)
			}
		}
	}

	w := serve(newRouter(setUser(nil), AdminMiddleware()), httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(newRouter(setUser(&model.User{Username: "alice"}), AdminMiddleware()), httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(newRouter(setUser(&model.User{Username: "root", IsAdmin: true}), AdminMiddleware()), httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "root", w.Body.String())
}

func TestActivityMiddleware(t *testing.T) {
	repo := &recordingActivityRepo{seen: make(chan string, 1)}
	recent := time.Now()

	setUser := func(u *model.User) gin.HandlerFunc {
		return func(c *gin.Context) { c.Set(util.ContextUserKey, u) }
	}

	serve(newRouter(setUser(&model.User{UUIDBase: model.UUIDBase{ID: "fresh"}, LastSeen: &recent}), ActivityMiddleware(repo)),
		httptest.NewRequest("GET", "/", nil))
	serve(newRouter(setUser(&model.User{UUIDBase: model.UUIDBase{ID: "stale"}}), ActivityMiddleware(repo)),
		httptest.NewRequest("GET", "/", nil))

	select {
	case id := <-repo.seen:
		assert.Equal(t, "stale", id)
	case <-time.After(2 * time.Second):
		t.Fatal("last seen was not updated")
	}
	assert.Empty(t, repo.seen)
}

func TestActivityMiddlewareLogsFailures(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	previous := logger.Log
	logger.Log = zap.New(core)
	t.Cleanup(func() { logger.Log = previous })

	repo := &recordingActivityRepo{seen: make(chan string, 1), err: errors.New("database is locked")}
	setUser := func(c *gin.Context) { c.Set(util.ContextUserKey, &model.User{UUIDBase: model.UUIDBase{ID: "u1"}}) }

	w := serve(newRouter(setUser, ActivityMiddleware(repo)), httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Eventually(t, func() bool {
		return logs.FilterMessage("Failed to update last seen").Len() == 1
	}, 2*time.Second, 10*time.Millisecond)
	entry := logs.FilterMessage("Failed to update last seen").All()[0]
	assert.Equal(t, "u1", entry.ContextMap()["userId"])
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery(true))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })
	r.NoRoute(NotFoundHandler)

	w := serve(r, httptest.NewRequest("GET", "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "stack")

	w = serve(r, httptest.NewRequest("GET", "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Route not found")
}
