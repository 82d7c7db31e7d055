package service

import (
	"errors"
	"net/http"
	"qa_forum_backend/internal/config"
	"qa_forum_backend/internal/model"
	"qa_forum_backend/internal/repository"
	"qa_forum_backend/internal/testutil"
	"qa_forum_backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	db     *gorm.DB
	cfg    *config.Config
	mailer *testutil.RecordingMailer

	notifications *NotificationService
	auth          *AuthService
	questions     *QuestionService
	answers       *AnswerService
	comments      *CommentService
	bookmarks     *BookmarkService
	users         *UserService
	friends       *FriendshipService
	reports       *ReportService
	admin         *AdminService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)
	cfg := testutil.Config(t)
	m := &testutil.RecordingMailer{}

	userRepo := repository.NewUserRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	answerRepo := repository.NewAnswerRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	contentRepo := repository.NewContentRepository(db)
	reportRepo := repository.NewReportRepository(db)

	notifications := NewNotificationService(repository.NewNotificationRepository(db))

	return &testEnv{
		db:            db,
		cfg:           cfg,
		mailer:        m,
		notifications: notifications,
		auth:          NewAuthService(userRepo, notifications, m, NewMemoryAttemptLimiter(cfg.JWT.ResetAttempts, time.Hour), cfg),
		questions:     NewQuestionService(questionRepo, answerRepo, commentRepo, contentRepo, notifications, nil),
		answers:       NewAnswerService(answerRepo, questionRepo, contentRepo, notifications),
		comments:      NewCommentService(commentRepo, contentRepo, notifications),
		bookmarks:     NewBookmarkService(repository.NewBookmarkRepository(db), contentRepo),
		users:         NewUserService(userRepo, repository.NewFollowRepository(db), questionRepo, answerRepo, notifications),
		friends:       NewFriendshipService(repository.NewFriendshipRepository(db, nil), userRepo, notifications),
		reports:       NewReportService(reportRepo, contentRepo),
		admin:         NewAdminService(userRepo, questionRepo, reportRepo, contentRepo, repository.NewStatsRepository(db), notifications, m),
	}
}

func (e *testEnv) user(t *testing.T, name string) *model.User {
	return testutil.CreateUser(t, e.db, name)
}

func (e *testEnv) reputation(t *testing.T, u *model.User) int {
	return testutil.Reputation(t, e.db, u.ID)
}

func (e *testEnv) question(t *testing.T, owner *model.User, title string, tags ...string) *model.Question {
	t.Helper()
	q, err := e.questions.Create(owner, QuestionInput{Title: title, Body: "Details for " + title, Tags: tags})
	require.NoError(t, err)
	return q
}

func (e *testEnv) answer(t *testing.T, author *model.User, q *model.Question) *model.Answer {
	t.Helper()
	a, err := e.answers.Create(author, q.ID, "An answer by "+author.Username)
	require.NoError(t, err)
	return a
}

func (e *testEnv) count(t *testing.T, m interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	db := e.db.Model(m)
	if query != "" {
		db = db.Where(query, args...)
	}
	require.NoError(t, db.Count(&n).Error)
	return n
}

// assertStatus checks that err surfaces as the given HTTP status.
func assertStatus(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	got, msg := util.StatusOf(err)
	assert.Equal(t, status, got, msg)
}

func assertNotFound(t *testing.T, err error) {
	t.Helper()
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound), "expected not found, got %v", err)
	assertStatus(t, err, http.StatusNotFound)
}
