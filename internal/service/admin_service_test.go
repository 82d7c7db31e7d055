package service

import (
	"net/http"
	"qa_forum_backend/internal/model"
	"qa_forum_backend/internal/repository"
	"qa_forum_backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdmin(t *testing.T, env *testEnv) *model.User {
	t.Helper()
	admin := env.user(t, "admin")
	require.NoError(t, env.admin.UserRepo.UpdateFields(admin.ID, map[string]interface{}{"is_admin": true}))
	admin.IsAdmin = true
	return admin
}

func TestAdminSelfActionsAreRejected(t *testing.T) {
	env := newTestEnv(t)
	admin := newAdmin(t, env)

	for _, action := range []string{ActionDemote, ActionBan, ActionSuspend} {
		_, err := env.admin.ApplyUserAction(admin, admin.ID, UserActionInput{Action: action})
		assertStatus(t, err, http.StatusBadRequest)
		assert.Contains(t, err.Error(), "your own account")
	}
	assertStatus(t, env.admin.DeleteUser(admin, admin.ID), http.StatusBadRequest)

	_, err := env.admin.ApplyUserAction(admin, admin.ID, UserActionInput{Action: ActionVerify})
	require.NoError(t, err)
}

func TestAdminUserActions(t *testing.T) {
	env := newTestEnv(t)
	admin := newAdmin(t, env)
	bob := env.user(t, "bob")

	_, err := env.admin.ApplyUserAction(admin, bob.ID, UserActionInput{Action: "explode"})
	assertStatus(t, err, http.StatusBadRequest)
	_, err = env.admin.ApplyUserAction(admin, "missing", UserActionInput{Action: ActionBan})
	assertNotFound(t, err)

	res, err := env.admin.ApplyUserAction(admin, bob.ID, UserActionInput{Action: ActionPromote})
	require.NoError(t, err)
	assert.True(t, res.User.IsAdmin)

	res, err = env.admin.ApplyUserAction(admin, bob.ID, UserActionInput{Action: ActionBan})
	require.NoError(t, err)
	assert.True(t, res.User.IsBanned)

	res, err = env.admin.ApplyUserAction(admin, bob.ID, UserActionInput{Action: ActionUnban})
	require.NoError(t, err)
	assert.False(t, res.User.IsBanned)

	res, err = env.admin.ApplyUserAction(admin, bob.ID, UserActionInput{Action: ActionUnverify})
	require.NoError(t, err)
	assert.False(t, res.User.IsVerified)

	list, err := env.notifications.List(bob.ID, false, util.Page{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(4), list.Total)
	assert.Equal(t, model.NotifyAccountUpdate, list.Notifications[0].Type)
}

func TestAdminSuspend(t *testing.T) {
	env := newTestEnv(t)
	admin := newAdmin(t, env)
	bob := env.user(t, "bob")

	for _, days := range []int{-1, 366} {
		_, err := env.admin.ApplyUserAction(admin, bob.ID, UserActionInput{Action: ActionSuspend, DurationDays: days})
		assertStatus(t, err, http.StatusBadRequest)
	}

	res, err := env.admin.ApplyUserAction(admin, bob.ID, UserActionInput{Action: ActionSuspend})
	require.NoError(t, err)
	require.NotNil(t, res.User.SuspendedUntil)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 7), *res.User.SuspendedUntil, time.Minute)
	assert.True(t, res.User.IsSuspended(time.Now()))

	res, err = env.admin.ApplyUserAction(admin, bob.ID, UserActionInput{Action: ActionUnsuspend})
	require.NoError(t, err)
	assert.Nil(t, res.User.SuspendedUntil)
}

func TestAdminResetPassword(t *testing.T) {
	env := newTestEnv(t)
	admin := newAdmin(t, env)
	bob := env.user(t, "bob")

	res, err := env.admin.ApplyUserAction(admin, bob.ID, UserActionInput{Action: ActionResetPassword})
	require.NoError(t, err)
	assert.Len(t, res.TempPassword, 12)

	require.Len(t, env.mailer.Messages, 1)
	assert.Equal(t, bob.Email, env.mailer.Last().To)
	assert.Contains(t, env.mailer.Last().HTML, res.TempPassword)

	_, err = env.auth.Login(bob.Email, res.TempPassword)
	assert.NoError(t, err)
}

func TestAdminDeleteUserCascades(t *testing.T) {
	env := newTestEnv(t)
	admin := newAdmin(t, env)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	q := env.question(t, alice, "How do goroutines work?")
	bobsQuestion := env.question(t, bob, "How do channels close?")
	a := env.answer(t, bob, q)
	_, err := env.comments.Create(bob, "question", q.ID, "A comment")
	require.NoError(t, err)
	require.NoError(t, env.users.Follow(bob, alice.ID))
	require.NoError(t, env.friends.Add(bob, alice.ID))
	require.NoError(t, env.bookmarks.Add(bob.ID, q.ID))

	require.NoError(t, env.admin.DeleteUser(admin, bob.ID))

	assertNotFound(t, env.admin.DeleteUser(admin, bob.ID))
	assert.Equal(t, int64(0), env.count(t, &model.Question{}, "id = ?", bobsQuestion.ID))
	assert.Equal(t, int64(0), env.count(t, &model.Answer{}, "id = ?", a.ID))
	assert.Equal(t, int64(0), env.count(t, &model.Comment{}, ""))
	assert.Equal(t, int64(0), env.count(t, &model.Follow{}, ""))
	assert.Equal(t, int64(0), env.count(t, &model.Friendship{}, ""))
	assert.Equal(t, int64(0), env.count(t, &model.Bookmark{}, ""))

	stored, err := env.questions.QuestionRepo.FindByID(q.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.AnswerCount)
	assert.Equal(t, 0, stored.CommentCount)
}

func TestResolveReport(t *testing.T) {
	env := newTestEnv(t)
	admin := newAdmin(t, env)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	q := env.question(t, alice, "How do goroutines work?")
	a := env.answer(t, alice, q)

	dismissed, err := env.reports.Create(bob, ReportInput{ContentID: q.ID, ContentType: "question", Reason: "off topic"})
	require.NoError(t, err)
	removed, err := env.reports.Create(bob, ReportInput{ContentID: a.ID, ContentType: "answer", Reason: "spam"})
	require.NoError(t, err)

	_, err = env.admin.ResolveReport(admin, dismissed.ID, "ignore")
	assertStatus(t, err, http.StatusBadRequest)

	r, err := env.admin.ResolveReport(admin, dismissed.ID, ReportActionDismiss)
	require.NoError(t, err)
	assert.Equal(t, model.ReportResolved, r.Status)
	assert.Equal(t, model.ResolutionDismissed, r.Resolution)
	require.NotNil(t, r.ResolvedBy)
	assert.Equal(t, admin.ID, *r.ResolvedBy)

	_, err = env.admin.ResolveReport(admin, dismissed.ID, ReportActionDismiss)
	assertStatus(t, err, http.StatusBadRequest)

	r, err = env.admin.ResolveReport(admin, removed.ID, ReportActionDeleteContent)
	require.NoError(t, err)
	assert.Equal(t, model.ResolutionContentDeleted, r.Resolution)
	assert.Equal(t, int64(0), env.count(t, &model.Answer{}, "id = ?", a.ID))

	pending, total, err := env.admin.ListReports(string(model.ReportPending), util.Page{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, pending)

	_, _, err = env.admin.ListReports("bogus", util.Page{Page: 1, Limit: 10})
	assertStatus(t, err, http.StatusBadRequest)
}

func TestAdminDeleteContent(t *testing.T) {
	env := newTestEnv(t)
	admin := newAdmin(t, env)
	alice := env.user(t, "alice")
	q := env.question(t, alice, "How do goroutines work?")

	assertStatus(t, env.admin.DeleteContent(admin, "user", q.ID), http.StatusBadRequest)
	require.NoError(t, env.admin.DeleteContent(admin, "question", q.ID))
	assertNotFound(t, env.admin.DeleteContent(admin, "question", q.ID))
}

func TestAdminStats(t *testing.T) {
	env := newTestEnv(t)
	newAdmin(t, env)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	q := env.question(t, alice, "How do goroutines work?", "go")
	env.question(t, alice, "How do channels close?", "go")
	a := env.answer(t, bob, q)
	_, err := env.answers.Accept(alice, a.ID)
	require.NoError(t, err)

	stats, err := env.admin.Stats()
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.Totals.Users)
	assert.Equal(t, int64(1), stats.Totals.AdminUsers)
	assert.Equal(t, int64(2), stats.Totals.Questions)
	assert.Equal(t, int64(1), stats.Totals.Answered)
	assert.Equal(t, int64(1), stats.Totals.Accepted)
	assert.Equal(t, 50.0, stats.AnsweredRate)
	assert.Equal(t, 50.0, stats.AcceptanceRate)
	assert.Equal(t, "bob", stats.TopUsers[0].Username)
	assert.Equal(t, []repository.TagCount{{Tag: "go", Count: 2}}, stats.TopTags)
	require.Len(t, stats.DailyQuestions, 7)
	assert.Equal(t, 2, stats.DailyQuestions[6].Count)
}

func TestBucketByDay(t *testing.T) {
	today := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	times := []time.Time{
		time.Date(2024, 3, 10, 1, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 8, 12, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	buckets := BucketByDay(times, today, 3)
	assert.Equal(t, []DailyCount{
		{Date: "2024-03-08", Count: 1},
		{Date: "2024-03-09", Count: 0},
		{Date: "2024-03-10", Count: 2},
	}, buckets)
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0.0, percent(1, 0))
	assert.Equal(t, 33.3, percent(1, 3))
	assert.Equal(t, 100.0, percent(2, 2))
}
