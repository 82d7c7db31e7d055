package service

import (
	"net/http"
	"qa_forum_backend/internal/model"
	"qa_forum_backend/internal/util"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComments(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	q := env.question(t, alice, "How do goroutines work?")

	_, err := env.comments.Create(bob, "comment", q.ID, "Nested")
	assertStatus(t, err, http.StatusBadRequest)
	_, err = env.comments.Create(bob, "question", q.ID, strings.Repeat("x", util.MaxCommentLength+1))
	assertStatus(t, err, http.StatusBadRequest)
	_, err = env.comments.Create(bob, "answer", q.ID, "Wrong parent type")
	assertNotFound(t, err)

	c, err := env.comments.Create(bob, "question", q.ID, "  Which Go version?  ")
	require.NoError(t, err)
	assert.Equal(t, "Which Go version?", c.Body)

	stored, err := env.questions.QuestionRepo.FindByID(q.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.CommentCount)

	_, err = env.comments.Update(alice, c.ID, "Edited")
	assert.Equal(t, util.ErrNotOwner, err)
	updated, err := env.comments.Update(bob, c.ID, "Edited")
	require.NoError(t, err)
	assert.Equal(t, "Edited", updated.Body)

	list, err := env.comments.List("question", q.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Edited", list[0].Body)

	require.NoError(t, env.comments.Delete(bob, c.ID))
	stored, err = env.questions.QuestionRepo.FindByID(q.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.CommentCount)

	list, err = env.comments.List("question", q.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestBookmarks(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	q := env.question(t, alice, "How do goroutines work?", "go")

	assertNotFound(t, env.bookmarks.Add(bob.ID, "missing"))
	require.NoError(t, env.bookmarks.Add(bob.ID, q.ID))
	assertStatus(t, env.bookmarks.Add(bob.ID, q.ID), http.StatusBadRequest)

	ok, err := env.bookmarks.IsBookmarked(bob.ID, q.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	questions, total, err := env.bookmarks.List(bob.ID, util.Page{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, questions, 1)
	assert.Equal(t, q.ID, questions[0].ID)
	assert.Equal(t, []string{"go"}, questions[0].TagList)

	require.NoError(t, env.bookmarks.Remove(bob.ID, q.ID))
	assertStatus(t, env.bookmarks.Remove(bob.ID, q.ID), http.StatusBadRequest)
}

func TestFollow(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")

	assertStatus(t, env.users.Follow(alice, alice.ID), http.StatusBadRequest)
	assertNotFound(t, env.users.Follow(alice, "missing"))
	require.NoError(t, env.users.Follow(alice, bob.ID))
	assertStatus(t, env.users.Follow(alice, bob.ID), http.StatusBadRequest)

	followers, err := env.users.Followers(bob.ID)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, "alice", followers[0].Username)

	following, err := env.users.Following(alice.ID)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, "bob", following[0].Username)

	profile, err := env.users.Profile(bob.ID, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, profile.IsFollowing)
	assert.True(t, *profile.IsFollowing)
	assert.Empty(t, profile.Email)

	own, err := env.users.Profile(bob.ID, bob.ID)
	require.NoError(t, err)
	assert.Nil(t, own.IsFollowing)

	unread, err := env.notifications.UnreadCount(bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	require.NoError(t, env.users.Unfollow(alice, bob.ID))
	assertStatus(t, env.users.Unfollow(alice, bob.ID), http.StatusBadRequest)
}

func TestFriends(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")

	assertStatus(t, env.friends.Add(alice, alice.ID), http.StatusBadRequest)
	require.NoError(t, env.friends.Add(alice, bob.ID))
	assertStatus(t, env.friends.Add(bob, alice.ID), http.StatusBadRequest)

	for _, pair := range [][2]string{{alice.ID, bob.ID}, {bob.ID, alice.ID}} {
		ok, err := env.friends.Status(pair[0], pair[1])
		require.NoError(t, err)
		assert.True(t, ok)
	}

	friends, err := env.friends.List(bob.ID)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, "alice", friends[0].Username)

	require.NoError(t, env.friends.Remove(bob.ID, alice.ID))
	assertStatus(t, env.friends.Remove(alice.ID, bob.ID), http.StatusBadRequest)

	friends, err = env.friends.List(alice.ID)
	require.NoError(t, err)
	assert.Empty(t, friends)
}

func TestReports(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	q := env.question(t, alice, "How do goroutines work?")

	_, err := env.reports.Create(bob, ReportInput{ContentID: q.ID, ContentType: "user", Reason: "spam"})
	assertStatus(t, err, http.StatusBadRequest)
	_, err = env.reports.Create(bob, ReportInput{ContentID: q.ID, ContentType: "question", Reason: "  "})
	assertStatus(t, err, http.StatusBadRequest)
	_, err = env.reports.Create(bob, ReportInput{ContentID: "missing", ContentType: "question", Reason: "spam"})
	assertNotFound(t, err)

	r, err := env.reports.Create(bob, ReportInput{ContentID: q.ID, ContentType: "question", Reason: "spam"})
	require.NoError(t, err)
	assert.Equal(t, model.ReportPending, r.Status)

	_, err = env.reports.Create(bob, ReportInput{ContentID: q.ID, ContentType: "question", Reason: "again"})
	assertStatus(t, err, http.StatusBadRequest)

	_, err = env.reports.Create(alice, ReportInput{ContentID: q.ID, ContentType: "question", Reason: "my own"})
	require.NoError(t, err)
}

func TestNotifications(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")

	env.notifications.Notify(NotifyInput{RecipientID: alice.ID, SenderID: alice.ID, Type: model.NotifySystem, Title: "self"})
	env.notifications.Notify(NotifyInput{RecipientID: alice.ID, SenderID: bob.ID, Type: model.NotifySystem, Title: "one"})
	env.notifications.Notify(NotifyInput{RecipientID: alice.ID, Type: model.NotifySystem, Title: "two"})

	list, err := env.notifications.List(alice.ID, false, util.Page{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.Total)
	assert.Equal(t, int64(2), list.UnreadCount)

	var fromBob model.Notification
	for _, n := range list.Notifications {
		if n.Title == "one" {
			fromBob = n
		}
	}
	require.NotNil(t, fromBob.SenderInfo)
	assert.Equal(t, "bob", fromBob.SenderInfo.Username)

	assertStatus(t, env.notifications.MarkRead(bob.ID, fromBob.ID), http.StatusNotFound)
	require.NoError(t, env.notifications.MarkRead(alice.ID, fromBob.ID))

	unread, err := env.notifications.UnreadCount(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	marked, err := env.notifications.MarkAllRead(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), marked)

	require.NoError(t, env.notifications.Delete(alice.ID, fromBob.ID))
	assertStatus(t, env.notifications.Delete(alice.ID, fromBob.ID), http.StatusNotFound)
}

type recordingPusher struct {
	users []string
	types []string
}

func (p *recordingPusher) PushToUsers(userIDs []string, msg StreamMessage) {
	p.users = append(p.users, userIDs...)
	p.types = append(p.types, msg.Type)
}

func TestNotifyPushesToStream(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	pusher := &recordingPusher{}
	env.notifications.Pusher = pusher

	env.notifications.Notify(NotifyInput{RecipientID: alice.ID, Type: model.NotifySystem, Title: "hello"})

	assert.Equal(t, []string{alice.ID}, pusher.users)
	assert.Equal(t, []string{StreamNotification}, pusher.types)
}
