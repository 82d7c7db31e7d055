package service

import (
	"context"
	"net/http"
	"qa_forum_backend/internal/model"
	"qa_forum_backend/internal/testutil"
	"qa_forum_backend/internal/util"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	verifyLink = regexp.MustCompile(`/api/auth/verify-email/([0-9a-f]{64})`)
	resetLink  = regexp.MustCompile(`/api/auth/reset-password/([0-9a-f]{64})`)
)

func linkToken(t *testing.T, pattern *regexp.Regexp, html string) string {
	t.Helper()
	m := pattern.FindStringSubmatch(html)
	require.Len(t, m, 2, "no token link in %q", html)
	return m[1]
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	res, err := env.auth.Register(RegisterInput{Username: "alice", Email: " Alice@Example.com ", Password: "password123"})
	require.NoError(t, err)

	assert.Equal(t, "alice", res.User.Username)
	assert.Equal(t, "alice@example.com", res.User.Email)
	assert.False(t, res.User.IsVerified)
	assert.NotEqual(t, "password123", res.User.Password)

	claims, err := util.ParseJWT(res.Token, env.cfg.JWT.Secret)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)

	require.Len(t, env.mailer.Messages, 1)
	assert.Equal(t, "alice@example.com", env.mailer.Last().To)
	assert.Contains(t, env.mailer.Last().HTML, "http://localhost:5000/api/auth/verify-email/")

	unread, err := env.notifications.UnreadCount(res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.auth.Register(RegisterInput{Username: "alice", Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)

	_, err = env.auth.Register(RegisterInput{Username: "alice2", Email: "ALICE@example.com", Password: "password123"})
	assert.Equal(t, util.ErrEmailRegistered, err)

	_, err = env.auth.Register(RegisterInput{Username: "alice", Email: "other@example.com", Password: "password123"})
	assert.Equal(t, util.ErrUsernameTaken, err)
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name string
		in   RegisterInput
	}{
		{"short username", RegisterInput{Username: "al", Email: "al@example.com", Password: "password123"}},
		{"bad username chars", RegisterInput{Username: "al ice", Email: "al@example.com", Password: "password123"}},
		{"bad email", RegisterInput{Username: "alice", Email: "not-an-email", Password: "password123"}},
		{"short password", RegisterInput{Username: "alice", Email: "alice@example.com", Password: "short"}},
	}

	env := newTestEnv(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.auth.Register(tt.in)
			assertStatus(t, err, http.StatusBadRequest)
		})
	}
	assert.Equal(t, int64(0), env.count(t, &model.User{}, ""))
}

func TestVerifyEmail(t *testing.T) {
	env := newTestEnv(t)
	res, err := env.auth.Register(RegisterInput{Username: "alice", Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)

	token := linkToken(t, verifyLink, env.mailer.Last().HTML)
	require.NoError(t, env.auth.VerifyEmail(token))

	user, err := env.auth.UserRepo.FindByID(res.User.ID)
	require.NoError(t, err)
	assert.True(t, user.IsVerified)
	assert.Empty(t, user.VerificationToken)

	assert.Equal(t, util.ErrInvalidToken, env.auth.VerifyEmail(token))
	assert.Equal(t, util.ErrInvalidToken, env.auth.VerifyEmail("bogus"))
}

func TestResendVerification(t *testing.T) {
	env := newTestEnv(t)
	res, err := env.auth.Register(RegisterInput{Username: "alice", Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)
	first := linkToken(t, verifyLink, env.mailer.Last().HTML)

	require.NoError(t, env.auth.ResendVerification(res.User))
	second := linkToken(t, verifyLink, env.mailer.Last().HTML)
	assert.NotEqual(t, first, second)

	assert.Equal(t, util.ErrInvalidToken, env.auth.VerifyEmail(first))
	require.NoError(t, env.auth.VerifyEmail(second))

	verified := env.user(t, "bob")
	assertStatus(t, env.auth.ResendVerification(verified), http.StatusBadRequest)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")

	res, err := env.auth.Login("ALICE@example.com", testutil.Password)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, res.User.ID)
	assert.NotNil(t, res.User.LastLogin)

	_, err = env.auth.Login("alice@example.com", "wrong-password")
	assert.Equal(t, util.ErrInvalidCredentials, err)

	_, err = env.auth.Login("nobody@example.com", testutil.Password)
	assert.Equal(t, util.ErrInvalidCredentials, err)
}

func TestLoginBanned(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	require.NoError(t, env.auth.UserRepo.UpdateFields(alice.ID, map[string]interface{}{"is_banned": true}))

	_, err := env.auth.Login("alice@example.com", testutil.Password)
	assert.Equal(t, util.ErrAccountBanned, err)
}

func TestForgotAndResetPassword(t *testing.T) {
	env := newTestEnv(t)
	env.user(t, "alice")
	ctx := context.Background()

	require.NoError(t, env.auth.ForgotPassword(ctx, "alice@example.com"))
	require.Len(t, env.mailer.Messages, 1)
	token := linkToken(t, resetLink, env.mailer.Last().HTML)

	assertStatus(t, env.auth.ResetPassword(token, "short"), http.StatusBadRequest)
	require.NoError(t, env.auth.ResetPassword(token, "new-password-1"))

	_, err := env.auth.Login("alice@example.com", "new-password-1")
	require.NoError(t, err)
	_, err = env.auth.Login("alice@example.com", testutil.Password)
	assert.Equal(t, util.ErrInvalidCredentials, err)

	assert.Equal(t, util.ErrInvalidToken, env.auth.ResetPassword(token, "another-password"))
}

func TestForgotPasswordUnknownEmailIsSilent(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.auth.ForgotPassword(context.Background(), "nobody@example.com"))
	assert.Empty(t, env.mailer.Messages)
}

func TestForgotPasswordIsRateLimited(t *testing.T) {
	env := newTestEnv(t)
	env.user(t, "alice")
	ctx := context.Background()

	for i := 0; i < env.cfg.JWT.ResetAttempts; i++ {
		require.NoError(t, env.auth.ForgotPassword(ctx, "alice@example.com"))
	}
	err := env.auth.ForgotPassword(ctx, "Alice@Example.com")
	assertStatus(t, err, http.StatusTooManyRequests)

	require.NoError(t, env.auth.ForgotPassword(ctx, "someone-else@example.com"))
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")

	assertStatus(t, env.auth.ChangePassword(alice, "wrong", "new-password-1"), http.StatusBadRequest)
	assertStatus(t, env.auth.ChangePassword(alice, testutil.Password, "short"), http.StatusBadRequest)
	require.NoError(t, env.auth.ChangePassword(alice, testutil.Password, "new-password-1"))

	_, err := env.auth.Login("alice@example.com", "new-password-1")
	assert.NoError(t, err)
}

func TestUpdateProfileAndSettings(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	env.user(t, "bob")

	taken := "bob"
	_, err := env.auth.UpdateProfile(alice, ProfileInput{Username: &taken})
	assert.Equal(t, util.ErrUsernameTaken, err)

	bio := "  Gopher  "
	updated, err := env.auth.UpdateProfile(alice, ProfileInput{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "Gopher", updated.Profile.Bio)

	bad := "neon"
	_, err = env.auth.UpdateSettings(alice, SettingsInput{Theme: &bad})
	assertStatus(t, err, http.StatusBadRequest)

	dark, show := "dark", true
	updated, err = env.auth.UpdateSettings(alice, SettingsInput{Theme: &dark, ShowEmail: &show})
	require.NoError(t, err)
	assert.Equal(t, "dark", updated.Settings.Theme)

	stored, err := env.auth.UserRepo.FindByID(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gopher", stored.Profile.Bio)
	assert.True(t, stored.Settings.ShowEmail)
}

func TestProfileUpdateKeepsConcurrentChanges(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	q := env.question(t, alice, "How do goroutines work?", "go")

	// alice is the copy loaded at the start of her request.
	_, err := env.questions.Vote(bob, q.ID, "up")
	require.NoError(t, err)
	require.NoError(t, env.db.Model(&model.User{}).Where("id = ?", alice.ID).Update("is_admin", true).Error)

	dark := "dark"
	updated, err := env.auth.UpdateSettings(alice, SettingsInput{Theme: &dark})
	require.NoError(t, err)
	assert.Equal(t, util.RepQuestionUpvote, updated.Reputation)
	assert.True(t, updated.IsAdmin)

	bio := "Gopher"
	updated, err = env.auth.UpdateProfile(alice, ProfileInput{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "dark", updated.Settings.Theme)
	assert.Equal(t, util.RepQuestionUpvote, env.reputation(t, alice))

	stored, err := env.auth.UserRepo.FindByID(alice.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsAdmin)
	assert.Equal(t, "Gopher", stored.Profile.Bio)
}

func TestUpdateProfileOwnUsernameWithSpaces(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")

	padded := "  alice  "
	updated, err := env.auth.UpdateProfile(alice, ProfileInput{Username: &padded})
	require.NoError(t, err)
	assert.Equal(t, "alice", updated.Username)

	renamed := " alice_2 "
	updated, err = env.auth.UpdateProfile(alice, ProfileInput{Username: &renamed})
	require.NoError(t, err)
	assert.Equal(t, "alice_2", updated.Username)
}
