package service

import (
	"context"
	"errors"
	"fmt"
	"qa_forum_backend/internal/config"
	"qa_forum_backend/internal/model"
	"qa_forum_backend/internal/repository"
	"qa_forum_backend/internal/util"
	"qa_forum_backend/pkg/logger"
	"qa_forum_backend/pkg/mailer"
	"qa_forum_backend/pkg/monitoring"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,30}$`)
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

const MinPasswordLength = 8

type AuthService struct {
	UserRepo      *repository.UserRepository
	Notifications *NotificationService
	Mailer        mailer.Mailer
	ResetLimiter  AttemptLimiter
	Cfg           *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, notifications *NotificationService, m mailer.Mailer, limiter AttemptLimiter, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo:      userRepo,
		Notifications: notifications,
		Mailer:        m,
		ResetLimiter:  limiter,
		Cfg:           cfg,
	}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type AuthResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return util.ErrBadRequest("Username must be 3-30 characters of letters, numbers and underscores")
	}
	return nil
}

func ValidateEmail(email string) error {
	if len(email) > 100 || !emailPattern.MatchString(email) {
		return util.ErrBadRequest("Please provide a valid email")
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return util.ErrBadRequest(fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}
	return nil
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (s *AuthService) issueToken(user *model.User) (string, error) {
	return util.GenerateJWT(user.ID, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
}

func (s *AuthService) Register(in RegisterInput) (*AuthResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if err := ValidateUsername(in.Username); err != nil {
		return nil, err
	}
	if err := ValidateEmail(in.Email); err != nil {
		return nil, err
	}
	if err := ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	if exists, err := s.UserRepo.EmailExists(in.Email); err != nil {
		return nil, err
	} else if exists {
		return nil, util.ErrEmailRegistered
	}
	if exists, err := s.UserRepo.UsernameExists(in.Username); err != nil {
		return nil, err
	} else if exists {
		return nil, util.ErrUsernameTaken
	}

	hashed, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	plain, digest, err := util.NewToken()
	if err != nil {
		return nil, err
	}
	expires := time.Now().Add(s.Cfg.JWT.VerifyExpire)

	user := &model.User{
		Username:            in.Username,
		Email:               in.Email,
		Password:            hashed,
		VerificationToken:   digest,
		VerificationExpires: &expires,
		Settings: model.Settings{
			EmailNotifications: true,
			Theme:              "light",
			Language:           "en",
		},
	}
	if err := s.UserRepo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ErrBadRequest("Email or username already registered")
		}
		return nil, err
	}

	s.sendVerificationEmail(user, plain)
	s.Notifications.Notify(NotifyInput{
		RecipientID: user.ID,
		Type:        model.NotifyWelcome,
		Title:       "Welcome to the forum!",
		Message:     fmt.Sprintf("Hi %s, thanks for joining. Ask your first question or help others by answering.", user.Username),
	})
	monitoring.RecordEvent("user_registered")

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) Login(email, password string) (*AuthResult, error) {
	user, err := s.UserRepo.FindByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, util.ErrInvalidCredentials
	}

	if user.IsBanned {
		return nil, util.ErrAccountBanned
	}

	now := time.Now()
	if err := s.UserRepo.UpdateFields(user.ID, map[string]interface{}{"last_login": now}); err != nil {
		logger.Log.Warn("Failed to record last login", zap.String("userId", user.ID), zap.Error(err))
	}
	user.LastLogin = &now

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) VerifyEmail(token string) error {
	user, err := s.UserRepo.FindByVerificationToken(util.HashToken(token), time.Now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrInvalidToken
		}
		return err
	}
	return s.UserRepo.UpdateFields(user.ID, map[string]interface{}{
		"is_verified":          true,
		"verification_token":   "",
		"verification_expires": nil,
	})
}

func (s *AuthService) ResendVerification(user *model.User) error {
	if user.IsVerified {
		return util.ErrBadRequest("Email is already verified")
	}

	plain, digest, err := util.NewToken()
	if err != nil {
		return err
	}
	expires := time.Now().Add(s.Cfg.JWT.VerifyExpire)
	if err := s.UserRepo.UpdateFields(user.ID, map[string]interface{}{
		"verification_token":   digest,
		"verification_expires": expires,
	}); err != nil {
		return err
	}

	s.sendVerificationEmail(user, plain)
	return nil
}

// ForgotPassword never reveals whether the address is registered.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	allowed, err := s.ResetLimiter.Allow(ctx, email)
	if err != nil {
		return err
	}
	if !allowed {
		return util.ErrTooManyRequests("Too many password reset requests, please try again later")
	}

	user, err := s.UserRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	plain, digest, err := util.NewToken()
	if err != nil {
		return err
	}
	expires := time.Now().Add(s.Cfg.JWT.ResetExpire)
	if err := s.UserRepo.UpdateFields(user.ID, map[string]interface{}{
		"reset_password_token":  digest,
		"reset_password_expire": expires,
	}); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/api/auth/reset-password/%s", strings.TrimRight(s.Cfg.Server.BaseURL, "/"), plain)
	s.sendEmail(user.Email, "Password reset request",
		fmt.Sprintf("<p>Hi %s,</p><p>Use the link below to reset your password. It expires in %d minutes.</p><p><a href=\"%s\">%s</a></p>",
			user.Username, int(s.Cfg.JWT.ResetExpire.Minutes()), link, link))
	return nil
}

func (s *AuthService) ResetPassword(token, password string) error {
	if err := ValidatePassword(password); err != nil {
		return err
	}

	user, err := s.UserRepo.FindByResetToken(util.HashToken(token), time.Now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrInvalidToken
		}
		return err
	}

	hashed, err := HashPassword(password)
	if err != nil {
		return err
	}
	return s.UserRepo.UpdateFields(user.ID, map[string]interface{}{
		"password":              hashed,
		"reset_password_token":  "",
		"reset_password_expire": nil,
	})
}

func (s *AuthService) ChangePassword(user *model.User, current, next string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)); err != nil {
		return util.ErrBadRequest("Current password is incorrect")
	}
	if err := ValidatePassword(next); err != nil {
		return err
	}
	hashed, err := HashPassword(next)
	if err != nil {
		return err
	}
	return s.UserRepo.UpdateFields(user.ID, map[string]interface{}{"password": hashed})
}

type ProfileInput struct {
	Username *string
	FullName *string
	Bio      *string
	Location *string
	Website  *string
	Avatar   *string
	Github   *string
	Twitter  *string
}

// UpdateProfile writes only the provided fields and returns the stored user.
func (s *AuthService) UpdateProfile(user *model.User, in ProfileInput) (*model.User, error) {
	fields := map[string]interface{}{}

	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if username != user.Username {
			if err := ValidateUsername(username); err != nil {
				return nil, err
			}
			if exists, err := s.UserRepo.UsernameExists(username); err != nil {
				return nil, err
			} else if exists {
				return nil, util.ErrUsernameTaken
			}
			fields["username"] = username
		}
	}

	set := func(column string, v *string) {
		if v != nil {
			fields[column] = strings.TrimSpace(*v)
		}
	}
	set("profile_full_name", in.FullName)
	set("profile_bio", in.Bio)
	set("profile_location", in.Location)
	set("profile_website", in.Website)
	set("profile_avatar", in.Avatar)
	set("profile_github", in.Github)
	set("profile_twitter", in.Twitter)

	if err := s.saveFields(user.ID, fields); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ErrUsernameTaken
		}
		return nil, err
	}
	return s.UserRepo.FindByID(user.ID)
}

// saveFields skips the write when nothing changed.
func (s *AuthService) saveFields(userID string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return s.UserRepo.UpdateFields(userID, fields)
}

type SettingsInput struct {
	EmailNotifications *bool
	ShowEmail          *bool
	Theme              *string
	Language           *string
}

var allowedThemes = map[string]bool{"light": true, "dark": true, "system": true}

func (s *AuthService) UpdateSettings(user *model.User, in SettingsInput) (*model.User, error) {
	fields := map[string]interface{}{}
	if in.EmailNotifications != nil {
		fields["settings_email_notifications"] = *in.EmailNotifications
	}
	if in.ShowEmail != nil {
		fields["settings_show_email"] = *in.ShowEmail
	}
	if in.Theme != nil {
		if !allowedThemes[*in.Theme] {
			return nil, util.ErrBadRequest("Theme must be light, dark or system")
		}
		fields["settings_theme"] = *in.Theme
	}
	if in.Language != nil {
		fields["settings_language"] = *in.Language
	}

	if err := s.saveFields(user.ID, fields); err != nil {
		return nil, err
	}
	return s.UserRepo.FindByID(user.ID)
}

func (s *AuthService) sendVerificationEmail(user *model.User, token string) {
	link := fmt.Sprintf("%s/api/auth/verify-email/%s", strings.TrimRight(s.Cfg.Server.BaseURL, "/"), token)
	s.sendEmail(user.Email, "Verify your email",
		fmt.Sprintf("<p>Hi %s,</p><p>Please confirm your email address:</p><p><a href=\"%s\">%s</a></p>", user.Username, link, link))
}

// sendEmail swallows delivery failures; the account change already happened.
func (s *AuthService) sendEmail(to, subject, body string) {
	if s.Mailer == nil {
		return
	}
	if err := s.Mailer.Send(to, subject, body); err != nil {
		logger.Log.Error("Failed to send email",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err),
		)
	}
}
