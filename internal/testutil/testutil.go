// Package testutil builds throwaway databases and configs for package tests.
package testutil

import (
	"qa_forum_backend/internal/config"
	"qa_forum_backend/internal/model"
	"qa_forum_backend/pkg/database"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const Password = "password123"

// NewDB opens a migrated in-memory sqlite database. A single connection keeps
// every query on the same in-memory schema.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func Config(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server:   config.ServerConfig{Port: "5000", Mode: "test", BaseURL: "http://localhost:5000"},
		Database: config.DatabaseConfig{Driver: "sqlite"},
		JWT: config.JWTConfig{
			Secret:        "test-secret",
			ExpireTime:    time.Hour,
			VerifyExpire:  24 * time.Hour,
			ResetExpire:   time.Hour,
			ResetAttempts: 3,
		},
		Storage:   config.StorageConfig{Type: "local", LocalPath: t.TempDir()},
		Upload:    config.UploadConfig{MaxSizeMB: 1},
		RateLimit: config.RateLimitConfig{MaxRequests: 10000, WindowMinutes: 15},
	}
}

// CreateUser inserts a verified user whose password is Password.
func CreateUser(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &model.User{
		Username:   username,
		Email:      username + "@example.com",
		Password:   string(hashed),
		IsVerified: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// Reputation reads the stored reputation of a user.
func Reputation(t *testing.T, db *gorm.DB, userID string) int {
	t.Helper()
	var user model.User
	require.NoError(t, db.Select("reputation").Where("id = ?", userID).First(&user).Error)
	return user.Reputation
}

// RecordingMailer keeps every message instead of sending it.
type RecordingMailer struct {
	Messages []Mail
}

type Mail struct {
	To      string
	Subject string
	HTML    string
}

func (m *RecordingMailer) Send(to, subject, html string) error {
	m.Messages = append(m.Messages, Mail{To: to, Subject: subject, HTML: html})
	return nil
}

func (m *RecordingMailer) Last() Mail {
	if len(m.Messages) == 0 {
		return Mail{}
	}
	return m.Messages[len(m.Messages)-1]
}
