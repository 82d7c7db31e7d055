package repository

import (
	"qa_forum_backend/internal/model"
	"strings"
	"time"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

type UserFilter struct {
	Search string
	Role   string // admin | user
	Status string // banned | suspended | unverified | active
	Sort   string
}

var userSortColumns = map[string]string{
	"reputation": "reputation DESC",
	"createdAt":  "created_at DESC",
	"username":   "username ASC",
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(id string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("id = ?", id).First(&user).Error
	return &user, err
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", strings.ToLower(email)).First(&user).Error
	return &user, err
}

func (r *UserRepository) FindByUsername(username string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("username = ?", username).First(&user).Error
	return &user, err
}

func (r *UserRepository) EmailExists(email string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.User{}).Where("email = ?", strings.ToLower(email)).Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) UsernameExists(username string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

// FindByVerificationToken matches the stored digest; an expired token reads
// as not found.
func (r *UserRepository) FindByVerificationToken(hashed string, now time.Time) (*model.User, error) {
	var user model.User
	if hashed == "" {
		return nil, gorm.ErrRecordNotFound
	}
	if err := r.DB.Where("verification_token = ?", hashed).First(&user).Error; err != nil {
		return nil, err
	}
	if user.VerificationExpires == nil || !user.VerificationExpires.After(now) {
		return nil, gorm.ErrRecordNotFound
	}
	return &user, nil
}

func (r *UserRepository) FindByResetToken(hashed string, now time.Time) (*model.User, error) {
	var user model.User
	if hashed == "" {
		return nil, gorm.ErrRecordNotFound
	}
	if err := r.DB.Where("reset_password_token = ?", hashed).First(&user).Error; err != nil {
		return nil, err
	}
	if user.ResetPasswordExpire == nil || !user.ResetPasswordExpire.After(now) {
		return nil, gorm.ErrRecordNotFound
	}
	return &user, nil
}

// UpdateFields writes only the given columns, including zero values.
func (r *UserRepository) UpdateFields(id string, fields map[string]interface{}) error {
	return r.DB.Model(&model.User{}).Where("id = ?", id).Updates(fields).Error
}

func (r *UserRepository) UpdateLastSeen(userID string) error {
	return r.DB.Model(&model.User{}).
		Where("id = ?", userID).
		UpdateColumn("last_seen", time.Now()).
		Error
}

func (r *UserRepository) AddReputation(userID string, delta int) error {
	return addReputation(r.DB, userID, delta)
}

func addReputation(db *gorm.DB, userID string, delta int) error {
	if delta == 0 {
		return nil
	}
	return db.Model(&model.User{}).
		Where("id = ?", userID).
		UpdateColumn("reputation", gorm.Expr("reputation + ?", delta)).
		Error
}

func (r *UserRepository) FindTopByReputation(limit int) ([]model.User, error) {
	var users []model.User
	err := r.DB.Order("reputation DESC").Order("created_at ASC").Limit(limit).Find(&users).Error
	return users, err
}

func (r *UserRepository) List(filter UserFilter, offset, limit int) ([]model.User, int64, error) {
	db := r.DB.Model(&model.User{})

	if filter.Search != "" {
		term := "%" + strings.ToLower(filter.Search) + "%"
		db = db.Where("(LOWER(username) LIKE ? OR LOWER(email) LIKE ? OR LOWER(profile_full_name) LIKE ?)", term, term, term)
	}

	switch filter.Role {
	case "admin":
		db = db.Where("is_admin = ?", true)
	case "user":
		db = db.Where("is_admin = ?", false)
	}

	now := time.Now()
	switch filter.Status {
	case "banned":
		db = db.Where("is_banned = ?", true)
	case "suspended":
		db = db.Where("suspended_until > ?", now)
	case "unverified":
		db = db.Where("is_verified = ?", false)
	case "active":
		db = db.Where("is_banned = ? AND (suspended_until IS NULL OR suspended_until <= ?)", false, now)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order, ok := userSortColumns[filter.Sort]
	if !ok {
		order = "created_at DESC"
	}

	var users []model.User
	err := db.Order(order).Offset(offset).Limit(limit).Find(&users).Error
	return users, total, err
}

func (r *UserRepository) FindByIDs(ids []string) ([]model.User, error) {
	var users []model.User
	if len(ids) == 0 {
		return users, nil
	}
	err := r.DB.Where("id IN ?", ids).Order("username ASC").Find(&users).Error
	return users, err
}

// UserCounts aggregates the public profile counters.
type UserCounts struct {
	Questions int64 `json:"questions"`
	Answers   int64 `json:"answers"`
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
}

func (r *UserRepository) Counts(userID string) (*UserCounts, error) {
	var counts UserCounts
	if err := r.DB.Model(&model.Question{}).Where("user_id = ?", userID).Count(&counts.Questions).Error; err != nil {
		return nil, err
	}
	if err := r.DB.Model(&model.Answer{}).Where("user_id = ?", userID).Count(&counts.Answers).Error; err != nil {
		return nil, err
	}
	if err := r.DB.Model(&model.Follow{}).Where("following_id = ?", userID).Count(&counts.Followers).Error; err != nil {
		return nil, err
	}
	if err := r.DB.Model(&model.Follow{}).Where("follower_id = ?", userID).Count(&counts.Following).Error; err != nil {
		return nil, err
	}
	return &counts, nil
}
