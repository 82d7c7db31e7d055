package repository

import (
	"qa_forum_backend/internal/model"

	"gorm.io/gorm"
)

type FollowRepository struct {
	DB *gorm.DB
}

func NewFollowRepository(db *gorm.DB) *FollowRepository {
	return &FollowRepository{DB: db}
}

func (r *FollowRepository) Create(followerID, followingID string) error {
	return r.DB.Create(&model.Follow{FollowerID: followerID, FollowingID: followingID}).Error
}

func (r *FollowRepository) Delete(followerID, followingID string) (bool, error) {
	res := r.DB.Where("follower_id = ? AND following_id = ?", followerID, followingID).Delete(&model.Follow{})
	return res.RowsAffected > 0, res.Error
}

func (r *FollowRepository) Exists(followerID, followingID string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	return count > 0, err
}

func (r *FollowRepository) Followers(userID string) ([]model.User, error) {
	var users []model.User
	err := r.DB.Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.following_id = ?", userID).
		Order("follows.created_at DESC").
		Find(&users).Error
	return users, err
}

func (r *FollowRepository) Following(userID string) ([]model.User, error) {
	var users []model.User
	err := r.DB.Joins("JOIN follows ON follows.following_id = users.id").
		Where("follows.follower_id = ?", userID).
		Order("follows.created_at DESC").
		Find(&users).Error
	return users, err
}
