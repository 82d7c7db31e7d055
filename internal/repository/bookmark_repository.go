package repository

import (
	"qa_forum_backend/internal/model"

	"gorm.io/gorm"
)

type BookmarkRepository struct {
	DB *gorm.DB
}

func NewBookmarkRepository(db *gorm.DB) *BookmarkRepository {
	return &BookmarkRepository{DB: db}
}

func (r *BookmarkRepository) Create(userID, questionID string) error {
	return r.DB.Create(&model.Bookmark{UserID: userID, QuestionID: questionID}).Error
}

// Delete reports whether a row was removed.
func (r *BookmarkRepository) Delete(userID, questionID string) (bool, error) {
	res := r.DB.Where("user_id = ? AND question_id = ?", userID, questionID).Delete(&model.Bookmark{})
	return res.RowsAffected > 0, res.Error
}

func (r *BookmarkRepository) Exists(userID, questionID string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Bookmark{}).
		Where("user_id = ? AND question_id = ?", userID, questionID).
		Count(&count).Error
	return count > 0, err
}

// ListByUser returns bookmarks with their questions, newest bookmark first.
func (r *BookmarkRepository) ListByUser(userID string, offset, limit int) ([]model.Bookmark, int64, error) {
	db := r.DB.Model(&model.Bookmark{}).Where("user_id = ?", userID)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var bookmarks []model.Bookmark
	err := db.Preload("Question.User").
		Preload("Question.Tags", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&bookmarks).Error
	return bookmarks, total, err
}
