package repository

import (
	"qa_forum_backend/internal/model"

	"gorm.io/gorm"
)

type CommentRepository struct {
	DB *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{DB: db}
}

// Create inserts the comment and bumps the parent's comment_count.
func (r *CommentRepository) Create(c *model.Comment) error {
	table, ok := counterTables[c.ContentType]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("User").Create(c).Error; err != nil {
			return err
		}
		return tx.Table(table).Where("id = ?", c.ContentID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + ?", 1)).Error
	})
}

func (r *CommentRepository) FindByID(id string) (*model.Comment, error) {
	var c model.Comment
	if err := r.DB.Preload("User").Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CommentRepository) ListByContent(t model.ContentType, contentID string) ([]model.Comment, error) {
	var comments []model.Comment
	err := r.DB.Preload("User").
		Where("content_type = ? AND content_id = ?", t, contentID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

// ListByContents fetches the comments of many parents at once, oldest first.
func (r *CommentRepository) ListByContents(t model.ContentType, contentIDs []string) ([]model.Comment, error) {
	var comments []model.Comment
	if len(contentIDs) == 0 {
		return comments, nil
	}
	err := r.DB.Preload("User").
		Where("content_type = ? AND content_id IN ?", t, contentIDs).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

func (r *CommentRepository) UpdateBody(id, body string) error {
	return r.DB.Model(&model.Comment{}).Where("id = ?", id).Update("body", body).Error
}
