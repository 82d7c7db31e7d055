package repository

import (
	"qa_forum_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type NotificationRepository struct {
	DB *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

func (r *NotificationRepository) Create(n *model.Notification) error {
	return r.DB.Omit("Sender").Create(n).Error
}

func (r *NotificationRepository) List(recipientID string, unreadOnly bool, offset, limit int) ([]model.Notification, int64, error) {
	db := r.DB.Model(&model.Notification{}).Where("recipient_id = ?", recipientID)
	if unreadOnly {
		db = db.Where("is_read = ?", false)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []model.Notification
	err := db.Preload("Sender").Order("created_at DESC").Offset(offset).Limit(limit).Find(&notifications).Error
	return notifications, total, err
}

func (r *NotificationRepository) CountUnread(recipientID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	return count, err
}

// MarkRead only touches the recipient's own notification.
func (r *NotificationRepository) MarkRead(id, recipientID string) (bool, error) {
	res := r.DB.Model(&model.Notification{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Updates(map[string]interface{}{"is_read": true, "read_at": time.Now()})
	return res.RowsAffected > 0, res.Error
}

func (r *NotificationRepository) MarkAllRead(recipientID string) (int64, error) {
	res := r.DB.Model(&model.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": time.Now()})
	return res.RowsAffected, res.Error
}

func (r *NotificationRepository) Delete(id, recipientID string) (bool, error) {
	res := r.DB.Where("id = ? AND recipient_id = ?", id, recipientID).Delete(&model.Notification{})
	return res.RowsAffected > 0, res.Error
}
