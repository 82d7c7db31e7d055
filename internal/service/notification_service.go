package service

import (
	"qa_forum_backend/internal/model"
	"qa_forum_backend/internal/repository"
	"qa_forum_backend/internal/util"
	"qa_forum_backend/pkg/logger"

	"go.uber.org/zap"
)

// Pusher delivers a stored notification to a live client, if any.
type Pusher interface {
	PushToUsers(userIDs []string, msg StreamMessage)
}

type NotificationService struct {
	Repo   *repository.NotificationRepository
	Pusher Pusher
}

func NewNotificationService(repo *repository.NotificationRepository) *NotificationService {
	return &NotificationService{Repo: repo}
}

type NotifyInput struct {
	RecipientID string
	SenderID    string
	Type        model.NotificationType
	Title       string
	Message     string
	Data        model.NotificationData
}

// Notify records a notification. Self notifications are skipped and failures
// are logged, never returned, so they cannot fail the triggering operation.
func (s *NotificationService) Notify(in NotifyInput) {
	if in.RecipientID == "" || in.RecipientID == in.SenderID {
		return
	}

	n := &model.Notification{
		RecipientID: in.RecipientID,
		Type:        in.Type,
		Title:       in.Title,
		Message:     in.Message,
		Data:        in.Data,
	}
	if in.SenderID != "" {
		sender := in.SenderID
		n.SenderID = &sender
	}

	if err := s.Repo.Create(n); err != nil {
		logger.Log.Warn("Failed to create notification",
			zap.String("recipient", in.RecipientID),
			zap.String("type", string(in.Type)),
			zap.Error(err),
		)
		return
	}

	if s.Pusher != nil {
		s.Pusher.PushToUsers([]string{in.RecipientID}, StreamMessage{Type: StreamNotification, Data: n})
	}
}

type NotificationList struct {
	Notifications []model.Notification
	Total         int64
	UnreadCount   int64
}

func (s *NotificationService) List(userID string, unreadOnly bool, page util.Page) (*NotificationList, error) {
	items, total, err := s.Repo.List(userID, unreadOnly, page.Offset(), page.Limit)
	if err != nil {
		return nil, err
	}
	unread, err := s.Repo.CountUnread(userID)
	if err != nil {
		return nil, err
	}
	return &NotificationList{Notifications: items, Total: total, UnreadCount: unread}, nil
}

func (s *NotificationService) UnreadCount(userID string) (int64, error) {
	return s.Repo.CountUnread(userID)
}

func (s *NotificationService) MarkRead(userID, id string) error {
	ok, err := s.Repo.MarkRead(id, userID)
	if err != nil {
		return err
	}
	if !ok {
		return util.ErrNotFound("Notification not found")
	}
	return nil
}

func (s *NotificationService) MarkAllRead(userID string) (int64, error) {
	return s.Repo.MarkAllRead(userID)
}

func (s *NotificationService) Delete(userID, id string) error {
	ok, err := s.Repo.Delete(id, userID)
	if err != nil {
		return err
	}
	if !ok {
		return util.ErrNotFound("Notification not found")
	}
	return nil
}
