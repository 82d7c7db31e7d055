package model

import (
	"time"

	"gorm.io/gorm"
)

type NotificationType string

const (
	NotifyQuestionAnswered  NotificationType = "question_answered"
	NotifyAnswerAccepted    NotificationType = "answer_accepted"
	NotifyQuestionCommented NotificationType = "question_commented"
	NotifyAnswerCommented   NotificationType = "answer_commented"
	NotifyQuestionUpvoted   NotificationType = "question_upvoted"
	NotifyAnswerUpvoted     NotificationType = "answer_upvoted"
	NotifyNewFollower       NotificationType = "new_follower"
	NotifyFriendAdded       NotificationType = "friend_added"
	NotifyReportResolved    NotificationType = "report_resolved"
	NotifyAccountUpdate     NotificationType = "account_update"
	NotifyWelcome           NotificationType = "welcome"
	NotifySystem            NotificationType = "system"
)

// NotificationData points at the content a notification is about.
type NotificationData struct {
	QuestionID string `gorm:"type:varchar(36)" json:"questionId,omitempty"`
	AnswerID   string `gorm:"type:varchar(36)" json:"answerId,omitempty"`
	CommentID  string `gorm:"type:varchar(36)" json:"commentId,omitempty"`
}

type Notification struct {
	UUIDBase
	RecipientID string           `gorm:"index:idx_notification_recipient;type:varchar(36);not null" json:"recipientId"`
	SenderID    *string          `gorm:"index;type:varchar(36)" json:"senderId,omitempty"`
	Sender      *User            `gorm:"foreignKey:SenderID;constraint:false" json:"-"`
	SenderInfo  *UserSummary     `gorm:"-" json:"sender,omitempty"`
	Type        NotificationType `gorm:"size:30;not null" json:"type"`
	Title       string           `gorm:"size:200;not null" json:"title"`
	Message     string           `gorm:"size:500" json:"message"`
	IsRead      bool             `gorm:"default:false;index:idx_notification_recipient" json:"isRead"`
	ReadAt      *time.Time       `json:"readAt,omitempty"`
	Data        NotificationData `gorm:"embedded;embeddedPrefix:data_" json:"data"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) AfterFind(tx *gorm.DB) error {
	if n.Sender != nil && n.Sender.ID != "" {
		summary := n.Sender.Summary()
		n.SenderInfo = &summary
	}
	return nil
}
