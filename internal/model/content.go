package model

import "gorm.io/gorm"

// ContentType discriminates the polymorphic content references held by
// comments and reports.
type ContentType string

const (
	ContentQuestion ContentType = "question"
	ContentAnswer   ContentType = "answer"
	ContentComment  ContentType = "comment"
)

func (t ContentType) Commentable() bool {
	return t == ContentQuestion || t == ContentAnswer
}

func (t ContentType) Reportable() bool {
	return t == ContentQuestion || t == ContentAnswer || t == ContentComment
}

// ContentRef is a typed pointer to any question, answer or comment.
type ContentRef struct {
	Type ContentType
	ID   string
}

type Comment struct {
	UUIDBase
	UserID      string      `gorm:"index;type:varchar(36);not null" json:"userId"`
	User        User        `gorm:"foreignKey:UserID;constraint:false" json:"-"`
	Body        string      `gorm:"type:text;not null" json:"body"`
	ContentID   string      `gorm:"index:idx_comment_content;type:varchar(36);not null" json:"contentId"`
	ContentType ContentType `gorm:"index:idx_comment_content;size:20;not null" json:"contentType"`

	Author *UserSummary `gorm:"-" json:"author,omitempty"`
}

func (Comment) TableName() string {
	return "comments"
}

func (c *Comment) AfterFind(tx *gorm.DB) error {
	if c.User.ID != "" {
		summary := c.User.Summary()
		c.Author = &summary
	}
	return nil
}

func (c *Comment) Parent() ContentRef {
	return ContentRef{Type: c.ContentType, ID: c.ContentID}
}
