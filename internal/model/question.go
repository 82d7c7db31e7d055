package model

import (
	"time"

	"gorm.io/gorm"
)

type Question struct {
	UUIDBase
	Title            string        `gorm:"size:300;not null" json:"title"`
	Body             string        `gorm:"type:text;not null" json:"body"`
	UserID           string        `gorm:"index;type:varchar(36);not null" json:"userId"`
	User             User          `gorm:"foreignKey:UserID;constraint:false" json:"-"`
	Tags             []QuestionTag `gorm:"foreignKey:QuestionID;constraint:false" json:"-"`
	Votes            int           `gorm:"default:0;index" json:"votes"`
	Views            int           `gorm:"default:0" json:"views"`
	AnswerCount      int           `gorm:"default:0;index" json:"answerCount"`
	CommentCount     int           `gorm:"default:0" json:"commentCount"`
	AcceptedAnswerID *string       `gorm:"type:varchar(36)" json:"acceptedAnswerId"`

	Author  *UserSummary `gorm:"-" json:"author,omitempty"`
	TagList []string     `gorm:"-" json:"tags"`
}

func (Question) TableName() string {
	return "questions"
}

// AfterFind exposes preloaded associations in their response shape.
func (q *Question) AfterFind(tx *gorm.DB) error {
	q.Hydrate()
	return nil
}

func (q *Question) Hydrate() {
	if q.User.ID != "" {
		summary := q.User.Summary()
		q.Author = &summary
	}
	q.TagList = q.TagNames()
}

// TagNames flattens the tag rows in insertion order.
func (q *Question) TagNames() []string {
	tags := make([]string, 0, len(q.Tags))
	for _, t := range q.Tags {
		tags = append(tags, t.Tag)
	}
	return tags
}

// QuestionTag backs the any-match tag filter with an index instead of a string scan.
type QuestionTag struct {
	QuestionID string `gorm:"primaryKey;type:varchar(36)" json:"questionId"`
	Tag        string `gorm:"primaryKey;size:50;index" json:"tag"`
	Position   int    `gorm:"default:0" json:"-"`
}

func (QuestionTag) TableName() string {
	return "question_tags"
}

type Answer struct {
	UUIDBase
	QuestionID   string     `gorm:"index;type:varchar(36);not null" json:"questionId"`
	UserID       string     `gorm:"index;type:varchar(36);not null" json:"userId"`
	User         User       `gorm:"foreignKey:UserID;constraint:false" json:"-"`
	Body         string     `gorm:"type:text;not null" json:"body"`
	Votes        int        `gorm:"default:0" json:"votes"`
	IsAccepted   bool       `gorm:"default:false" json:"isAccepted"`
	AcceptedAt   *time.Time `json:"acceptedAt"`
	CommentCount int        `gorm:"default:0" json:"commentCount"`

	Author *UserSummary `gorm:"-" json:"author,omitempty"`
}

func (Answer) TableName() string {
	return "answers"
}

func (a *Answer) AfterFind(tx *gorm.DB) error {
	if a.User.ID != "" {
		summary := a.User.Summary()
		a.Author = &summary
	}
	return nil
}

type Bookmark struct {
	UserID     string    `gorm:"primaryKey;type:varchar(36)" json:"userId"`
	QuestionID string    `gorm:"primaryKey;type:varchar(36);index" json:"questionId"`
	Question   *Question `gorm:"foreignKey:QuestionID;constraint:false" json:"question,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Bookmark) TableName() string {
	return "bookmarks"
}
