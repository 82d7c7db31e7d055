package service

import (
	"fmt"
	"qa_forum_backend/internal/model"
	"qa_forum_backend/internal/repository"
	"qa_forum_backend/internal/util"
	"qa_forum_backend/pkg/monitoring"
	"strings"
	"unicode/utf8"
)

type CommentService struct {
	CommentRepo   *repository.CommentRepository
	ContentRepo   *repository.ContentRepository
	Notifications *NotificationService
}

func NewCommentService(commentRepo *repository.CommentRepository, contentRepo *repository.ContentRepository, notifications *NotificationService) *CommentService {
	return &CommentService{
		CommentRepo:   commentRepo,
		ContentRepo:   contentRepo,
		Notifications: notifications,
	}
}

func validateCommentBody(body string) (string, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return "", util.ErrBadRequest("Comment body is required")
	}
	if utf8.RuneCountInString(body) > util.MaxCommentLength {
		return "", util.ErrBadRequest(fmt.Sprintf("Comment cannot exceed %d characters", util.MaxCommentLength))
	}
	return body, nil
}

func parseCommentTarget(contentType string) (model.ContentType, error) {
	t := model.ContentType(contentType)
	if !t.Commentable() {
		return "", util.ErrBadRequest("Content type must be 'question' or 'answer'")
	}
	return t, nil
}

func (s *CommentService) List(contentType, contentID string) ([]model.Comment, error) {
	t, err := parseCommentTarget(contentType)
	if err != nil {
		return nil, err
	}
	if _, err := s.ContentRepo.Resolve(t, contentID); err != nil {
		return nil, err
	}
	comments, err := s.CommentRepo.ListByContent(t, contentID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []model.Comment{}
	}
	return comments, nil
}

func (s *CommentService) Create(user *model.User, contentType, contentID, body string) (*model.Comment, error) {
	t, err := parseCommentTarget(contentType)
	if err != nil {
		return nil, err
	}
	body, err = validateCommentBody(body)
	if err != nil {
		return nil, err
	}

	parent, err := s.ContentRepo.Resolve(t, contentID)
	if err != nil {
		return nil, err
	}

	comment := &model.Comment{
		UserID:      user.ID,
		Body:        body,
		ContentID:   contentID,
		ContentType: t,
	}
	if err := s.CommentRepo.Create(comment); err != nil {
		return nil, err
	}
	summary := user.Summary()
	comment.Author = &summary

	notifyType := model.NotifyQuestionCommented
	data := model.NotificationData{QuestionID: parent.QuestionID, CommentID: comment.ID}
	if t == model.ContentAnswer {
		notifyType = model.NotifyAnswerCommented
		data.AnswerID = contentID
	}
	s.Notifications.Notify(NotifyInput{
		RecipientID: parent.OwnerID,
		SenderID:    user.ID,
		Type:        notifyType,
		Title:       fmt.Sprintf("New comment on your %s", t),
		Message:     fmt.Sprintf("%s commented on your %s", user.Username, t),
		Data:        data,
	})
	monitoring.RecordEvent("comment_created")
	return comment, nil
}

func (s *CommentService) Update(user *model.User, id, body string) (*model.Comment, error) {
	body, err := validateCommentBody(body)
	if err != nil {
		return nil, err
	}
	comment, err := s.CommentRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !canModify(user, comment.UserID) {
		return nil, util.ErrNotOwner
	}
	if err := s.CommentRepo.UpdateBody(id, body); err != nil {
		return nil, err
	}
	comment.Body = body
	return comment, nil
}

func (s *CommentService) Delete(user *model.User, id string) error {
	info, err := s.ContentRepo.Resolve(model.ContentComment, id)
	if err != nil {
		return err
	}
	if !canModify(user, info.OwnerID) {
		return util.ErrNotOwner
	}
	return s.ContentRepo.Delete(model.ContentComment, id)
}
