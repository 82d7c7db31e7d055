package service

import (
	"errors"
	"fmt"
	"qa_forum_backend/internal/model"
	"qa_forum_backend/internal/repository"
	"qa_forum_backend/internal/util"
	"qa_forum_backend/pkg/monitoring"
	"strings"
)

type AnswerService struct {
	AnswerRepo    *repository.AnswerRepository
	QuestionRepo  *repository.QuestionRepository
	ContentRepo   *repository.ContentRepository
	Notifications *NotificationService
}

func NewAnswerService(
	answerRepo *repository.AnswerRepository,
	questionRepo *repository.QuestionRepository,
	contentRepo *repository.ContentRepository,
	notifications *NotificationService,
) *AnswerService {
	return &AnswerService{
		AnswerRepo:    answerRepo,
		QuestionRepo:  questionRepo,
		ContentRepo:   contentRepo,
		Notifications: notifications,
	}
}

// ListByQuestion returns an empty list for a question that no longer exists.
func (s *AnswerService) ListByQuestion(questionID string) ([]model.Answer, error) {
	answers, err := s.AnswerRepo.ListByQuestion(questionID)
	if err != nil {
		return nil, err
	}
	if answers == nil {
		answers = []model.Answer{}
	}
	return answers, nil
}

func (s *AnswerService) Create(user *model.User, questionID, body string) (*model.Answer, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, util.ErrBadRequest("Answer body is required")
	}

	question, err := s.ContentRepo.Resolve(model.ContentQuestion, questionID)
	if err != nil {
		return nil, err
	}

	answer := &model.Answer{
		QuestionID: questionID,
		UserID:     user.ID,
		Body:       body,
	}
	if err := s.AnswerRepo.Create(answer); err != nil {
		return nil, err
	}
	summary := user.Summary()
	answer.Author = &summary

	s.Notifications.Notify(NotifyInput{
		RecipientID: question.OwnerID,
		SenderID:    user.ID,
		Type:        model.NotifyQuestionAnswered,
		Title:       "New answer to your question",
		Message:     fmt.Sprintf("%s answered your question", user.Username),
		Data:        model.NotificationData{QuestionID: questionID, AnswerID: answer.ID},
	})
	monitoring.RecordEvent("answer_created")
	return answer, nil
}

func (s *AnswerService) Update(user *model.User, id, body string) (*model.Answer, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, util.ErrBadRequest("Answer body is required")
	}

	answer, err := s.AnswerRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !canModify(user, answer.UserID) {
		return nil, util.ErrNotOwner
	}

	if err := s.AnswerRepo.UpdateBody(id, body); err != nil {
		return nil, err
	}
	answer.Body = body
	return answer, nil
}

func (s *AnswerService) Delete(user *model.User, id string) error {
	info, err := s.ContentRepo.Resolve(model.ContentAnswer, id)
	if err != nil {
		return err
	}
	if !canModify(user, info.OwnerID) {
		return util.ErrNotOwner
	}
	return s.ContentRepo.Delete(model.ContentAnswer, id)
}

func (s *AnswerService) Vote(user *model.User, id, voteType string) (int, error) {
	delta, err := voteDelta(voteType)
	if err != nil {
		return 0, err
	}
	info, err := s.ContentRepo.Resolve(model.ContentAnswer, id)
	if err != nil {
		return 0, err
	}
	if info.OwnerID == user.ID {
		return 0, util.ErrSelfVote
	}

	rep := util.RepAnswerUpvote
	if delta < 0 {
		rep = util.RepAnswerDownvote
	}
	votes, err := s.AnswerRepo.Vote(id, info.OwnerID, delta, rep)
	if err != nil {
		return 0, err
	}

	if delta > 0 {
		s.Notifications.Notify(NotifyInput{
			RecipientID: info.OwnerID,
			SenderID:    user.ID,
			Type:        model.NotifyAnswerUpvoted,
			Title:       "Your answer was upvoted",
			Message:     fmt.Sprintf("%s upvoted your answer", user.Username),
			Data:        model.NotificationData{QuestionID: info.QuestionID, AnswerID: id},
		})
	}
	monitoring.RecordEvent("answer_" + voteType + "voted")
	return votes, nil
}

// Accept is restricted to the question owner. Accepting the answer that is
// already accepted changes nothing.
func (s *AnswerService) Accept(user *model.User, id string) (*model.Answer, error) {
	answer, err := s.AnswerRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	question, err := s.ContentRepo.Resolve(model.ContentQuestion, answer.QuestionID)
	if err != nil {
		return nil, err
	}
	if question.OwnerID != user.ID {
		return nil, util.ErrForbidden("Only the question owner can accept an answer")
	}
	if answer.IsAccepted {
		return answer, nil
	}

	current, err := s.AnswerRepo.AcceptedAnswerID(answer.QuestionID)
	if err != nil {
		return nil, err
	}
	if err := s.AnswerRepo.Accept(answer, question.OwnerID, current, util.RepAcceptedAnswer); err != nil {
		if errors.Is(err, repository.ErrAcceptConflict) {
			return nil, util.ErrAcceptConflict
		}
		return nil, err
	}

	s.Notifications.Notify(NotifyInput{
		RecipientID: answer.UserID,
		SenderID:    user.ID,
		Type:        model.NotifyAnswerAccepted,
		Title:       "Your answer was accepted",
		Message:     fmt.Sprintf("%s accepted your answer", user.Username),
		Data:        model.NotificationData{QuestionID: answer.QuestionID, AnswerID: answer.ID},
	})
	monitoring.RecordEvent("answer_accepted")
	return answer, nil
}

func (s *AnswerService) ListByUser(userID string, page util.Page) ([]model.Answer, int64, error) {
	answers, total, err := s.AnswerRepo.ListByUser(userID, page.Offset(), page.Limit)
	if err != nil {
		return nil, 0, err
	}
	if answers == nil {
		answers = []model.Answer{}
	}
	return answers, total, nil
}
