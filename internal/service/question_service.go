package service

import (
	"context"
	"fmt"
	"qa_forum_backend/internal/model"
	"qa_forum_backend/internal/repository"
	"qa_forum_backend/internal/util"
	"qa_forum_backend/pkg/logger"
	"qa_forum_backend/pkg/monitoring"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const viewDedupWindow = 10 * time.Minute

type QuestionService struct {
	QuestionRepo  *repository.QuestionRepository
	AnswerRepo    *repository.AnswerRepository
	CommentRepo   *repository.CommentRepository
	ContentRepo   *repository.ContentRepository
	Notifications *NotificationService
	Redis         *redis.Client
}

func NewQuestionService(
	questionRepo *repository.QuestionRepository,
	answerRepo *repository.AnswerRepository,
	commentRepo *repository.CommentRepository,
	contentRepo *repository.ContentRepository,
	notifications *NotificationService,
	rdb *redis.Client,
) *QuestionService {
	return &QuestionService{
		QuestionRepo:  questionRepo,
		AnswerRepo:    answerRepo,
		CommentRepo:   commentRepo,
		ContentRepo:   contentRepo,
		Notifications: notifications,
		Redis:         rdb,
	}
}

type QuestionInput struct {
	Title string
	Body  string
	Tags  []string
}

func validateQuestion(in *QuestionInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Body = strings.TrimSpace(in.Body)
	n := utf8.RuneCountInString(in.Title)
	if n < 5 || n > 300 {
		return util.ErrBadRequest("Title must be between 5 and 300 characters")
	}
	if in.Body == "" {
		return util.ErrBadRequest("Body is required")
	}
	if len(util.NormalizeTags(in.Tags, 0)) > util.MaxTagsPerQuestion {
		return util.ErrBadRequest(fmt.Sprintf("A question can have at most %d tags", util.MaxTagsPerQuestion))
	}
	in.Tags = util.NormalizeTags(in.Tags, util.MaxTagsPerQuestion)
	return nil
}

// canModify allows the author or any admin.
func canModify(user *model.User, ownerID string) bool {
	return user != nil && (user.IsAdmin || user.ID == ownerID)
}

func (s *QuestionService) List(filter repository.QuestionFilter, page util.Page) ([]model.Question, int64, error) {
	filter.Tags = util.NormalizeTags(filter.Tags, 0)
	questions, total, err := s.QuestionRepo.List(filter, page.Offset(), page.Limit)
	if err != nil {
		return nil, 0, err
	}
	if questions == nil {
		questions = []model.Question{}
	}
	return questions, total, nil
}

type AnswerDetail struct {
	model.Answer
	Comments []model.Comment `json:"comments"`
}

type QuestionDetail struct {
	Question *model.Question `json:"question"`
	Answers  []AnswerDetail  `json:"answers"`
	Comments []model.Comment `json:"comments"`
}

// Get loads a question with its answers and comments and counts the view.
// viewerKey identifies the viewer for de-duplication.
func (s *QuestionService) Get(ctx context.Context, id, viewerKey string) (*QuestionDetail, error) {
	q, err := s.QuestionRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	if s.shouldCountView(ctx, id, viewerKey) {
		if err := s.QuestionRepo.IncrementViews(id); err != nil {
			logger.Log.Warn("Failed to increment views", zap.String("questionId", id), zap.Error(err))
		} else {
			q.Views++
		}
	}

	answers, err := s.AnswerRepo.ListByQuestion(id)
	if err != nil {
		return nil, err
	}
	answerIDs := make([]string, len(answers))
	for i, a := range answers {
		answerIDs[i] = a.ID
	}

	answerComments, err := s.CommentRepo.ListByContents(model.ContentAnswer, answerIDs)
	if err != nil {
		return nil, err
	}
	byAnswer := make(map[string][]model.Comment, len(answers))
	for _, c := range answerComments {
		byAnswer[c.ContentID] = append(byAnswer[c.ContentID], c)
	}

	details := make([]AnswerDetail, len(answers))
	for i, a := range answers {
		comments := byAnswer[a.ID]
		if comments == nil {
			comments = []model.Comment{}
		}
		details[i] = AnswerDetail{Answer: a, Comments: comments}
	}

	comments, err := s.CommentRepo.ListByContent(model.ContentQuestion, id)
	if err != nil {
		return nil, err
	}

	return &QuestionDetail{Question: q, Answers: details, Comments: comments}, nil
}

func (s *QuestionService) shouldCountView(ctx context.Context, questionID, viewerKey string) bool {
	if s.Redis == nil || viewerKey == "" {
		return true
	}
	key := fmt.Sprintf("forum:view:%s:%s", questionID, viewerKey)
	fresh, err := s.Redis.SetNX(ctx, key, 1, viewDedupWindow).Result()
	if err != nil {
		return true
	}
	return fresh
}

func (s *QuestionService) Create(user *model.User, in QuestionInput) (*model.Question, error) {
	if err := validateQuestion(&in); err != nil {
		return nil, err
	}

	q := &model.Question{
		Title:  in.Title,
		Body:   in.Body,
		UserID: user.ID,
	}
	if err := s.QuestionRepo.Create(q, in.Tags); err != nil {
		return nil, err
	}
	q.User = *user
	q.Hydrate()
	monitoring.RecordEvent("question_created")
	return q, nil
}

func (s *QuestionService) Update(user *model.User, id string, in QuestionInput, replaceTags bool) (*model.Question, error) {
	q, err := s.QuestionRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !canModify(user, q.UserID) {
		return nil, util.ErrNotOwner
	}

	if in.Title == "" {
		in.Title = q.Title
	}
	if in.Body == "" {
		in.Body = q.Body
	}
	if !replaceTags {
		in.Tags = q.TagNames()
	}
	if err := validateQuestion(&in); err != nil {
		return nil, err
	}

	q.Title = in.Title
	q.Body = in.Body
	var tags []string
	if replaceTags {
		tags = in.Tags
	}
	if err := s.QuestionRepo.Update(q, tags); err != nil {
		return nil, err
	}
	return s.QuestionRepo.FindByID(id)
}

func (s *QuestionService) Delete(user *model.User, id string) error {
	info, err := s.ContentRepo.Resolve(model.ContentQuestion, id)
	if err != nil {
		return err
	}
	if !canModify(user, info.OwnerID) {
		return util.ErrNotOwner
	}
	return s.ContentRepo.Delete(model.ContentQuestion, id)
}

// voteDelta maps up/down to the vote increment.
func voteDelta(voteType string) (int, error) {
	switch voteType {
	case "up":
		return 1, nil
	case "down":
		return -1, nil
	}
	return 0, util.ErrInvalidVoteType
}

func (s *QuestionService) Vote(user *model.User, id, voteType string) (int, error) {
	delta, err := voteDelta(voteType)
	if err != nil {
		return 0, err
	}
	info, err := s.ContentRepo.Resolve(model.ContentQuestion, id)
	if err != nil {
		return 0, err
	}
	if info.OwnerID == user.ID {
		return 0, util.ErrSelfVote
	}

	rep := util.RepQuestionUpvote
	if delta < 0 {
		rep = util.RepQuestionDownvote
	}
	votes, err := s.QuestionRepo.Vote(id, info.OwnerID, delta, rep)
	if err != nil {
		return 0, err
	}

	if delta > 0 {
		s.Notifications.Notify(NotifyInput{
			RecipientID: info.OwnerID,
			SenderID:    user.ID,
			Type:        model.NotifyQuestionUpvoted,
			Title:       "Your question was upvoted",
			Message:     fmt.Sprintf("%s upvoted your question", user.Username),
			Data:        model.NotificationData{QuestionID: id},
		})
	}
	monitoring.RecordEvent("question_" + voteType + "voted")
	return votes, nil
}

func (s *QuestionService) PopularTags(limit int) ([]repository.TagCount, error) {
	tags, err := s.QuestionRepo.PopularTags(limit)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []repository.TagCount{}
	}
	return tags, nil
}
