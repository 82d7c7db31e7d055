package service

import (
	"fmt"
	"qa_forum_backend/internal/model"
	"qa_forum_backend/internal/repository"
	"qa_forum_backend/internal/util"
	"qa_forum_backend/pkg/monitoring"
	"time"
)

type UserService struct {
	UserRepo      *repository.UserRepository
	FollowRepo    *repository.FollowRepository
	QuestionRepo  *repository.QuestionRepository
	AnswerRepo    *repository.AnswerRepository
	Notifications *NotificationService
}

func NewUserService(
	userRepo *repository.UserRepository,
	followRepo *repository.FollowRepository,
	questionRepo *repository.QuestionRepository,
	answerRepo *repository.AnswerRepository,
	notifications *NotificationService,
) *UserService {
	return &UserService{
		UserRepo:      userRepo,
		FollowRepo:    followRepo,
		QuestionRepo:  questionRepo,
		AnswerRepo:    answerRepo,
		Notifications: notifications,
	}
}

// PublicUser is the profile shown to other users.
type PublicUser struct {
	ID          string                 `json:"id"`
	Username    string                 `json:"username"`
	Email       string                 `json:"email,omitempty"`
	Reputation  int                    `json:"reputation"`
	Badges      []string               `json:"badges"`
	Profile     model.Profile          `json:"profile"`
	IsVerified  bool                   `json:"isVerified"`
	IsAdmin     bool                   `json:"isAdmin"`
	CreatedAt   time.Time              `json:"createdAt"`
	LastSeen    *time.Time             `json:"lastSeen,omitempty"`
	Counts      *repository.UserCounts `json:"counts,omitempty"`
	IsFollowing *bool                  `json:"isFollowing,omitempty"`
}

// NewPublicUser hides the email unless the owner opted in.
func NewPublicUser(u *model.User) PublicUser {
	p := PublicUser{
		ID:         u.ID,
		Username:   u.Username,
		Reputation: u.Reputation,
		Badges:     u.Badges,
		Profile:    u.Profile,
		IsVerified: u.IsVerified,
		IsAdmin:    u.IsAdmin,
		CreatedAt:  u.CreatedAt,
		LastSeen:   u.LastSeen,
	}
	if p.Badges == nil {
		p.Badges = []string{}
	}
	if u.Settings.ShowEmail {
		p.Email = u.Email
	}
	return p
}

func publicUsers(users []model.User) []PublicUser {
	out := make([]PublicUser, 0, len(users))
	for i := range users {
		out = append(out, NewPublicUser(&users[i]))
	}
	return out
}

func (s *UserService) List(search, sort string, page util.Page) ([]PublicUser, int64, error) {
	users, total, err := s.UserRepo.List(repository.UserFilter{Search: search, Sort: sort}, page.Offset(), page.Limit)
	if err != nil {
		return nil, 0, err
	}
	return publicUsers(users), total, nil
}

func (s *UserService) Profile(id, viewerID string) (*PublicUser, error) {
	user, err := s.UserRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	counts, err := s.UserRepo.Counts(id)
	if err != nil {
		return nil, err
	}
	p := NewPublicUser(user)
	p.Counts = counts
	if viewerID != "" && viewerID != id {
		following, err := s.FollowRepo.Exists(viewerID, id)
		if err != nil {
			return nil, err
		}
		p.IsFollowing = &following
	}
	return &p, nil
}

func (s *UserService) Questions(userID string, page util.Page) ([]model.Question, int64, error) {
	if _, err := s.UserRepo.FindByID(userID); err != nil {
		return nil, 0, err
	}
	questions, total, err := s.QuestionRepo.List(repository.QuestionFilter{UserID: userID}, page.Offset(), page.Limit)
	if err != nil {
		return nil, 0, err
	}
	if questions == nil {
		questions = []model.Question{}
	}
	return questions, total, nil
}

func (s *UserService) Answers(userID string, page util.Page) ([]model.Answer, int64, error) {
	if _, err := s.UserRepo.FindByID(userID); err != nil {
		return nil, 0, err
	}
	answers, total, err := s.AnswerRepo.ListByUser(userID, page.Offset(), page.Limit)
	if err != nil {
		return nil, 0, err
	}
	if answers == nil {
		answers = []model.Answer{}
	}
	return answers, total, nil
}

func (s *UserService) Follow(user *model.User, targetID string) error {
	if user.ID == targetID {
		return util.ErrBadRequest("You cannot follow yourself")
	}
	if _, err := s.UserRepo.FindByID(targetID); err != nil {
		return err
	}
	exists, err := s.FollowRepo.Exists(user.ID, targetID)
	if err != nil {
		return err
	}
	if exists {
		return util.ErrBadRequest("Already following")
	}
	if err := s.FollowRepo.Create(user.ID, targetID); err != nil {
		return err
	}

	s.Notifications.Notify(NotifyInput{
		RecipientID: targetID,
		SenderID:    user.ID,
		Type:        model.NotifyNewFollower,
		Title:       "New follower",
		Message:     fmt.Sprintf("%s started following you", user.Username),
	})
	monitoring.RecordEvent("user_followed")
	return nil
}

func (s *UserService) Unfollow(user *model.User, targetID string) error {
	removed, err := s.FollowRepo.Delete(user.ID, targetID)
	if err != nil {
		return err
	}
	if !removed {
		return util.ErrBadRequest("Not following this user")
	}
	return nil
}

func (s *UserService) Followers(userID string) ([]PublicUser, error) {
	if _, err := s.UserRepo.FindByID(userID); err != nil {
		return nil, err
	}
	users, err := s.FollowRepo.Followers(userID)
	if err != nil {
		return nil, err
	}
	return publicUsers(users), nil
}

func (s *UserService) Following(userID string) ([]PublicUser, error) {
	if _, err := s.UserRepo.FindByID(userID); err != nil {
		return nil, err
	}
	users, err := s.FollowRepo.Following(userID)
	if err != nil {
		return nil, err
	}
	return publicUsers(users), nil
}
