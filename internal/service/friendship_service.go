package service

import (
	"fmt"
	"qa_forum_backend/internal/model"
	"qa_forum_backend/internal/repository"
	"qa_forum_backend/internal/util"
)

type FriendshipService struct {
	FriendRepo    *repository.FriendshipRepository
	UserRepo      *repository.UserRepository
	Notifications *NotificationService
}

func NewFriendshipService(friendRepo *repository.FriendshipRepository, userRepo *repository.UserRepository, notifications *NotificationService) *FriendshipService {
	return &FriendshipService{
		FriendRepo:    friendRepo,
		UserRepo:      userRepo,
		Notifications: notifications,
	}
}

func (s *FriendshipService) List(userID string) ([]PublicUser, error) {
	ids, err := s.FriendRepo.FriendIDsCached(userID)
	if err != nil {
		return nil, err
	}
	users, err := s.UserRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	return publicUsers(users), nil
}

// Add creates the friendship immediately; there is no approval step.
func (s *FriendshipService) Add(user *model.User, friendID string) error {
	if user.ID == friendID {
		return util.ErrBadRequest("You cannot add yourself as a friend")
	}
	if _, err := s.UserRepo.FindByID(friendID); err != nil {
		return err
	}
	exists, err := s.FriendRepo.Exists(user.ID, friendID)
	if err != nil {
		return err
	}
	if exists {
		return util.ErrBadRequest("Already friends")
	}
	if err := s.FriendRepo.Create(user.ID, friendID); err != nil {
		return err
	}

	s.Notifications.Notify(NotifyInput{
		RecipientID: friendID,
		SenderID:    user.ID,
		Type:        model.NotifyFriendAdded,
		Title:       "New friend",
		Message:     fmt.Sprintf("%s added you as a friend", user.Username),
	})
	return nil
}

func (s *FriendshipService) Remove(userID, friendID string) error {
	removed, err := s.FriendRepo.Delete(userID, friendID)
	if err != nil {
		return err
	}
	if !removed {
		return util.ErrBadRequest("Not friends")
	}
	return nil
}

func (s *FriendshipService) Status(userID, otherID string) (bool, error) {
	return s.FriendRepo.Exists(userID, otherID)
}
