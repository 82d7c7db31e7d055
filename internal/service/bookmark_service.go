package service

import (
	"qa_forum_backend/internal/model"
	"qa_forum_backend/internal/repository"
	"qa_forum_backend/internal/util"
)

type BookmarkService struct {
	BookmarkRepo *repository.BookmarkRepository
	ContentRepo  *repository.ContentRepository
}

func NewBookmarkService(bookmarkRepo *repository.BookmarkRepository, contentRepo *repository.ContentRepository) *BookmarkService {
	return &BookmarkService{BookmarkRepo: bookmarkRepo, ContentRepo: contentRepo}
}

func (s *BookmarkService) Add(userID, questionID string) error {
	if _, err := s.ContentRepo.Resolve(model.ContentQuestion, questionID); err != nil {
		return err
	}
	exists, err := s.BookmarkRepo.Exists(userID, questionID)
	if err != nil {
		return err
	}
	if exists {
		return util.ErrBadRequest("Question already bookmarked")
	}
	return s.BookmarkRepo.Create(userID, questionID)
}

func (s *BookmarkService) Remove(userID, questionID string) error {
	removed, err := s.BookmarkRepo.Delete(userID, questionID)
	if err != nil {
		return err
	}
	if !removed {
		return util.ErrBadRequest("Question not in bookmarks")
	}
	return nil
}

func (s *BookmarkService) IsBookmarked(userID, questionID string) (bool, error) {
	return s.BookmarkRepo.Exists(userID, questionID)
}

// List returns the bookmarked questions, newest bookmark first.
func (s *BookmarkService) List(userID string, page util.Page) ([]model.Question, int64, error) {
	bookmarks, total, err := s.BookmarkRepo.ListByUser(userID, page.Offset(), page.Limit)
	if err != nil {
		return nil, 0, err
	}
	questions := make([]model.Question, 0, len(bookmarks))
	for _, b := range bookmarks {
		if b.Question != nil {
			questions = append(questions, *b.Question)
		}
	}
	return questions, total, nil
}
