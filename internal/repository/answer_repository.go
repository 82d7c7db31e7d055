package repository

import (
	"errors"
	"qa_forum_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

// ErrAcceptConflict reports that the question's accepted answer changed after
// the caller read it.
var ErrAcceptConflict = errors.New("accepted answer changed concurrently")

type AnswerRepository struct {
	DB *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) *AnswerRepository {
	return &AnswerRepository{DB: db}
}

// Create inserts the answer and bumps the question's answer_count in one
// transaction.
func (r *AnswerRepository) Create(a *model.Answer) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("User").Create(a).Error; err != nil {
			return err
		}
		return tx.Model(&model.Question{}).Where("id = ?", a.QuestionID).
			UpdateColumn("answer_count", gorm.Expr("answer_count + ?", 1)).Error
	})
}

func (r *AnswerRepository) FindByID(id string) (*model.Answer, error) {
	var a model.Answer
	if err := r.DB.Preload("User").Where("id = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// ListByQuestion orders the accepted answer first, then by votes, then oldest.
func (r *AnswerRepository) ListByQuestion(questionID string) ([]model.Answer, error) {
	var answers []model.Answer
	err := r.DB.Preload("User").
		Where("question_id = ?", questionID).
		Order("is_accepted DESC").
		Order("votes DESC").
		Order("created_at ASC").
		Find(&answers).Error
	return answers, err
}

func (r *AnswerRepository) ListByUser(userID string, offset, limit int) ([]model.Answer, int64, error) {
	db := r.DB.Model(&model.Answer{}).Where("user_id = ?", userID)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var answers []model.Answer
	err := db.Preload("User").Order("created_at DESC").Offset(offset).Limit(limit).Find(&answers).Error
	return answers, total, err
}

func (r *AnswerRepository) UpdateBody(id, body string) error {
	return r.DB.Model(&model.Answer{}).Where("id = ?", id).Update("body", body).Error
}

func (r *AnswerRepository) Vote(id, ownerID string, delta, reputation int) (int, error) {
	var votes int
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Answer{}).Where("id = ?", id).
			UpdateColumn("votes", gorm.Expr("votes + ?", delta)).Error; err != nil {
			return err
		}
		if err := addReputation(tx, ownerID, reputation); err != nil {
			return err
		}
		return tx.Model(&model.Answer{}).Where("id = ?", id).Pluck("votes", &votes).Error
	})
	return votes, err
}

// AcceptedAnswerID returns the question's accepted answer id, nil when none.
func (r *AnswerRepository) AcceptedAnswerID(questionID string) (*string, error) {
	var q model.Question
	if err := r.DB.Select("id", "accepted_answer_id").Where("id = ?", questionID).First(&q).Error; err != nil {
		return nil, err
	}
	return q.AcceptedAnswerID, nil
}

// Accept marks answer as the accepted one for its question. expected is the
// accepted answer id the caller saw; if the question no longer carries it the
// transaction aborts with ErrAcceptConflict. A previously accepted answer is
// unset and its author's bonus revoked. No bonus is paid when the answer
// author owns the question.
func (r *AnswerRepository) Accept(answer *model.Answer, questionOwnerID string, expected *string, bonus int) error {
	now := time.Now()
	return r.DB.Transaction(func(tx *gorm.DB) error {
		// The conditional write takes the question row lock first, so a
		// concurrent accept waits here and then sees a changed id.
		cas := tx.Model(&model.Question{}).Where("id = ?", answer.QuestionID)
		if expected == nil {
			cas = cas.Where("accepted_answer_id IS NULL")
		} else {
			cas = cas.Where("accepted_answer_id = ?", *expected)
		}
		res := cas.UpdateColumn("accepted_answer_id", answer.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAcceptConflict
		}

		var previous []model.Answer
		if err := tx.Select("id", "user_id").
			Where("question_id = ? AND is_accepted = ? AND id <> ?", answer.QuestionID, true, answer.ID).
			Find(&previous).Error; err != nil {
			return err
		}
		for _, p := range previous {
			if err := tx.Model(&model.Answer{}).Where("id = ?", p.ID).
				Updates(map[string]interface{}{"is_accepted": false, "accepted_at": nil}).Error; err != nil {
				return err
			}
			if p.UserID != questionOwnerID {
				if err := addReputation(tx, p.UserID, -bonus); err != nil {
					return err
				}
			}
		}

		if err := tx.Model(&model.Answer{}).Where("id = ?", answer.ID).
			Updates(map[string]interface{}{"is_accepted": true, "accepted_at": now}).Error; err != nil {
			return err
		}
		if answer.UserID != questionOwnerID {
			if err := addReputation(tx, answer.UserID, bonus); err != nil {
				return err
			}
		}

		answer.IsAccepted = true
		answer.AcceptedAt = &now
		return nil
	})
}
