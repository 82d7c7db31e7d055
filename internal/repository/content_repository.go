package repository

import (
	"qa_forum_backend/internal/model"
	"qa_forum_backend/pkg/logger"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ContentInfo is what callers need to know about a polymorphic target.
type ContentInfo struct {
	Type       model.ContentType
	ID         string
	OwnerID    string
	QuestionID string
}

type contentResolver func(db *gorm.DB, id string) (*ContentInfo, error)

// contentResolvers is filled in init; the comment resolver looks up its
// parent through the table.
var contentResolvers map[model.ContentType]contentResolver

func init() {
	contentResolvers = map[model.ContentType]contentResolver{
		model.ContentQuestion: func(db *gorm.DB, id string) (*ContentInfo, error) {
			var q model.Question
			if err := db.Select("id", "user_id").Where("id = ?", id).First(&q).Error; err != nil {
				return nil, err
			}
			return &ContentInfo{Type: model.ContentQuestion, ID: q.ID, OwnerID: q.UserID, QuestionID: q.ID}, nil
		},
		model.ContentAnswer: func(db *gorm.DB, id string) (*ContentInfo, error) {
			var a model.Answer
			if err := db.Select("id", "user_id", "question_id").Where("id = ?", id).First(&a).Error; err != nil {
				return nil, err
			}
			return &ContentInfo{Type: model.ContentAnswer, ID: a.ID, OwnerID: a.UserID, QuestionID: a.QuestionID}, nil
		},
		model.ContentComment: func(db *gorm.DB, id string) (*ContentInfo, error) {
			var c model.Comment
			if err := db.Select("id", "user_id", "content_id", "content_type").Where("id = ?", id).First(&c).Error; err != nil {
				return nil, err
			}
			info := &ContentInfo{Type: model.ContentComment, ID: c.ID, OwnerID: c.UserID}
			if parent, err := resolveContent(db, c.ContentType, c.ContentID); err == nil {
				info.QuestionID = parent.QuestionID
			}
			return info, nil
		},
	}
}

// counterTables maps a commentable parent to the table carrying its
// comment_count column.
var counterTables = map[model.ContentType]string{
	model.ContentQuestion: "questions",
	model.ContentAnswer:   "answers",
}

func resolveContent(db *gorm.DB, t model.ContentType, id string) (*ContentInfo, error) {
	resolve, ok := contentResolvers[t]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return resolve(db, id)
}

type ContentRepository struct {
	DB *gorm.DB
}

func NewContentRepository(db *gorm.DB) *ContentRepository {
	return &ContentRepository{DB: db}
}

func (r *ContentRepository) Resolve(t model.ContentType, id string) (*ContentInfo, error) {
	return resolveContent(r.DB, t, id)
}

// Delete removes a question, answer or comment with everything hanging off it.
func (r *ContentRepository) Delete(t model.ContentType, id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		switch t {
		case model.ContentQuestion:
			return deleteQuestionTx(tx, id)
		case model.ContentAnswer:
			return deleteAnswerTx(tx, id)
		case model.ContentComment:
			return deleteCommentTx(tx, id)
		}
		return gorm.ErrRecordNotFound
	})
}

func resolveReportsTx(tx *gorm.DB, t model.ContentType, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	now := time.Now()
	return tx.Model(&model.Report{}).
		Where("content_type = ? AND content_id IN ? AND status = ?", t, ids, model.ReportPending).
		Updates(map[string]interface{}{
			"status":      model.ReportResolved,
			"resolution":  model.ResolutionContentDeleted,
			"resolved_at": now,
		}).Error
}

// deleteCommentsOnTx removes every comment attached to the given parents.
func deleteCommentsOnTx(tx *gorm.DB, t model.ContentType, parentIDs []string) error {
	if len(parentIDs) == 0 {
		return nil
	}
	var commentIDs []string
	if err := tx.Model(&model.Comment{}).
		Where("content_type = ? AND content_id IN ?", t, parentIDs).
		Pluck("id", &commentIDs).Error; err != nil {
		return err
	}
	if len(commentIDs) == 0 {
		return nil
	}
	if err := resolveReportsTx(tx, model.ContentComment, commentIDs); err != nil {
		return err
	}
	if err := tx.Where("data_comment_id IN ?", commentIDs).Delete(&model.Notification{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", commentIDs).Delete(&model.Comment{}).Error
}

func deleteQuestionTx(tx *gorm.DB, id string) error {
	var q model.Question
	if err := tx.Select("id").Where("id = ?", id).First(&q).Error; err != nil {
		return err
	}

	var answerIDs []string
	if err := tx.Model(&model.Answer{}).Where("question_id = ?", id).Pluck("id", &answerIDs).Error; err != nil {
		return err
	}

	if err := deleteCommentsOnTx(tx, model.ContentAnswer, answerIDs); err != nil {
		return err
	}
	if err := deleteCommentsOnTx(tx, model.ContentQuestion, []string{id}); err != nil {
		return err
	}
	if err := resolveReportsTx(tx, model.ContentAnswer, answerIDs); err != nil {
		return err
	}
	if err := resolveReportsTx(tx, model.ContentQuestion, []string{id}); err != nil {
		return err
	}
	if err := tx.Where("question_id = ?", id).Delete(&model.Answer{}).Error; err != nil {
		return err
	}
	if err := tx.Where("question_id = ?", id).Delete(&model.Bookmark{}).Error; err != nil {
		return err
	}
	if err := tx.Where("question_id = ?", id).Delete(&model.QuestionTag{}).Error; err != nil {
		return err
	}
	if err := tx.Where("data_question_id = ?", id).Delete(&model.Notification{}).Error; err != nil {
		return err
	}
	if err := tx.Where("id = ?", id).Delete(&model.Question{}).Error; err != nil {
		return err
	}

	logger.Log.Info("Question deleted with cascade",
		zap.String("questionId", id),
		zap.Int("answers", len(answerIDs)),
	)
	return nil
}

func deleteAnswerTx(tx *gorm.DB, id string) error {
	var a model.Answer
	if err := tx.Select("id", "question_id", "is_accepted").Where("id = ?", id).First(&a).Error; err != nil {
		return err
	}

	if err := deleteCommentsOnTx(tx, model.ContentAnswer, []string{id}); err != nil {
		return err
	}
	if err := resolveReportsTx(tx, model.ContentAnswer, []string{id}); err != nil {
		return err
	}

	updates := map[string]interface{}{
		"answer_count": gorm.Expr("CASE WHEN answer_count > 0 THEN answer_count - 1 ELSE 0 END"),
	}
	if err := tx.Model(&model.Question{}).Where("id = ?", a.QuestionID).UpdateColumns(updates).Error; err != nil {
		return err
	}
	if a.IsAccepted {
		if err := tx.Model(&model.Question{}).
			Where("id = ? AND accepted_answer_id = ?", a.QuestionID, id).
			UpdateColumn("accepted_answer_id", nil).Error; err != nil {
			return err
		}
	}

	if err := tx.Where("data_answer_id = ?", id).Delete(&model.Notification{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", id).Delete(&model.Answer{}).Error
}

func deleteCommentTx(tx *gorm.DB, id string) error {
	var c model.Comment
	if err := tx.Select("id", "content_id", "content_type").Where("id = ?", id).First(&c).Error; err != nil {
		return err
	}

	if err := resolveReportsTx(tx, model.ContentComment, []string{id}); err != nil {
		return err
	}
	if table, ok := counterTables[c.ContentType]; ok {
		if err := tx.Table(table).Where("id = ?", c.ContentID).
			UpdateColumn("comment_count", gorm.Expr("CASE WHEN comment_count > 0 THEN comment_count - 1 ELSE 0 END")).Error; err != nil {
			return err
		}
	}
	if err := tx.Where("data_comment_id = ?", id).Delete(&model.Notification{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", id).Delete(&model.Comment{}).Error
}

// deleteUserTx removes an account and all of its content and relations.
func deleteUserTx(tx *gorm.DB, userID string) error {
	var questionIDs []string
	if err := tx.Model(&model.Question{}).Where("user_id = ?", userID).Pluck("id", &questionIDs).Error; err != nil {
		return err
	}
	for _, id := range questionIDs {
		if err := deleteQuestionTx(tx, id); err != nil {
			return err
		}
	}

	var answerIDs []string
	if err := tx.Model(&model.Answer{}).Where("user_id = ?", userID).Pluck("id", &answerIDs).Error; err != nil {
		return err
	}
	for _, id := range answerIDs {
		if err := deleteAnswerTx(tx, id); err != nil {
			return err
		}
	}

	var commentIDs []string
	if err := tx.Model(&model.Comment{}).Where("user_id = ?", userID).Pluck("id", &commentIDs).Error; err != nil {
		return err
	}
	for _, id := range commentIDs {
		if err := deleteCommentTx(tx, id); err != nil {
			return err
		}
	}

	steps := []struct {
		query string
		model interface{}
		args  []interface{}
	}{
		{"reporter_id = ?", &model.Report{}, []interface{}{userID}},
		{"recipient_id = ? OR sender_id = ?", &model.Notification{}, []interface{}{userID, userID}},
		{"follower_id = ? OR following_id = ?", &model.Follow{}, []interface{}{userID, userID}},
		{"user_a_id = ? OR user_b_id = ?", &model.Friendship{}, []interface{}{userID, userID}},
		{"user_id = ?", &model.Bookmark{}, []interface{}{userID}},
	}
	for _, step := range steps {
		if err := tx.Where(step.query, step.args...).Delete(step.model).Error; err != nil {
			return err
		}
	}

	if err := tx.Where("id = ?", userID).Delete(&model.User{}).Error; err != nil {
		return err
	}

	logger.Log.Info("User deleted with cascade",
		zap.String("userId", userID),
		zap.Int("questions", len(questionIDs)),
		zap.Int("answers", len(answerIDs)),
		zap.Int("comments", len(commentIDs)),
	)
	return nil
}

func (r *UserRepository) Delete(userID string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := tx.Select("id").Where("id = ?", userID).First(&user).Error; err != nil {
			return err
		}
		return deleteUserTx(tx, userID)
	})
}
