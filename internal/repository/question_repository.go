package repository

import (
	"qa_forum_backend/internal/model"
	"strings"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

type QuestionFilter struct {
	Tags   []string
	Search string
	UserID string
	Sort   string
	Order  string
}

var questionSortColumns = map[string]string{
	"createdAt": "created_at",
	"votes":     "votes",
	"answers":   "answer_count",
	"views":     "views",
}

// SortClause whitelists the sort key and direction; unknown keys fall back
// to newest first.
func (f QuestionFilter) SortClause() string {
	column, ok := questionSortColumns[f.Sort]
	if !ok {
		column = "created_at"
	}
	dir := "DESC"
	if strings.EqualFold(f.Order, "asc") {
		dir = "ASC"
	}
	return column + " " + dir
}

func withAuthorAndTags(db *gorm.DB) *gorm.DB {
	return db.Preload("User").Preload("Tags", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

func tagRows(questionID string, tags []string) []model.QuestionTag {
	rows := make([]model.QuestionTag, 0, len(tags))
	for i, t := range tags {
		rows = append(rows, model.QuestionTag{QuestionID: questionID, Tag: t, Position: i})
	}
	return rows
}

func (r *QuestionRepository) Create(q *model.Question, tags []string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Tags", "User").Create(q).Error; err != nil {
			return err
		}
		rows := tagRows(q.ID, tags)
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		q.Tags = rows
		return nil
	})
}

func (r *QuestionRepository) FindByID(id string) (*model.Question, error) {
	var q model.Question
	err := withAuthorAndTags(r.DB).Where("id = ?", id).First(&q).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *QuestionRepository) Exists(id string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Question{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// Update rewrites title and body and, when tags is non-nil, replaces the tag rows.
func (r *QuestionRepository) Update(q *model.Question, tags []string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Question{}).Where("id = ?", q.ID).
			Updates(map[string]interface{}{"title": q.Title, "body": q.Body}).Error; err != nil {
			return err
		}
		if tags == nil {
			return nil
		}
		if err := tx.Where("question_id = ?", q.ID).Delete(&model.QuestionTag{}).Error; err != nil {
			return err
		}
		rows := tagRows(q.ID, tags)
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		q.Tags = rows
		return nil
	})
}

func (r *QuestionRepository) applySearch(db *gorm.DB, search string) *gorm.DB {
	switch r.DB.Dialector.Name() {
	case "mysql":
		return db.Where("MATCH(title, body) AGAINST (? IN NATURAL LANGUAGE MODE)", search)
	case "postgres":
		return db.Where("to_tsvector('simple', title || ' ' || body) @@ plainto_tsquery('simple', ?)", search)
	default:
		term := "%" + strings.ToLower(search) + "%"
		return db.Where("(LOWER(title) LIKE ? OR LOWER(body) LIKE ?)", term, term)
	}
}

func (r *QuestionRepository) List(filter QuestionFilter, offset, limit int) ([]model.Question, int64, error) {
	db := r.DB.Model(&model.Question{})

	if len(filter.Tags) > 0 {
		db = db.Where("id IN (?)", r.DB.Model(&model.QuestionTag{}).Select("question_id").Where("tag IN ?", filter.Tags))
	}
	if filter.UserID != "" {
		db = db.Where("user_id = ?", filter.UserID)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		db = r.applySearch(db, s)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var questions []model.Question
	err := withAuthorAndTags(db).
		Order(filter.SortClause()).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&questions).Error
	return questions, total, err
}

// IncrementViews bumps the counter without touching updated_at.
func (r *QuestionRepository) IncrementViews(id string) error {
	return r.DB.Model(&model.Question{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
}

// Vote applies one vote and the owner's reputation change atomically.
func (r *QuestionRepository) Vote(id, ownerID string, delta, reputation int) (int, error) {
	var votes int
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Question{}).Where("id = ?", id).
			UpdateColumn("votes", gorm.Expr("votes + ?", delta)).Error; err != nil {
			return err
		}
		if err := addReputation(tx, ownerID, reputation); err != nil {
			return err
		}
		return tx.Model(&model.Question{}).Where("id = ?", id).Pluck("votes", &votes).Error
	})
	return votes, err
}

type TagCount struct {
	Tag   string `json:"tag"`
	Count int64  `json:"count"`
}

func (r *QuestionRepository) PopularTags(limit int) ([]TagCount, error) {
	var tags []TagCount
	err := r.DB.Model(&model.QuestionTag{}).
		Select("tag, COUNT(*) AS count").
		Group("tag").
		Order("count DESC").
		Order("tag ASC").
		Limit(limit).
		Scan(&tags).Error
	return tags, err
}

func (r *QuestionRepository) TopVoted(limit int) ([]model.Question, error) {
	var questions []model.Question
	err := withAuthorAndTags(r.DB).Order("votes DESC").Order("created_at DESC").Limit(limit).Find(&questions).Error
	return questions, err
}
