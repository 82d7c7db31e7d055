package repository

import (
	"qa_forum_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type StatsRepository struct {
	DB *gorm.DB
}

func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{DB: db}
}

type Totals struct {
	Users          int64 `json:"users"`
	VerifiedUsers  int64 `json:"verifiedUsers"`
	AdminUsers     int64 `json:"adminUsers"`
	BannedUsers    int64 `json:"bannedUsers"`
	Questions      int64 `json:"questions"`
	Answers        int64 `json:"answers"`
	Comments       int64 `json:"comments"`
	PendingReports int64 `json:"pendingReports"`
	NewUsers7d     int64 `json:"newUsersLast7Days"`
	Answered       int64 `json:"answeredQuestions"`
	Accepted       int64 `json:"questionsWithAcceptedAnswer"`
}

func (r *StatsRepository) Totals(since time.Time) (*Totals, error) {
	var t Totals
	counts := []struct {
		dst   *int64
		model interface{}
		where string
		args  []interface{}
	}{
		{&t.Users, &model.User{}, "", nil},
		{&t.VerifiedUsers, &model.User{}, "is_verified = ?", []interface{}{true}},
		{&t.AdminUsers, &model.User{}, "is_admin = ?", []interface{}{true}},
		{&t.BannedUsers, &model.User{}, "is_banned = ?", []interface{}{true}},
		{&t.Questions, &model.Question{}, "", nil},
		{&t.Answers, &model.Answer{}, "", nil},
		{&t.Comments, &model.Comment{}, "", nil},
		{&t.PendingReports, &model.Report{}, "status = ?", []interface{}{model.ReportPending}},
		{&t.NewUsers7d, &model.User{}, "created_at >= ?", []interface{}{since}},
		{&t.Answered, &model.Question{}, "answer_count > ?", []interface{}{0}},
		{&t.Accepted, &model.Question{}, "accepted_answer_id IS NOT NULL", nil},
	}
	for _, c := range counts {
		db := r.DB.Model(c.model)
		if c.where != "" {
			db = db.Where(c.where, c.args...)
		}
		if err := db.Count(c.dst).Error; err != nil {
			return nil, err
		}
	}
	return &t, nil
}

// QuestionTimes returns creation times of questions since the given instant;
// bucketing by day happens in the caller so it stays dialect independent.
func (r *StatsRepository) QuestionTimes(since time.Time) ([]time.Time, error) {
	var times []time.Time
	err := r.DB.Model(&model.Question{}).Where("created_at >= ?", since).Pluck("created_at", &times).Error
	return times, err
}
