package service

import (
	"qa_forum_backend/internal/model"
	"qa_forum_backend/internal/repository"
	"qa_forum_backend/internal/util"
	"qa_forum_backend/pkg/monitoring"
	"strings"
	"unicode/utf8"
)

type ReportService struct {
	ReportRepo  *repository.ReportRepository
	ContentRepo *repository.ContentRepository
}

func NewReportService(reportRepo *repository.ReportRepository, contentRepo *repository.ContentRepository) *ReportService {
	return &ReportService{ReportRepo: reportRepo, ContentRepo: contentRepo}
}

type ReportInput struct {
	ContentID   string
	ContentType string
	Reason      string
	Description string
}

func (s *ReportService) Create(user *model.User, in ReportInput) (*model.Report, error) {
	t := model.ContentType(in.ContentType)
	if !t.Reportable() {
		return nil, util.ErrBadRequest("Content type must be 'question', 'answer' or 'comment'")
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, util.ErrBadRequest("Reason is required")
	}
	if utf8.RuneCountInString(reason) > 200 {
		return nil, util.ErrBadRequest("Reason cannot exceed 200 characters")
	}

	if _, err := s.ContentRepo.Resolve(t, in.ContentID); err != nil {
		return nil, err
	}

	exists, err := s.ReportRepo.Exists(user.ID, t, in.ContentID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, util.ErrBadRequest("You have already reported this content")
	}

	report := &model.Report{
		ReporterID:  user.ID,
		ContentID:   in.ContentID,
		ContentType: t,
		Reason:      reason,
		Description: strings.TrimSpace(in.Description),
		Status:      model.ReportPending,
	}
	if err := s.ReportRepo.Create(report); err != nil {
		return nil, err
	}
	monitoring.RecordEvent("report_created")
	return report, nil
}
