package service

import (
	"errors"
	"fmt"
	"math"
	"qa_forum_backend/internal/model"
	"qa_forum_backend/internal/repository"
	"qa_forum_backend/internal/util"
	"qa_forum_backend/pkg/logger"
	"qa_forum_backend/pkg/mailer"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	ActionPromote       = "promote"
	ActionDemote        = "demote"
	ActionVerify        = "verify"
	ActionUnverify      = "unverify"
	ActionBan           = "ban"
	ActionUnban         = "unban"
	ActionSuspend       = "suspend"
	ActionUnsuspend     = "unsuspend"
	ActionResetPassword = "reset_password"

	ReportActionDismiss       = "dismiss"
	ReportActionDeleteContent = "delete_content"

	defaultSuspendDays = 7
	maxSuspendDays     = 365
)

// selfForbidden lists actions an admin may not apply to their own account.
var selfForbidden = map[string]bool{
	ActionDemote:  true,
	ActionBan:     true,
	ActionSuspend: true,
}

type AdminService struct {
	UserRepo      *repository.UserRepository
	QuestionRepo  *repository.QuestionRepository
	ReportRepo    *repository.ReportRepository
	ContentRepo   *repository.ContentRepository
	StatsRepo     *repository.StatsRepository
	Notifications *NotificationService
	Mailer        mailer.Mailer
}

func NewAdminService(
	userRepo *repository.UserRepository,
	questionRepo *repository.QuestionRepository,
	reportRepo *repository.ReportRepository,
	contentRepo *repository.ContentRepository,
	statsRepo *repository.StatsRepository,
	notifications *NotificationService,
	m mailer.Mailer,
) *AdminService {
	return &AdminService{
		UserRepo:      userRepo,
		QuestionRepo:  questionRepo,
		ReportRepo:    reportRepo,
		ContentRepo:   contentRepo,
		StatsRepo:     statsRepo,
		Notifications: notifications,
		Mailer:        m,
	}
}

type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type Stats struct {
	Totals         *repository.Totals    `json:"totals"`
	AnsweredRate   float64               `json:"answeredRate"`
	AcceptanceRate float64               `json:"acceptanceRate"`
	TopUsers       []PublicUser          `json:"topUsers"`
	TopTags        []repository.TagCount `json:"topTags"`
	TopQuestions   []model.Question      `json:"topQuestions"`
	DailyQuestions []DailyCount          `json:"dailyQuestions"`
}

func percent(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(whole)*1000) / 10
}

// BucketByDay counts timestamps per calendar day for the days ending at
// today, oldest first; days without entries report zero.
func BucketByDay(times []time.Time, today time.Time, days int) []DailyCount {
	buckets := make([]DailyCount, days)
	index := make(map[string]int, days)
	start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location()).AddDate(0, 0, -(days - 1))
	for i := 0; i < days; i++ {
		d := start.AddDate(0, 0, i).Format(util.DateFormat)
		buckets[i] = DailyCount{Date: d}
		index[d] = i
	}
	for _, t := range times {
		if i, ok := index[t.In(today.Location()).Format(util.DateFormat)]; ok {
			buckets[i].Count++
		}
	}
	return buckets
}

// Stats is computed on every call.
func (s *AdminService) Stats() (*Stats, error) {
	now := time.Now()
	totals, err := s.StatsRepo.Totals(now.AddDate(0, 0, -7))
	if err != nil {
		return nil, err
	}
	topUsers, err := s.UserRepo.FindTopByReputation(5)
	if err != nil {
		return nil, err
	}
	topTags, err := s.QuestionRepo.PopularTags(10)
	if err != nil {
		return nil, err
	}
	topQuestions, err := s.QuestionRepo.TopVoted(5)
	if err != nil {
		return nil, err
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -6)
	times, err := s.StatsRepo.QuestionTimes(dayStart)
	if err != nil {
		return nil, err
	}

	if topTags == nil {
		topTags = []repository.TagCount{}
	}
	if topQuestions == nil {
		topQuestions = []model.Question{}
	}

	return &Stats{
		Totals:         totals,
		AnsweredRate:   percent(totals.Answered, totals.Questions),
		AcceptanceRate: percent(totals.Accepted, totals.Questions),
		TopUsers:       publicUsers(topUsers),
		TopTags:        topTags,
		TopQuestions:   topQuestions,
		DailyQuestions: BucketByDay(times, now, 7),
	}, nil
}

func (s *AdminService) ListUsers(filter repository.UserFilter, page util.Page) ([]model.User, int64, error) {
	users, total, err := s.UserRepo.List(filter, page.Offset(), page.Limit)
	if err != nil {
		return nil, 0, err
	}
	if users == nil {
		users = []model.User{}
	}
	return users, total, nil
}

type AdminUserDetail struct {
	User   *model.User            `json:"user"`
	Counts *repository.UserCounts `json:"counts"`
}

func (s *AdminService) GetUser(id string) (*AdminUserDetail, error) {
	user, err := s.UserRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	counts, err := s.UserRepo.Counts(id)
	if err != nil {
		return nil, err
	}
	return &AdminUserDetail{User: user, Counts: counts}, nil
}

type UserActionInput struct {
	Action       string
	DurationDays int
}

type UserActionResult struct {
	User         *model.User `json:"user"`
	TempPassword string      `json:"tempPassword,omitempty"`
}

// ApplyUserAction runs one moderation action against a user account.
func (s *AdminService) ApplyUserAction(admin *model.User, targetID string, in UserActionInput) (*UserActionResult, error) {
	if admin.ID == targetID && selfForbidden[in.Action] {
		return nil, util.ErrBadRequest(fmt.Sprintf("You cannot %s your own account", in.Action))
	}

	target, err := s.UserRepo.FindByID(targetID)
	if err != nil {
		return nil, err
	}

	var (
		fields       map[string]interface{}
		message      string
		tempPassword string
	)

	switch in.Action {
	case ActionPromote:
		fields = map[string]interface{}{"is_admin": true}
		message = "You have been granted administrator privileges."
	case ActionDemote:
		fields = map[string]interface{}{"is_admin": false}
		message = "Your administrator privileges have been removed."
	case ActionVerify:
		fields = map[string]interface{}{"is_verified": true, "verification_token": "", "verification_expires": nil}
		message = "Your email address has been verified by an administrator."
	case ActionUnverify:
		fields = map[string]interface{}{"is_verified": false}
		message = "Your email verification has been revoked."
	case ActionBan:
		fields = map[string]interface{}{"is_banned": true}
		message = "Your account has been banned."
	case ActionUnban:
		fields = map[string]interface{}{"is_banned": false}
		message = "Your account ban has been lifted."
	case ActionSuspend:
		days := in.DurationDays
		if days == 0 {
			days = defaultSuspendDays
		}
		if days < 1 || days > maxSuspendDays {
			return nil, util.ErrBadRequest(fmt.Sprintf("Suspension must be between 1 and %d days", maxSuspendDays))
		}
		until := time.Now().AddDate(0, 0, days)
		fields = map[string]interface{}{"suspended_until": until}
		message = fmt.Sprintf("Your account has been suspended for %d days.", days)
	case ActionUnsuspend:
		fields = map[string]interface{}{"suspended_until": nil}
		message = "Your account suspension has been lifted."
	case ActionResetPassword:
		tempPassword, err = util.TempPassword(12)
		if err != nil {
			return nil, err
		}
		hashed, err := HashPassword(tempPassword)
		if err != nil {
			return nil, err
		}
		fields = map[string]interface{}{"password": hashed, "reset_password_token": "", "reset_password_expire": nil}
		message = "Your password has been reset by an administrator. Check your email for the temporary password."
	default:
		return nil, util.ErrBadRequest("Invalid action")
	}

	if err := s.UserRepo.UpdateFields(targetID, fields); err != nil {
		return nil, err
	}

	if tempPassword != "" && s.Mailer != nil {
		body := fmt.Sprintf("<p>Hi %s,</p><p>An administrator reset your password. Your temporary password is:</p><p><b>%s</b></p><p>Please change it after signing in.</p>",
			target.Username, tempPassword)
		if err := s.Mailer.Send(target.Email, "Your password has been reset", body); err != nil {
			logger.Log.Error("Failed to send temporary password", zap.String("userId", targetID), zap.Error(err))
		}
	}

	s.Notifications.Notify(NotifyInput{
		RecipientID: targetID,
		SenderID:    admin.ID,
		Type:        model.NotifyAccountUpdate,
		Title:       "Account update",
		Message:     message,
	})
	logger.Log.Info("Admin action applied",
		zap.String("adminId", admin.ID),
		zap.String("targetId", targetID),
		zap.String("action", in.Action),
	)

	updated, err := s.UserRepo.FindByID(targetID)
	if err != nil {
		return nil, err
	}
	return &UserActionResult{User: updated, TempPassword: tempPassword}, nil
}

func (s *AdminService) DeleteUser(admin *model.User, targetID string) error {
	if admin.ID == targetID {
		return util.ErrBadRequest("You cannot delete your own account")
	}
	if err := s.UserRepo.Delete(targetID); err != nil {
		return err
	}
	logger.Log.Info("Admin deleted user", zap.String("adminId", admin.ID), zap.String("targetId", targetID))
	return nil
}

func (s *AdminService) ListReports(status string, page util.Page) ([]model.Report, int64, error) {
	if status != "" && status != string(model.ReportPending) && status != string(model.ReportResolved) {
		return nil, 0, util.ErrBadRequest("Status must be 'pending' or 'resolved'")
	}
	reports, total, err := s.ReportRepo.List(status, page.Offset(), page.Limit)
	if err != nil {
		return nil, 0, err
	}
	if reports == nil {
		reports = []model.Report{}
	}
	return reports, total, nil
}

func (s *AdminService) ResolveReport(admin *model.User, id, action string) (*model.Report, error) {
	report, err := s.ReportRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if report.Status != model.ReportPending {
		return nil, util.ErrBadRequest("Report has already been resolved")
	}

	var resolution string
	switch action {
	case ReportActionDismiss:
		resolution = model.ResolutionDismissed
		ok, err := s.ReportRepo.Resolve(id, resolution, admin.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, util.ErrBadRequest("Report has already been resolved")
		}
	case ReportActionDeleteContent:
		resolution = model.ResolutionContentDeleted
		if err := s.ContentRepo.Delete(report.ContentType, report.ContentID); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if err := s.ReportRepo.Close(id, resolution, admin.ID); err != nil {
			return nil, err
		}
	default:
		return nil, util.ErrBadRequest("Action must be 'dismiss' or 'delete_content'")
	}

	message := "Thanks for your report. After review we decided to keep the content."
	if resolution == model.ResolutionContentDeleted {
		message = "Thanks for your report. The content has been removed."
	}
	s.Notifications.Notify(NotifyInput{
		RecipientID: report.ReporterID,
		SenderID:    admin.ID,
		Type:        model.NotifyReportResolved,
		Title:       "Your report was reviewed",
		Message:     message,
	})
	logger.Log.Info("Report resolved",
		zap.String("adminId", admin.ID),
		zap.String("reportId", id),
		zap.String("resolution", resolution),
	)

	return s.ReportRepo.FindByID(id)
}

func (s *AdminService) DeleteContent(admin *model.User, contentType, id string) error {
	t := model.ContentType(contentType)
	if !t.Reportable() {
		return util.ErrBadRequest("Content type must be 'question', 'answer' or 'comment'")
	}
	if err := s.ContentRepo.Delete(t, id); err != nil {
		return err
	}
	logger.Log.Info("Admin deleted content",
		zap.String("adminId", admin.ID),
		zap.String("contentType", contentType),
		zap.String("contentId", id),
	)
	return nil
}

func (s *AdminService) ListQuestions(search string, page util.Page) ([]model.Question, int64, error) {
	questions, total, err := s.QuestionRepo.List(repository.QuestionFilter{Search: search}, page.Offset(), page.Limit)
	if err != nil {
		return nil, 0, err
	}
	if questions == nil {
		questions = []model.Question{}
	}
	return questions, total, nil
}
