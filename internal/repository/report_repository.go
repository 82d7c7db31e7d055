package repository

import (
	"qa_forum_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type ReportRepository struct {
	DB *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{DB: db}
}

func (r *ReportRepository) Create(report *model.Report) error {
	return r.DB.Omit("Reporter").Create(report).Error
}

func (r *ReportRepository) Exists(reporterID string, t model.ContentType, contentID string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Report{}).
		Where("reporter_id = ? AND content_type = ? AND content_id = ?", reporterID, t, contentID).
		Count(&count).Error
	return count > 0, err
}

func (r *ReportRepository) FindByID(id string) (*model.Report, error) {
	var report model.Report
	if err := r.DB.Preload("Reporter").Where("id = ?", id).First(&report).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *ReportRepository) List(status string, offset, limit int) ([]model.Report, int64, error) {
	db := r.DB.Model(&model.Report{})
	if status != "" {
		db = db.Where("status = ?", status)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reports []model.Report
	err := db.Preload("Reporter").Order("created_at DESC").Offset(offset).Limit(limit).Find(&reports).Error
	return reports, total, err
}

// Resolve closes a pending report. It returns false when the report was not
// pending anymore.
func (r *ReportRepository) Resolve(id, resolution, adminID string) (bool, error) {
	now := time.Now()
	res := r.DB.Model(&model.Report{}).
		Where("id = ? AND status = ?", id, model.ReportPending).
		Updates(map[string]interface{}{
			"status":      model.ReportResolved,
			"resolution":  resolution,
			"resolved_by": adminID,
			"resolved_at": now,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *ReportRepository) CountPending() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Report{}).Where("status = ?", model.ReportPending).Count(&count).Error
	return count, err
}

// Close stamps the resolution regardless of the current status. Content
// deletion resolves reports first, this records who did it.
func (r *ReportRepository) Close(id, resolution, adminID string) error {
	return r.DB.Model(&model.Report{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      model.ReportResolved,
			"resolution":  resolution,
			"resolved_by": adminID,
			"resolved_at": time.Now(),
		}).Error
}
