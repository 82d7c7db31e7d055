package model

import "time"

type ReportStatus string

const (
	ReportPending  ReportStatus = "pending"
	ReportResolved ReportStatus = "resolved"
)

const (
	ResolutionDismissed      = "dismissed"
	ResolutionContentDeleted = "content_deleted"
)

type Report struct {
	UUIDBase
	ReporterID  string       `gorm:"uniqueIndex:idx_report_unique;type:varchar(36);not null" json:"reporterId"`
	Reporter    *User        `gorm:"foreignKey:ReporterID;constraint:false" json:"reporter,omitempty"`
	ContentID   string       `gorm:"uniqueIndex:idx_report_unique;type:varchar(36);not null" json:"contentId"`
	ContentType ContentType  `gorm:"uniqueIndex:idx_report_unique;size:20;not null" json:"contentType"`
	Reason      string       `gorm:"size:200;not null" json:"reason"`
	Description string       `gorm:"type:text" json:"description"`
	Status      ReportStatus `gorm:"size:20;default:'pending';index" json:"status"`
	Resolution  string       `gorm:"size:30" json:"resolution,omitempty"`
	ResolvedBy  *string      `gorm:"type:varchar(36)" json:"resolvedBy,omitempty"`
	ResolvedAt  *time.Time   `json:"resolvedAt,omitempty"`
}

func (Report) TableName() string {
	return "reports"
}
