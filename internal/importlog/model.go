package importlog

import (
	"time"

	"gorm.io/datatypes"
)

// Run statuses
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusLocked  = "locked"
)

// ImportRun represents the import_runs table: one row per attempted import,
// written outside the import transaction so failures are kept too.
type ImportRun struct {
	ID         string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	Source     string         `gorm:"size:20;not null;index" json:"source"` // json, xlsx, cron
	Status     string         `gorm:"size:20;not null;index" json:"status"`
	EventCount int            `gorm:"not null;default:0" json:"event_count"`
	Created    int            `gorm:"not null;default:0" json:"created"`
	Updated    int            `gorm:"not null;default:0" json:"updated"`
	DurationMS int64          `gorm:"not null;default:0" json:"duration_ms"`
	Error      *string        `gorm:"type:text" json:"error,omitempty"`
	Details    datatypes.JSON `json:"details"`
	IPAddress  string         `gorm:"size:45" json:"ip_address"`
	CreatedAt  time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
}

func (ImportRun) TableName() string {
	return "import_runs"
}

// RunFilter represents filters for querying import runs
type RunFilter struct {
	Source   string
	Status   string
	FromDate *time.Time
	ToDate   *time.Time
	Page     int
	Limit    int
}

type PaginatedRuns struct {
	Data       []ImportRun `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"total_pages"`
}
