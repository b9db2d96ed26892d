package imports

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// ImportRun is the audit row written for every bulk import, whether it
// finalized or not. Summary holds the per-kind created/existing counts.
type ImportRun struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Source     string         `gorm:"column:source;not null;index" json:"source"`
	Format     string         `gorm:"column:format;not null" json:"format"`
	Status     string         `gorm:"column:status;not null;index" json:"status"`
	Created    int            `gorm:"column:created;not null;default:0" json:"created"`
	Existing   int            `gorm:"column:existing;not null;default:0" json:"existing"`
	Error      string         `gorm:"column:error;type:text" json:"error,omitempty"`
	Summary    datatypes.JSON `gorm:"column:summary" json:"summary"`
	StartedAt  time.Time      `gorm:"column:started_at;not null;index" json:"started_at"`
	FinishedAt *time.Time     `gorm:"column:finished_at" json:"finished_at,omitempty"`
	CreatedAt  time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (ImportRun) TableName() string { return "import_run" }
