package nodes

import "github.com/yungbote/sdgraph-backend/internal/domain/level"

// Practice is a mining mitigation practice, e.g. "p1" dry stacking.
type Practice struct {
	ID                    string      `gorm:"column:id;primaryKey" json:"id" validate:"required"`
	Name                  string      `gorm:"column:name;not null" json:"name" validate:"required"`
	Category              string      `gorm:"column:category" json:"category,omitempty"`
	Description           string      `gorm:"column:description;type:text" json:"description,omitempty"`
	MajorActionsInvolved  string      `gorm:"column:major_actions_involved;type:text" json:"major_actions_involved,omitempty"`
	Remark                string      `gorm:"column:remark;type:text" json:"remark,omitempty"`
	EvidenceSource        string      `gorm:"column:evidence_source;type:text" json:"evidence_source,omitempty"`
	CapitalIntensity      level.Level `gorm:"column:capital_intensity" json:"capital_intensity,omitempty" validate:"omitempty,level"`
	TechnicalComplexity   level.Level `gorm:"column:technical_complexity" json:"technical_complexity,omitempty" validate:"omitempty,level"`
	OperationalDisruption level.Level `gorm:"column:operational_disruption" json:"operational_disruption,omitempty" validate:"omitempty,level"`
	LongTermLiability     *bool       `gorm:"column:long_term_liability" json:"long_term_liability,omitempty"`
}

func (Practice) TableName() string { return "practice" }

// PracticeAction is a concrete action a practice is composed of.
type PracticeAction struct {
	ID          string `gorm:"column:id;primaryKey" json:"id" validate:"required"`
	Name        string `gorm:"column:name;not null" json:"name" validate:"required"`
	Description string `gorm:"column:description;type:text" json:"description,omitempty"`
	Evidence    string `gorm:"column:evidence;type:text" json:"evidence,omitempty"`
}

func (PracticeAction) TableName() string { return "practice_action" }

// MiningIndicator is a site-level metric (water use, tailings volume, ...).
type MiningIndicator struct {
	ID          string `gorm:"column:id;primaryKey" json:"id" validate:"required"`
	Name        string `gorm:"column:name;not null" json:"name" validate:"required"`
	Description string `gorm:"column:description;type:text" json:"description,omitempty"`
	Unit        string `gorm:"column:unit" json:"unit,omitempty"`
	Category    string `gorm:"column:category" json:"category,omitempty"`
	Evidence    string `gorm:"column:evidence;type:text" json:"evidence,omitempty"`
}

func (MiningIndicator) TableName() string { return "mining_indicator" }
