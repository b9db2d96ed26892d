package links

import (
	"time"

	"github.com/yungbote/sdgraph-backend/internal/domain/level"
	"github.com/yungbote/sdgraph-backend/internal/domain/nodes"
)

// PracticeToTargetLink says how strongly a practice advances an SDG target.
// LastUpdated is stamped once when the link is first created.
type PracticeToTargetLink struct {
	PracticeID      string      `gorm:"column:practice_id;primaryKey" json:"practice_id" validate:"required"`
	TargetID        string      `gorm:"column:target_id;primaryKey" json:"target_id" validate:"required"`
	RelevanceWeight level.Level `gorm:"column:relevance_weight;not null" json:"relevance_weight" validate:"required,level"`
	IsDirect        *bool       `gorm:"column:is_direct;not null" json:"is_direct" validate:"required"`
	Evidence        string      `gorm:"column:evidence;type:text" json:"evidence,omitempty"`
	MathModel       string      `gorm:"column:math_model;type:text" json:"math_model,omitempty"`
	LastUpdated     time.Time   `gorm:"column:last_updated;not null" json:"last_updated"`

	Practice *nodes.Practice `gorm:"foreignKey:PracticeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-" validate:"-"`
	Target   *nodes.Target   `gorm:"foreignKey:TargetID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-" validate:"-"`
}

func (PracticeToTargetLink) TableName() string { return "practice_to_target_link" }

type PracticeToActionLink struct {
	PracticeID string `gorm:"column:practice_id;primaryKey" json:"practice_id" validate:"required"`
	ActionID   string `gorm:"column:action_id;primaryKey" json:"action_id" validate:"required"`
	IsCore     *bool  `gorm:"column:is_core" json:"is_core,omitempty"`
	Evidence   string `gorm:"column:evidence;type:text" json:"evidence,omitempty"`

	Practice *nodes.Practice       `gorm:"foreignKey:PracticeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-" validate:"-"`
	Action   *nodes.PracticeAction `gorm:"foreignKey:ActionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-" validate:"-"`
}

func (PracticeToActionLink) TableName() string { return "practice_to_action_link" }

type PracticeToMiningIndicatorLink struct {
	PracticeID        string      `gorm:"column:practice_id;primaryKey" json:"practice_id" validate:"required"`
	MiningIndicatorID string      `gorm:"column:mining_indicator_id;primaryKey" json:"mining_indicator_id" validate:"required"`
	EffectWeight      level.Level `gorm:"column:effect_weight" json:"effect_weight,omitempty" validate:"omitempty,level"`
	Evidence          string      `gorm:"column:evidence;type:text" json:"evidence,omitempty"`

	Practice        *nodes.Practice        `gorm:"foreignKey:PracticeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-" validate:"-"`
	MiningIndicator *nodes.MiningIndicator `gorm:"foreignKey:MiningIndicatorID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-" validate:"-"`
}

func (PracticeToMiningIndicatorLink) TableName() string { return "practice_to_mining_indicator_link" }
