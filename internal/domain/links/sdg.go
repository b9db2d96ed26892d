package links

import (
	"github.com/yungbote/sdgraph-backend/internal/domain/level"
	"github.com/yungbote/sdgraph-backend/internal/domain/nodes"
)

// ObjectiveToGoalLink enriches the objective/goal relationship with a weight.
// It is independent of Goal.ParentObjectiveID.
type ObjectiveToGoalLink struct {
	ObjectiveID string      `gorm:"column:sd_objective_id;primaryKey" json:"sd_objective_id" validate:"required"`
	GoalID      string      `gorm:"column:sdg_goal_id;primaryKey" json:"sdg_goal_id" validate:"required"`
	Weight      level.Level `gorm:"column:weight;not null" json:"weight" validate:"required,level"`
	Comment     string      `gorm:"column:comment;type:text" json:"comment,omitempty"`
	Evidence    string      `gorm:"column:evidence;type:text" json:"evidence,omitempty"`

	Objective *nodes.Objective `gorm:"foreignKey:ObjectiveID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-" validate:"-"`
	Goal      *nodes.Goal      `gorm:"foreignKey:GoalID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-" validate:"-"`
}

func (ObjectiveToGoalLink) TableName() string { return "sd_objective_to_sdg_link" }

type MiningIndicatorToTargetLink struct {
	MiningIndicatorID string      `gorm:"column:mining_indicator_id;primaryKey" json:"mining_indicator_id" validate:"required"`
	TargetID          string      `gorm:"column:target_id;primaryKey" json:"target_id" validate:"required"`
	RelevanceWeight   level.Level `gorm:"column:relevance_weight;not null" json:"relevance_weight" validate:"required,level"`
	IsDirect          *bool       `gorm:"column:is_direct" json:"is_direct,omitempty"`
	Evidence          string      `gorm:"column:evidence;type:text" json:"evidence,omitempty"`

	MiningIndicator *nodes.MiningIndicator `gorm:"foreignKey:MiningIndicatorID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-" validate:"-"`
	Target          *nodes.Target          `gorm:"foreignKey:TargetID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-" validate:"-"`
}

func (MiningIndicatorToTargetLink) TableName() string { return "mining_indicator_to_target_link" }
