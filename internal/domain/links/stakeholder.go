package links

import (
	"github.com/yungbote/sdgraph-backend/internal/domain/level"
	"github.com/yungbote/sdgraph-backend/internal/domain/nodes"
)

type StakeholderToConcernLink struct {
	StakeholderID  string      `gorm:"column:stakeholder_id;primaryKey" json:"stakeholder_id" validate:"required"`
	ConcernID      string      `gorm:"column:concern_id;primaryKey" json:"concern_id" validate:"required"`
	PriorityWeight level.Level `gorm:"column:priority_weight;not null" json:"priority_weight" validate:"required,level"`
	Evidence       string      `gorm:"column:evidence;type:text" json:"evidence,omitempty"`

	Stakeholder *nodes.Stakeholder `gorm:"foreignKey:StakeholderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-" validate:"-"`
	Concern     *nodes.Concern     `gorm:"foreignKey:ConcernID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-" validate:"-"`
}

func (StakeholderToConcernLink) TableName() string { return "stakeholder_to_concern_link" }

type ConcernToTargetLink struct {
	ConcernID string `gorm:"column:concern_id;primaryKey" json:"concern_id" validate:"required"`
	TargetID  string `gorm:"column:target_id;primaryKey" json:"target_id" validate:"required"`
	Evidence  string `gorm:"column:evidence;type:text" json:"evidence,omitempty"`

	Concern *nodes.Concern `gorm:"foreignKey:ConcernID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-" validate:"-"`
	Target  *nodes.Target  `gorm:"foreignKey:TargetID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-" validate:"-"`
}

func (ConcernToTargetLink) TableName() string { return "concern_to_target_link" }
