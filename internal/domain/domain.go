package domain

import (
	"github.com/yungbote/sdgraph-backend/internal/domain/imports"
	"github.com/yungbote/sdgraph-backend/internal/domain/level"
	"github.com/yungbote/sdgraph-backend/internal/domain/links"
	"github.com/yungbote/sdgraph-backend/internal/domain/nodes"
)

type Level = level.Level

type Objective = nodes.Objective
type Goal = nodes.Goal
type Target = nodes.Target
type Indicator = nodes.Indicator
type Practice = nodes.Practice
type PracticeAction = nodes.PracticeAction
type MiningIndicator = nodes.MiningIndicator
type StakeholderGroup = nodes.StakeholderGroup
type Stakeholder = nodes.Stakeholder
type Concern = nodes.Concern

type PracticeToTargetLink = links.PracticeToTargetLink
type PracticeToActionLink = links.PracticeToActionLink
type PracticeToMiningIndicatorLink = links.PracticeToMiningIndicatorLink
type StakeholderToConcernLink = links.StakeholderToConcernLink
type ConcernToTargetLink = links.ConcernToTargetLink
type ObjectiveToGoalLink = links.ObjectiveToGoalLink
type MiningIndicatorToTargetLink = links.MiningIndicatorToTargetLink

type ImportRun = imports.ImportRun

const (
	ImportStatusRunning   = imports.StatusRunning
	ImportStatusSucceeded = imports.StatusSucceeded
	ImportStatusFailed    = imports.StatusFailed
)

// Models lists every persisted type, nodes before links, in the order
// they must be migrated.
func Models() []any {
	return []any{
		&Objective{},
		&Goal{},
		&Target{},
		&Indicator{},
		&Practice{},
		&PracticeAction{},
		&MiningIndicator{},
		&StakeholderGroup{},
		&Stakeholder{},
		&Concern{},

		&PracticeToTargetLink{},
		&PracticeToActionLink{},
		&PracticeToMiningIndicatorLink{},
		&StakeholderToConcernLink{},
		&ConcernToTargetLink{},
		&ObjectiveToGoalLink{},
		&MiningIndicatorToTargetLink{},

		&ImportRun{},
	}
}
