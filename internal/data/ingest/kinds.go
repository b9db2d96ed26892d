package ingest

import (
	"sync"
	"time"

	"github.com/yungbote/sdgraph-backend/internal/domain/links"
	"github.com/yungbote/sdgraph-backend/internal/domain/nodes"
)

// Node and link kinds known to the default registry.
const (
	KindObjective        Kind = "sd_objectives"
	KindGoal             Kind = "sdg_goal"
	KindTarget           Kind = "sdg_target"
	KindIndicator        Kind = "sdg_indicator"
	KindPractice         Kind = "practice"
	KindPracticeAction   Kind = "practice_action"
	KindMiningIndicator  Kind = "mining_indicator"
	KindStakeholderGroup Kind = "stakeholder_group"
	KindStakeholder      Kind = "stakeholder"
	KindConcern          Kind = "concern"

	KindPracticeToTarget          Kind = "practice_to_target_link"
	KindPracticeToAction          Kind = "practice_to_action_link"
	KindPracticeToMiningIndicator Kind = "practice_to_mining_indicator_link"
	KindStakeholderToConcern      Kind = "stakeholder_to_concern_link"
	KindConcernToTarget           Kind = "concern_to_target_link"
	KindObjectiveToGoal           Kind = "sd_objective_to_sdg_link"
	KindMiningIndicatorToTarget   Kind = "mining_indicator_to_target_link"
)

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default is the registry of every node and link kind of the knowledge graph.
func Default() *Registry {
	defaultOnce.Do(func() {
		reg, err := NewRegistry(DefaultSpecs()...)
		if err != nil {
			panic(err)
		}
		defaultReg = reg
	})
	return defaultReg
}

var nodeID = []string{"id"}

// DefaultSpecs builds fresh specs for the default registry, nodes first.
func DefaultSpecs() []*Spec {
	return []*Spec{
		{
			Kind: KindObjective, Class: ClassNode, Identity: nodeID, Group: "objective",
			New:   func() Record { return &nodes.Objective{} },
			Label: func(r Record) string { return r.(*nodes.Objective).ID },
		},
		{
			Kind: KindGoal, Class: ClassNode, Identity: nodeID, Group: "goal",
			New:   func() Record { return &nodes.Goal{} },
			Refs:  []Ref{{Field: "parent_objective_id", To: KindObjective}},
			Label: func(r Record) string { return r.(*nodes.Goal).Name },
		},
		{
			Kind: KindTarget, Class: ClassNode, Identity: nodeID, Group: "target",
			New:  func() Record { return &nodes.Target{} },
			Refs: []Ref{{Field: "parent_goal_id", To: KindGoal}},
			Label: func(r Record) string {
				t := r.(*nodes.Target)
				if t.ShortName != "" {
					return t.ShortName
				}
				return t.ID
			},
		},
		{
			Kind: KindIndicator, Class: ClassNode, Identity: nodeID, Group: "sdg_indicator",
			New:   func() Record { return &nodes.Indicator{} },
			Refs:  []Ref{{Field: "parent_target_id", To: KindTarget}},
			Label: func(r Record) string { return r.(*nodes.Indicator).ID },
		},
		{
			Kind: KindPractice, Class: ClassNode, Identity: nodeID, Group: "practice",
			New:   func() Record { return &nodes.Practice{} },
			Label: func(r Record) string { return r.(*nodes.Practice).Name },
		},
		{
			Kind: KindPracticeAction, Class: ClassNode, Identity: nodeID, Group: "action",
			New:   func() Record { return &nodes.PracticeAction{} },
			Label: func(r Record) string { return r.(*nodes.PracticeAction).Name },
		},
		{
			Kind: KindMiningIndicator, Class: ClassNode, Identity: nodeID, Group: "indicator",
			New:   func() Record { return &nodes.MiningIndicator{} },
			Label: func(r Record) string { return r.(*nodes.MiningIndicator).Name },
		},
		{
			Kind: KindStakeholderGroup, Class: ClassNode, Identity: nodeID, Group: "stakeholder_group",
			New:   func() Record { return &nodes.StakeholderGroup{} },
			Label: func(r Record) string { return r.(*nodes.StakeholderGroup).Name },
		},
		{
			Kind: KindStakeholder, Class: ClassNode, Identity: nodeID, Group: "stakeholder",
			New:   func() Record { return &nodes.Stakeholder{} },
			Refs:  []Ref{{Field: "category_id", To: KindStakeholderGroup}},
			Label: func(r Record) string { return r.(*nodes.Stakeholder).Name },
		},
		{
			Kind: KindConcern, Class: ClassNode, Identity: nodeID, Group: "concern",
			New:   func() Record { return &nodes.Concern{} },
			Label: func(r Record) string { return r.(*nodes.Concern).Name },
		},

		{
			Kind: KindPracticeToTarget, Class: ClassLink,
			New:       func() Record { return &links.PracticeToTargetLink{} },
			Identity:  []string{"practice_id", "target_id"},
			Refs:      []Ref{{Field: "practice_id", To: KindPractice}, {Field: "target_id", To: KindTarget}},
			Generated: []string{"last_updated"},
			Defaults: func(r Record, now time.Time) {
				l := r.(*links.PracticeToTargetLink)
				if l.LastUpdated.IsZero() {
					l.LastUpdated = now
				}
			},
		},
		{
			Kind: KindPracticeToAction, Class: ClassLink,
			New:      func() Record { return &links.PracticeToActionLink{} },
			Identity: []string{"practice_id", "action_id"},
			Refs:     []Ref{{Field: "practice_id", To: KindPractice}, {Field: "action_id", To: KindPracticeAction}},
		},
		{
			Kind: KindPracticeToMiningIndicator, Class: ClassLink,
			New:      func() Record { return &links.PracticeToMiningIndicatorLink{} },
			Identity: []string{"practice_id", "mining_indicator_id"},
			Refs:     []Ref{{Field: "practice_id", To: KindPractice}, {Field: "mining_indicator_id", To: KindMiningIndicator}},
		},
		{
			Kind: KindStakeholderToConcern, Class: ClassLink,
			New:      func() Record { return &links.StakeholderToConcernLink{} },
			Identity: []string{"stakeholder_id", "concern_id"},
			Refs:     []Ref{{Field: "stakeholder_id", To: KindStakeholder}, {Field: "concern_id", To: KindConcern}},
		},
		{
			Kind: KindConcernToTarget, Class: ClassLink,
			New:      func() Record { return &links.ConcernToTargetLink{} },
			Identity: []string{"concern_id", "target_id"},
			Refs:     []Ref{{Field: "concern_id", To: KindConcern}, {Field: "target_id", To: KindTarget}},
		},
		{
			Kind: KindObjectiveToGoal, Class: ClassLink,
			New:      func() Record { return &links.ObjectiveToGoalLink{} },
			Identity: []string{"sd_objective_id", "sdg_goal_id"},
			Refs:     []Ref{{Field: "sd_objective_id", To: KindObjective}, {Field: "sdg_goal_id", To: KindGoal}},
		},
		{
			Kind: KindMiningIndicatorToTarget, Class: ClassLink,
			New:      func() Record { return &links.MiningIndicatorToTargetLink{} },
			Identity: []string{"mining_indicator_id", "target_id"},
			Refs:     []Ref{{Field: "mining_indicator_id", To: KindMiningIndicator}, {Field: "target_id", To: KindTarget}},
		},
	}
}
