package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/yungbote/sdgraph-backend/internal/data/ingest"
	"github.com/yungbote/sdgraph-backend/internal/domain/level"
	"github.com/yungbote/sdgraph-backend/internal/pkg/logger"
	"github.com/yungbote/sdgraph-backend/internal/platform/neo4jdb"
)

// Node labels and relationship types of the projection. Cypher cannot
// parameterize either, so queries are built from these fixed tables only.
var nodeLabels = map[ingest.Kind]string{
	ingest.KindObjective:        "SDObjective",
	ingest.KindGoal:             "SDGGoal",
	ingest.KindTarget:           "SDGTarget",
	ingest.KindIndicator:        "SDGIndicator",
	ingest.KindPractice:         "Practice",
	ingest.KindPracticeAction:   "PracticeAction",
	ingest.KindMiningIndicator:  "MiningIndicator",
	ingest.KindStakeholderGroup: "StakeholderGroup",
	ingest.KindStakeholder:      "Stakeholder",
	ingest.KindConcern:          "Concern",
}

var linkTypes = map[ingest.Kind]string{
	ingest.KindPracticeToTarget:          "ADDRESSES_TARGET",
	ingest.KindPracticeToAction:          "INVOLVES_ACTION",
	ingest.KindPracticeToMiningIndicator: "AFFECTS_INDICATOR",
	ingest.KindStakeholderToConcern:      "HAS_CONCERN",
	ingest.KindConcernToTarget:           "RELATES_TO_TARGET",
	ingest.KindObjectiveToGoal:           "ALIGNS_WITH",
	ingest.KindMiningIndicatorToTarget:   "MEASURES_TARGET",
}

// Parent references held on node rows.
var refTypes = map[ingest.Kind]string{
	ingest.KindGoal:        "PART_OF",
	ingest.KindTarget:      "PART_OF",
	ingest.KindIndicator:   "MEASURES",
	ingest.KindStakeholder: "MEMBER_OF",
}

// Snapshot is the full content of the store grouped by kind.
type Snapshot map[ingest.Kind][]ingest.Record

// Len is the number of records across all kinds.
func (s Snapshot) Len() int {
	n := 0
	for _, recs := range s {
		n += len(recs)
	}
	return n
}

type SyncStats struct {
	Nodes         int `json:"nodes"`
	Relationships int `json:"relationships"`
}

type statement struct {
	query  string
	params map[string]any
	rows   int
}

// SyncKnowledgeGraph mirrors snapshot into Neo4j with MERGE so repeated
// syncs converge on the same graph. It never deletes.
func SyncKnowledgeGraph(
	ctx context.Context,
	client *neo4jdb.Client,
	log *logger.Logger,
	registry *ingest.Registry,
	snapshot Snapshot,
) (*SyncStats, error) {
	if client == nil || client.Driver == nil {
		return &SyncStats{}, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if registry == nil {
		registry = ingest.Default()
	}

	stmts, stats, err := buildStatements(registry, snapshot, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	session := client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: client.Database,
	})
	defer session.Close(ctx)

	for _, q := range schemaStatements(registry) {
		if res, err := session.Run(ctx, q, nil); err != nil {
			if log != nil {
				log.Warn("neo4j schema init failed (continuing)", "error", err)
			}
		} else {
			_, _ = res.Consume(ctx)
		}
	}

	_, err = session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, st := range stmts {
			res, err := tx.Run(ctx, st.query, st.params)
			if err != nil {
				return nil, err
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j sync: %w", err)
	}
	if log != nil {
		log.Info("Knowledge graph projected", "nodes", stats.Nodes, "relationships", stats.Relationships)
	}
	return stats, nil
}

func schemaStatements(registry *ingest.Registry) []string {
	out := make([]string, 0, len(nodeLabels))
	for _, spec := range registry.Nodes() {
		label, ok := nodeLabels[spec.Kind]
		if !ok {
			continue
		}
		out = append(out, fmt.Sprintf(
			"CREATE CONSTRAINT %s_id_unique IF NOT EXISTS FOR (n:%s) REQUIRE n.id IS UNIQUE",
			spec.Kind, label))
	}
	return out
}

func buildStatements(registry *ingest.Registry, snapshot Snapshot, now time.Time) ([]statement, *SyncStats, error) {
	syncedAt := now.Format(time.RFC3339Nano)
	stats := &SyncStats{}
	var stmts []statement

	for _, spec := range registry.Nodes() {
		label, ok := nodeLabels[spec.Kind]
		if !ok {
			return nil, nil, fmt.Errorf("neo4j sync: no label for node kind %s", spec.Kind)
		}
		recs := snapshot[spec.Kind]
		if len(recs) == 0 {
			continue
		}
		rows := make([]map[string]any, 0, len(recs))
		for _, rec := range recs {
			props := properties(spec.Row(rec))
			props["synced_at"] = syncedAt
			rows = append(rows, props)
		}
		stmts = append(stmts, statement{
			query: fmt.Sprintf(`
UNWIND $rows AS r
MERGE (n:%s {id: r.id})
SET n += r
`, label),
			params: map[string]any{"rows": rows},
			rows:   len(rows),
		})
		stats.Nodes += len(rows)
	}

	for _, spec := range registry.Nodes() {
		relType, ok := refTypes[spec.Kind]
		if !ok {
			continue
		}
		for _, ref := range spec.Refs {
			var rels []map[string]any
			for _, rec := range snapshot[spec.Kind] {
				parent, ok := spec.StringField(rec, ref.Field)
				if !ok || parent == "" {
					continue
				}
				child, _ := spec.StringField(rec, "id")
				rels = append(rels, map[string]any{"from": child, "to": parent})
			}
			if len(rels) == 0 {
				continue
			}
			stmts = append(stmts, statement{
				query: fmt.Sprintf(`
UNWIND $rels AS r
MATCH (a:%s {id: r.from})
MATCH (b:%s {id: r.to})
MERGE (a)-[:%s]->(b)
`, nodeLabels[spec.Kind], nodeLabels[ref.To], relType),
				params: map[string]any{"rels": rels},
				rows:   len(rels),
			})
			stats.Relationships += len(rels)
		}
	}

	for _, spec := range registry.Links() {
		relType, ok := linkTypes[spec.Kind]
		if !ok {
			return nil, nil, fmt.Errorf("neo4j sync: no relationship type for link kind %s", spec.Kind)
		}
		recs := snapshot[spec.Kind]
		if len(recs) == 0 {
			continue
		}
		from, to := spec.Refs[0], spec.Refs[1]
		rels := make([]map[string]any, 0, len(recs))
		for _, rec := range recs {
			props := properties(spec.Row(rec))
			props["synced_at"] = syncedAt
			rels = append(rels, map[string]any{
				"from":  props[from.Field],
				"to":    props[to.Field],
				"props": props,
			})
		}
		stmts = append(stmts, statement{
			query: fmt.Sprintf(`
UNWIND $rels AS r
MATCH (a:%s {id: r.from})
MATCH (b:%s {id: r.to})
MERGE (a)-[e:%s]->(b)
SET e += r.props
`, nodeLabels[from.To], nodeLabels[to.To], relType),
			params: map[string]any{"rels": rels},
			rows:   len(rels),
		})
		stats.Relationships += len(rels)
	}
	return stmts, stats, nil
}

// properties converts a row into values the driver can pack. Null columns
// are dropped so SET n += r leaves them absent.
func properties(row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for col, v := range row {
		switch tv := v.(type) {
		case nil:
			continue
		case level.Level:
			if tv == "" {
				continue
			}
			out[col] = string(tv)
		case time.Time:
			out[col] = tv.UTC().Format(time.RFC3339Nano)
		default:
			out[col] = v
		}
	}
	return out
}
