package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	"gorm.io/gorm"

	"github.com/yungbote/sdgraph-backend/internal/data/graph"
	"github.com/yungbote/sdgraph-backend/internal/data/ingest"
	"github.com/yungbote/sdgraph-backend/internal/data/repos"
	"github.com/yungbote/sdgraph-backend/internal/pkg/dbctx"
	"github.com/yungbote/sdgraph-backend/internal/pkg/logger"
)

const graphDataCacheKey = "graph-data"

// graphDataKey versions the cached payload by the number of stored rows.
// An import from any process changes the count, so a reader never serves
// a payload built before it.
func graphDataKey(rows int64) string {
	return graphDataCacheKey + ":" + strconv.FormatInt(rows, 10)
}

type GraphNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Group string `json:"group"`
}

type GraphEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// GraphData is the visualization payload: every node of every node kind
// and one edge per link row or parent reference.
type GraphData struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

type GraphService interface {
	Tables() []string
	TableRows(ctx context.Context, table string) ([]map[string]any, error)
	GraphData(ctx context.Context) (*GraphData, error)
	Snapshot(ctx context.Context) (graph.Snapshot, error)
	Invalidate(ctx context.Context)
}

type graphService struct {
	db       *gorm.DB
	log      *logger.Logger
	registry *ingest.Registry
	tables   repos.TableRepo
	cache    *GraphCache
}

func NewGraphService(db *gorm.DB, baseLog *logger.Logger, registry *ingest.Registry, tables repos.TableRepo, cache *GraphCache) GraphService {
	if registry == nil {
		registry = ingest.Default()
	}
	return &graphService{
		db:       db,
		log:      baseLog.With("service", "GraphService"),
		registry: registry,
		tables:   tables,
		cache:    cache,
	}
}

func (s *graphService) Tables() []string { return s.tables.Tables() }

func (s *graphService) TableRows(ctx context.Context, table string) ([]map[string]any, error) {
	return s.tables.ListRows(dbctx.Context{Ctx: ctx}, table)
}

// Snapshot reads every table in one read transaction. On Postgres the
// transaction is REPEATABLE READ so all tables come from one point in time.
func (s *graphService) Snapshot(ctx context.Context) (graph.Snapshot, error) {
	snap := graph.Snapshot{}
	var opts []*sql.TxOptions
	if s.db.Dialector.Name() == "postgres" {
		opts = append(opts, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		for _, spec := range s.registry.Specs() {
			recs, err := s.tables.ListRecords(dbc, spec.Kind)
			if err != nil {
				return err
			}
			snap[spec.Kind] = recs
		}
		return nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *graphService) GraphData(ctx context.Context) (*GraphData, error) {
	rows, err := s.tables.RowCount(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, fmt.Errorf("count graph rows: %w", err)
	}
	if b, ok := s.cache.Get(ctx, graphDataKey(rows)); ok {
		var out GraphData
		if err := json.Unmarshal(b, &out); err == nil {
			return &out, nil
		}
		s.log.Warn("Discarding undecodable cached graph payload")
	}

	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load graph: %w", err)
	}
	out := BuildGraphData(s.registry, snap)

	// Keyed by what the snapshot holds, not by the count read above.
	if b, err := json.Marshal(out); err == nil {
		s.cache.Set(ctx, graphDataKey(int64(snap.Len())), b)
	}
	return out, nil
}

// Invalidate drops this process's cached payloads. Correctness does not
// depend on it; it only frees memory held by outdated versions.
func (s *graphService) Invalidate(_ context.Context) {
	s.cache.Purge()
}

// BuildGraphData lays out nodes in registry order, then link edges, then
// the parent edges held on node rows.
func BuildGraphData(registry *ingest.Registry, snap graph.Snapshot) *GraphData {
	out := &GraphData{Nodes: []GraphNode{}, Edges: []GraphEdge{}}
	for _, spec := range registry.Nodes() {
		for _, rec := range snap[spec.Kind] {
			id, _ := spec.StringField(rec, "id")
			out.Nodes = append(out.Nodes, GraphNode{ID: id, Label: spec.Label(rec), Group: spec.Group})
		}
	}
	for _, spec := range registry.Links() {
		if len(spec.Refs) < 2 {
			continue
		}
		for _, rec := range snap[spec.Kind] {
			from, _ := spec.StringField(rec, spec.Refs[0].Field)
			to, _ := spec.StringField(rec, spec.Refs[1].Field)
			out.Edges = append(out.Edges, GraphEdge{From: from, To: to})
		}
	}
	for _, spec := range registry.Nodes() {
		for _, ref := range spec.Refs {
			for _, rec := range snap[spec.Kind] {
				parent, ok := spec.StringField(rec, ref.Field)
				if !ok || parent == "" {
					continue
				}
				id, _ := spec.StringField(rec, "id")
				out.Edges = append(out.Edges, GraphEdge{From: id, To: parent})
			}
		}
	}
	return out
}
