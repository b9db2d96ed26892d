package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/datatypes"

	"github.com/yungbote/sdgraph-backend/internal/data/graph"
	"github.com/yungbote/sdgraph-backend/internal/data/ingest"
	"github.com/yungbote/sdgraph-backend/internal/data/repos"
	types "github.com/yungbote/sdgraph-backend/internal/domain"
	"github.com/yungbote/sdgraph-backend/internal/ingestion"
	"github.com/yungbote/sdgraph-backend/internal/ingestion/bundle"
	"github.com/yungbote/sdgraph-backend/internal/observability"
	"github.com/yungbote/sdgraph-backend/internal/pkg/dbctx"
	apperr "github.com/yungbote/sdgraph-backend/internal/pkg/errors"
	"github.com/yungbote/sdgraph-backend/internal/pkg/logger"
	"github.com/yungbote/sdgraph-backend/internal/platform/ctxutil"
	"github.com/yungbote/sdgraph-backend/internal/platform/neo4jdb"
)

type ImportRequest struct {
	Source string
	Format string
	Bundle bundle.Bundle
}

type ImportResult struct {
	RunID      uuid.UUID        `json:"run_id"`
	Report     *ingest.Report   `json:"report"`
	Projection *graph.SyncStats `json:"projection,omitempty"`
}

type ImportService interface {
	Import(ctx context.Context, req ImportRequest) (*ImportResult, error)
	ImportPath(ctx context.Context, path string) (*ImportResult, error)
	ListRuns(ctx context.Context, limit int) ([]*types.ImportRun, error)
	GetRun(ctx context.Context, id uuid.UUID) (*types.ImportRun, error)
	Project(ctx context.Context) (*graph.SyncStats, error)
}

type importService struct {
	log     *logger.Logger
	engine  *ingest.Engine
	decoder *ingestion.Decoder
	runs    repos.ImportRunRepo
	graph   GraphService
	neo4j   *neo4jdb.Client
	metrics *observability.Metrics

	// One import at a time per process; cross-process races are settled by
	// the engine at finalization.
	mu sync.Mutex
}

func NewImportService(
	baseLog *logger.Logger,
	engine *ingest.Engine,
	runs repos.ImportRunRepo,
	graphSvc GraphService,
	neo4j *neo4jdb.Client,
	metrics *observability.Metrics,
) ImportService {
	return &importService{
		log:     baseLog.With("service", "ImportService"),
		engine:  engine,
		decoder: ingestion.NewDecoder(engine.Registry()),
		runs:    runs,
		graph:   graphSvc,
		neo4j:   neo4j,
		metrics: metrics,
	}
}

func (s *importService) ImportPath(ctx context.Context, path string) (*ImportResult, error) {
	b, format, err := bundle.Load(path)
	if err != nil {
		return nil, err
	}
	return s.Import(ctx, ImportRequest{Source: path, Format: format, Bundle: b})
}

// Import upserts every row of the bundle in one session, nodes first, and
// records the outcome as an import run. Nothing from the bundle is stored
// unless the whole bundle finalizes.
func (s *importService) Import(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, span := observability.Tracer().Start(ctx, "import.bundle")
	defer span.End()
	span.SetAttributes(
		attribute.String("import.source", req.Source),
		attribute.String("import.format", req.Format),
		attribute.Int("import.rows", req.Bundle.Len()),
	)

	dbc := dbctx.Context{Ctx: ctx}
	run, err := s.runs.Create(dbc, &types.ImportRun{
		Source: req.Source,
		Format: req.Format,
		Status: types.ImportStatusRunning,
	})
	if err != nil {
		return nil, fmt.Errorf("create import run: %w", err)
	}
	ctxutil.SetImportRun(ctx, run.ID.String())
	log := s.log.With(append([]interface{}{"import_run_id", run.ID.String(), "source", req.Source}, ctxutil.LogFields(ctx)...)...)

	rep, err := s.ingest(ctx, req.Bundle)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "import failed")
		s.finish(dbc, run.ID, types.ImportStatusFailed, nil, err)
		s.metrics.ObserveImport(req.Format, types.ImportStatusFailed)
		log.Warn("Import failed", "error", err)
		return nil, err
	}

	s.finish(dbc, run.ID, types.ImportStatusSucceeded, rep, nil)
	s.metrics.ObserveImport(req.Format, types.ImportStatusSucceeded)
	span.SetAttributes(attribute.Int("import.created", rep.Created), attribute.Int("import.existing", rep.Existing))
	log.Info("Import finished", "created", rep.Created, "existing", rep.Existing)

	out := &ImportResult{RunID: run.ID, Report: rep}
	if rep.Created > 0 {
		s.graph.Invalidate(ctx)
		if s.neo4j != nil {
			stats, err := s.project(ctx)
			if err != nil {
				log.Warn("Graph projection failed (import kept)", "error", err)
			} else {
				out.Projection = stats
			}
		}
	}
	return out, nil
}

func (s *importService) ingest(ctx context.Context, b bundle.Bundle) (*ingest.Report, error) {
	items, err := s.decoder.Items(b)
	if err != nil {
		return nil, err
	}
	session := s.engine.Begin(ctx)
	for _, it := range items {
		if _, _, err := session.Upsert(it.Kind, it.Key, it.Record); err != nil {
			session.Discard()
			return nil, fmt.Errorf("%s %s: %w", it.Kind, it.Key, err)
		}
	}
	return session.Finalize()
}

func (s *importService) finish(dbc dbctx.Context, id uuid.UUID, status string, rep *ingest.Report, cause error) {
	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status":      status,
		"finished_at": now,
	}
	if rep != nil {
		updates["created"] = rep.Created
		updates["existing"] = rep.Existing
		if b, err := json.Marshal(rep); err == nil {
			updates["summary"] = datatypes.JSON(b)
		}
	}
	if cause != nil {
		updates["error"] = cause.Error()
	}
	// The import outcome stands even if its audit row cannot be updated.
	if err := s.runs.UpdateFields(dbctx.Context{Ctx: context.WithoutCancel(dbc.Ctx)}, id, updates); err != nil {
		s.log.Error("Failed to update import run", "import_run_id", id.String(), "error", err)
	}
}

func (s *importService) ListRuns(ctx context.Context, limit int) ([]*types.ImportRun, error) {
	return s.runs.ListRecent(dbctx.Context{Ctx: ctx}, limit)
}

func (s *importService) GetRun(ctx context.Context, id uuid.UUID) (*types.ImportRun, error) {
	run, err := s.runs.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, apperr.NotFound("import run", id.String())
	}
	return run, nil
}

// Project mirrors the current store into Neo4j. Without a configured
// client it does nothing.
func (s *importService) Project(ctx context.Context) (*graph.SyncStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.project(ctx)
}

func (s *importService) project(ctx context.Context) (*graph.SyncStats, error) {
	if s.neo4j == nil {
		s.metrics.ObserveProjection("skipped")
		return &graph.SyncStats{}, nil
	}
	ctx, span := observability.Tracer().Start(ctx, "graph.project")
	defer span.End()

	snap, err := s.graph.Snapshot(ctx)
	if err != nil {
		s.metrics.ObserveProjection("failed")
		return nil, err
	}
	stats, err := graph.SyncKnowledgeGraph(ctx, s.neo4j, s.log, s.engine.Registry(), snap)
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveProjection("failed")
		return nil, err
	}
	s.metrics.ObserveProjection("succeeded")
	return stats, nil
}
