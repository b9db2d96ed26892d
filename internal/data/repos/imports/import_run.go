package imports

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/sdgraph-backend/internal/domain"
	"github.com/yungbote/sdgraph-backend/internal/pkg/dbctx"
	"github.com/yungbote/sdgraph-backend/internal/pkg/logger"
)

type ImportRunRepo interface {
	Create(dbc dbctx.Context, run *types.ImportRun) (*types.ImportRun, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ImportRun, error)
	ListRecent(dbc dbctx.Context, limit int) ([]*types.ImportRun, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type importRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewImportRunRepo(db *gorm.DB, baseLog *logger.Logger) ImportRunRepo {
	return &importRunRepo{
		db:  db,
		log: baseLog.With("repo", "ImportRunRepo"),
	}
}

func (r *importRunRepo) Create(dbc dbctx.Context, run *types.ImportRun) (*types.ImportRun, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	if run.Status == "" {
		run.Status = types.ImportStatusRunning
	}
	if err := transaction.WithContext(dbc.Ctx).Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

// GetByID returns nil, nil when no run has the id.
func (r *importRunRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ImportRun, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var run types.ImportRun
	if err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&run).Error; err != nil {
		return nil, err
	}
	if run.ID == uuid.Nil {
		return nil, nil
	}
	return &run, nil
}

func (r *importRunRepo) ListRecent(dbc dbctx.Context, limit int) ([]*types.ImportRun, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		limit = 50
	}
	var out []*types.ImportRun
	if err := transaction.WithContext(dbc.Ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *importRunRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.ImportRun{}).
		Where("id = ?", id).
		Updates(updates).Error
}
