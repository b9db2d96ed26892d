package kg

import (
	"fmt"
	"reflect"

	"gorm.io/gorm"

	"github.com/yungbote/sdgraph-backend/internal/data/ingest"
	"github.com/yungbote/sdgraph-backend/internal/pkg/dbctx"
	"github.com/yungbote/sdgraph-backend/internal/pkg/logger"
)

// TableRepo reads whole node and link tables. Tables are small reference
// data sets so nothing is paginated.
type TableRepo interface {
	Tables() []string
	ListRecords(dbc dbctx.Context, kind ingest.Kind) ([]ingest.Record, error)
	ListRows(dbc dbctx.Context, table string) ([]map[string]any, error)
	RowCount(dbc dbctx.Context) (int64, error)
}

type tableRepo struct {
	db       *gorm.DB
	log      *logger.Logger
	registry *ingest.Registry
}

func NewTableRepo(db *gorm.DB, baseLog *logger.Logger, registry *ingest.Registry) TableRepo {
	if registry == nil {
		registry = ingest.Default()
	}
	return &tableRepo{
		db:       db,
		log:      baseLog.With("repo", "TableRepo"),
		registry: registry,
	}
}

// Tables lists table names in registry order, nodes first.
func (r *tableRepo) Tables() []string {
	specs := r.registry.Specs()
	out := make([]string, 0, len(specs))
	for _, s := range specs {
		out = append(out, string(s.Kind))
	}
	return out
}

func (r *tableRepo) ListRecords(dbc dbctx.Context, kind ingest.Kind) ([]ingest.Record, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	spec, err := r.registry.Lookup(kind)
	if err != nil {
		return nil, err
	}

	slice := reflect.New(reflect.SliceOf(reflect.TypeOf(spec.New())))
	q := transaction.WithContext(dbc.Ctx).Model(spec.New())
	for _, col := range spec.Identity {
		q = q.Order(col)
	}
	if err := q.Find(slice.Interface()).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}

	rows := slice.Elem()
	out := make([]ingest.Record, 0, rows.Len())
	for i := 0; i < rows.Len(); i++ {
		out = append(out, rows.Index(i).Interface().(ingest.Record))
	}
	return out, nil
}

// ListRows returns every row of table as a column -> value map.
func (r *tableRepo) ListRows(dbc dbctx.Context, table string) ([]map[string]any, error) {
	spec, err := r.registry.Lookup(ingest.Kind(table))
	if err != nil {
		return nil, err
	}
	recs, err := r.ListRecords(dbc, spec.Kind)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(recs))
	for _, rec := range recs {
		out = append(out, spec.Row(rec))
	}
	return out, nil
}

// RowCount is the total number of rows across every registered table.
// Ingestion only inserts, so the count changes with every import that
// stores anything and is never reused for different content.
func (r *tableRepo) RowCount(dbc dbctx.Context) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var total int64
	for _, spec := range r.registry.Specs() {
		var n int64
		if err := transaction.WithContext(dbc.Ctx).Model(spec.New()).Count(&n).Error; err != nil {
			return 0, fmt.Errorf("count %s: %w", spec.Kind, err)
		}
		total += n
	}
	return total, nil
}
