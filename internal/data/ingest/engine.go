package ingest

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/sdgraph-backend/internal/pkg/logger"
)

// Observer receives ingestion outcomes, typically to feed metrics.
type Observer interface {
	ObserveUpsert(kind string, created bool)
	ObserveFinalize(outcome string, records int, took time.Duration)
}

// Engine performs get-or-create over the kinds of a Registry. It holds no
// per-import state; each import runs in its own Session.
type Engine struct {
	db       *gorm.DB
	log      *logger.Logger
	registry *Registry
	now      func() time.Time
	observer Observer
}

type Option func(*Engine)

// WithClock overrides the time source used for creation defaults.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

func NewEngine(db *gorm.DB, baseLog *logger.Logger, registry *Registry, opts ...Option) *Engine {
	if registry == nil {
		registry = Default()
	}
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	e := &Engine{
		db:       db,
		log:      baseLog.With("component", "IngestEngine"),
		registry: registry,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Registry() *Registry { return e.registry }

// Begin opens an ingestion session bound to ctx.
//
// The caller owns the session and must end it with Finalize or Discard.
// A session that is dropped without Finalize persists nothing: every
// pending record it accumulated is silently lost.
func (e *Engine) Begin(ctx context.Context) *Session {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Session{
		ctx:    ctx,
		engine: e,
		index:  map[string]*pending{},
		tally:  newTally(),
		state:  stateOpen,
	}
}

func (e *Engine) observeUpsert(kind Kind, created bool) {
	if e.observer != nil {
		e.observer.ObserveUpsert(string(kind), created)
	}
}

func (e *Engine) observeFinalize(outcome string, records int, took time.Duration) {
	if e.observer != nil {
		e.observer.ObserveFinalize(outcome, records, took)
	}
}
