package ingest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperr "github.com/yungbote/sdgraph-backend/internal/pkg/errors"
)

// ErrSessionClosed is returned by any call on a finalized or discarded session.
var ErrSessionClosed = errors.New("ingest: session is closed")

type sessionState int

const (
	stateOpen sessionState = iota
	stateFinalized
	stateDiscarded
)

type pending struct {
	spec *Spec
	key  Key
	rec  Record
}

// Session is a unit of work over the ingestion engine. Upserts accumulate
// pending inserts in memory; nothing is written until Finalize, which
// persists all of them in one transaction or none of them.
//
// A Session is not safe for concurrent use.
type Session struct {
	ctx     context.Context
	engine  *Engine
	pending []*pending
	index   map[string]*pending
	tally   *tally
	state   sessionState
}

// Upsert returns the record stored (or pending in this session) under key,
// or stages payload as a new record when the key is unknown. The lookup
// filters on the identity columns only; payload attributes never take part
// in it. An existing record is returned untouched even when payload
// carries different attribute values.
//
// The returned record is a copy; changing it does not change what the
// session persists.
func (s *Session) Upsert(kind Kind, key Key, payload Record) (Record, bool, error) {
	if s.state != stateOpen {
		return nil, false, ErrSessionClosed
	}
	spec, err := s.engine.registry.Lookup(kind)
	if err != nil {
		return nil, false, err
	}
	if isNilRecord(payload) {
		return nil, false, apperr.Validationf(string(kind), "", "payload is required")
	}
	if _, err := s.engine.registry.KindOf(payload); err != nil {
		return nil, false, err
	}
	if Kind(payload.TableName()) != kind {
		return nil, false, apperr.Validationf(string(kind), "", "payload is a %s record", payload.TableName())
	}
	if err := spec.checkKey(key, payload); err != nil {
		return nil, false, err
	}
	if err := validatePayload(kind, payload); err != nil {
		return nil, false, err
	}

	canon := spec.canonical(key)
	if p, ok := s.index[canon]; ok {
		s.kept(spec, key, p.rec, payload)
		return spec.clone(p.rec), false, nil
	}

	stored := spec.New()
	err = s.engine.db.WithContext(s.ctx).
		Where(map[string]any(key)).
		Take(stored).Error
	switch {
	case err == nil:
		s.kept(spec, key, stored, payload)
		return stored, false, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, false, fmt.Errorf("lookup %s %s: %w", kind, spec.describe(key), err)
	}

	rec := spec.clone(payload)
	if spec.Defaults != nil {
		spec.Defaults(rec, s.engine.now().UTC())
	}
	p := &pending{spec: spec, key: copyKey(key), rec: rec}
	s.pending = append(s.pending, p)
	s.index[canon] = p
	s.tally.created(spec)
	s.engine.observeUpsert(kind, true)
	return spec.clone(rec), true, nil
}

func (s *Session) kept(spec *Spec, key Key, existing, payload Record) {
	s.tally.existing(spec)
	s.engine.observeUpsert(spec.Kind, false)
	if !spec.sameAttributes(existing, payload) {
		s.engine.log.Debug("Identity already present, keeping first import",
			"kind", spec.Kind, "key", spec.describe(key))
	}
}

// Upsert is the typed form of Session.Upsert; the identity key is read
// from payload using the registry.
func Upsert[T Record](s *Session, payload T) (T, bool, error) {
	var zero T
	if s.state != stateOpen {
		return zero, false, ErrSessionClosed
	}
	spec, err := s.engine.registry.KindOf(payload)
	if err != nil {
		return zero, false, err
	}
	key, err := spec.KeyOf(payload)
	if err != nil {
		return zero, false, err
	}
	rec, created, err := s.Upsert(spec.Kind, key, payload)
	if err != nil {
		return zero, false, err
	}
	out, ok := rec.(T)
	if !ok {
		return zero, false, fmt.Errorf("ingest: %s upsert returned %T", spec.Kind, rec)
	}
	return out, created, nil
}

// Pending is the number of records staged for insertion.
func (s *Session) Pending() int { return len(s.pending) }

// Report is the running tally of the session.
func (s *Session) Report() *Report { return s.tally.report() }

// Finalize writes every pending record in one transaction, nodes before
// links. If any insert fails the transaction is rolled back and no record
// of the session is persisted; a missing referenced record surfaces as a
// ReferentialError. A record that another writer inserted after this
// session looked it up is re-read and counted as existing.
//
// The session is closed afterwards whatever the outcome.
func (s *Session) Finalize() (*Report, error) {
	if s.state != stateOpen {
		return nil, ErrSessionClosed
	}
	s.state = stateFinalized
	start := time.Now()

	if len(s.pending) == 0 {
		s.engine.observeFinalize("empty", 0, time.Since(start))
		return s.tally.report(), nil
	}

	ordered := make([]*pending, len(s.pending))
	copy(ordered, s.pending)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].spec.order < ordered[j].spec.order
	})

	final := s.tally.clone()
	err := s.engine.db.WithContext(s.ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range ordered {
			cols := make([]clause.Column, 0, len(p.spec.Identity))
			for _, c := range p.spec.Identity {
				cols = append(cols, clause.Column{Name: c})
			}
			res := tx.Omit(clause.Associations).
				Clauses(clause.OnConflict{Columns: cols, DoNothing: true}).
				Create(p.rec)
			if res.Error != nil {
				return classifyInsertError(p, res.Error)
			}
			if res.RowsAffected == 0 {
				if err := tx.Where(map[string]any(p.key)).Take(p.rec).Error; err != nil {
					return fmt.Errorf("re-read %s %s after conflict: %w", p.spec.Kind, p.spec.describe(p.key), err)
				}
				final.raced(p.spec)
			}
		}
		return nil
	})
	if err != nil {
		s.engine.log.Warn("Ingestion session rolled back", "pending", len(ordered), "error", err)
		s.engine.observeFinalize("failed", len(ordered), time.Since(start))
		s.pending = nil
		s.index = nil
		return nil, err
	}

	s.tally = final
	rep := final.report()
	s.engine.log.Info("Ingestion session finalized", "created", rep.Created, "existing", rep.Existing)
	s.engine.observeFinalize("committed", len(ordered), time.Since(start))
	s.pending = nil
	s.index = nil
	return rep, nil
}

// Discard drops all pending work. It is safe to call more than once and
// after Finalize.
func (s *Session) Discard() {
	if s.state == stateOpen {
		s.state = stateDiscarded
		if n := len(s.pending); n > 0 {
			s.engine.log.Debug("Ingestion session discarded", "pending", n)
		}
	}
	s.pending = nil
	s.index = nil
}

func classifyInsertError(p *pending, err error) error {
	if errors.Is(err, gorm.ErrForeignKeyViolated) || looksLikeFKViolation(err) {
		return &apperr.ReferentialError{Kind: string(p.spec.Kind), Key: p.spec.describe(p.key), Err: err}
	}
	return fmt.Errorf("insert %s %s: %w", p.spec.Kind, p.spec.describe(p.key), err)
}

// looksLikeFKViolation covers drivers whose errors gorm does not translate.
func looksLikeFKViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "foreign key") || strings.Contains(msg, "sqlstate 23503")
}

func copyKey(k Key) Key {
	out := make(Key, len(k))
	for c, v := range k {
		out[c] = v
	}
	return out
}
