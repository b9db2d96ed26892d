package ingest

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"gorm.io/gorm/schema"

	apperr "github.com/yungbote/sdgraph-backend/internal/pkg/errors"
)

// Kind names a node or link collection. It is the table name.
type Kind string

type Class int

const (
	ClassNode Class = iota + 1
	ClassLink
)

func (c Class) String() string {
	switch c {
	case ClassNode:
		return "node"
	case ClassLink:
		return "link"
	default:
		return "unknown"
	}
}

// Record is any persisted node or link model, always handled by pointer.
type Record interface {
	TableName() string
}

// Ref declares that Field holds the identity of a record of kind To.
type Ref struct {
	Field string
	To    Kind
}

// Spec describes one kind: its model, the ordered identity columns used
// for lookups and the columns that reference other kinds. Attribute
// columns are everything else on the model and are never used to find
// an existing record.
type Spec struct {
	Kind     Kind
	Class    Class
	New      func() Record
	Identity []string
	Refs     []Ref

	// Generated columns are filled by Defaults at creation time and are
	// not part of the caller's payload.
	Generated []string
	Defaults  func(rec Record, now time.Time)

	// Group and Label drive the graph export for node kinds.
	Group string
	Label func(rec Record) string

	order  int
	schema *schema.Schema
	typ    reflect.Type
}

// Registry is the closed set of kinds the ingestion layer knows about.
// Registration order is the insertion order used at finalization, so
// node kinds must be registered before the links that reference them.
type Registry struct {
	specs  []*Spec
	byKind map[Kind]*Spec
}

func NewRegistry(specs ...*Spec) (*Registry, error) {
	r := &Registry{byKind: make(map[Kind]*Spec, len(specs))}
	cache := &sync.Map{}
	for i, s := range specs {
		if s == nil || s.New == nil {
			return nil, fmt.Errorf("registry: spec %d has no model", i)
		}
		model := s.New()
		if s.Kind == "" {
			s.Kind = Kind(model.TableName())
		}
		if Kind(model.TableName()) != s.Kind {
			return nil, fmt.Errorf("registry: kind %q does not match table %q", s.Kind, model.TableName())
		}
		if _, dup := r.byKind[s.Kind]; dup {
			return nil, fmt.Errorf("registry: duplicate kind %q", s.Kind)
		}
		if len(s.Identity) == 0 {
			return nil, fmt.Errorf("registry: kind %q has no identity fields", s.Kind)
		}
		sch, err := schema.Parse(model, cache, schema.NamingStrategy{})
		if err != nil {
			return nil, fmt.Errorf("registry: parse %q: %w", s.Kind, err)
		}
		for _, col := range s.Identity {
			if sch.LookUpField(col) == nil {
				return nil, fmt.Errorf("registry: kind %q has no identity column %q", s.Kind, col)
			}
		}
		for _, ref := range s.Refs {
			if sch.LookUpField(ref.Field) == nil {
				return nil, fmt.Errorf("registry: kind %q has no reference column %q", s.Kind, ref.Field)
			}
		}
		for _, ref := range s.Refs {
			target, ok := r.byKind[ref.To]
			if !ok {
				return nil, fmt.Errorf("registry: kind %q references %q which is not registered before it", s.Kind, ref.To)
			}
			if target.Class != ClassNode {
				return nil, fmt.Errorf("registry: kind %q references non-node kind %q", s.Kind, ref.To)
			}
		}
		if s.Class == ClassNode && s.Label == nil {
			return nil, fmt.Errorf("registry: node kind %q has no label", s.Kind)
		}
		s.order = i
		s.schema = sch
		s.typ = reflect.TypeOf(model)
		r.specs = append(r.specs, s)
		r.byKind[s.Kind] = s
	}
	return r, nil
}

// Lookup resolves a kind name. Unknown names are a NotFoundError.
func (r *Registry) Lookup(kind Kind) (*Spec, error) {
	if s, ok := r.byKind[kind]; ok {
		return s, nil
	}
	return nil, apperr.NotFound("kind", string(kind))
}

// KindOf resolves the spec for a record by its table name.
func (r *Registry) KindOf(rec Record) (*Spec, error) {
	if isNilRecord(rec) {
		return nil, apperr.Validationf("", "", "nil record")
	}
	s, err := r.Lookup(Kind(rec.TableName()))
	if err != nil {
		return nil, err
	}
	if reflect.TypeOf(rec) != s.typ {
		return nil, apperr.Validationf(string(s.Kind), "", "expected %s, got %T", s.typ, rec)
	}
	return s, nil
}

// Specs returns every kind in insertion order.
func (r *Registry) Specs() []*Spec {
	out := make([]*Spec, len(r.specs))
	copy(out, r.specs)
	return out
}

func (r *Registry) Nodes() []*Spec { return r.filter(ClassNode) }
func (r *Registry) Links() []*Spec { return r.filter(ClassLink) }

func (r *Registry) filter(c Class) []*Spec {
	var out []*Spec
	for _, s := range r.specs {
		if s.Class == c {
			out = append(out, s)
		}
	}
	return out
}

// Order is the registration index; lower inserts first.
func (s *Spec) Order() int { return s.order }

// Columns lists the persisted column names of the kind in model order.
func (s *Spec) Columns() []string {
	out := make([]string, 0, len(s.schema.DBNames))
	out = append(out, s.schema.DBNames...)
	return out
}

// KeyOf extracts the identity key from a record of this kind.
func (s *Spec) KeyOf(rec Record) (Key, error) {
	if isNilRecord(rec) {
		return nil, apperr.Validationf(string(s.Kind), "", "nil record")
	}
	key := make(Key, len(s.Identity))
	for _, col := range s.Identity {
		v, ok := s.StringField(rec, col)
		if !ok || v == "" {
			return nil, apperr.Validationf(string(s.Kind), col, "identity field is required")
		}
		key[col] = v
	}
	return key, nil
}

// StringField reads a string or *string column from rec.
func (s *Spec) StringField(rec Record, col string) (string, bool) {
	v, ok := s.Field(rec, col)
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}

// Field reads column col from rec, dereferencing pointers. A nil pointer
// reports ok=false.
func (s *Spec) Field(rec Record, col string) (any, bool) {
	f := s.schema.LookUpField(col)
	if f == nil {
		return nil, false
	}
	rv := f.ReflectValueOf(context.Background(), reflect.Indirect(reflect.ValueOf(rec)))
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	return rv.Interface(), true
}

// FieldType is the Go type of column col with pointers removed, nil when
// the kind has no such column.
func (s *Spec) FieldType(col string) reflect.Type {
	f := s.schema.LookUpField(col)
	if f == nil {
		return nil
	}
	t := f.FieldType
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// Row flattens a record into a column -> value map.
func (s *Spec) Row(rec Record) map[string]any {
	out := make(map[string]any, len(s.schema.DBNames))
	for _, col := range s.schema.DBNames {
		v, ok := s.Field(rec, col)
		if !ok {
			out[col] = nil
			continue
		}
		out[col] = v
	}
	return out
}

// sameAttributes reports whether two records of this kind agree on every
// column except the generated ones.
func (s *Spec) sameAttributes(a, b Record) bool {
	for _, col := range s.schema.DBNames {
		if s.isGenerated(col) {
			continue
		}
		av, aok := s.Field(a, col)
		bv, bok := s.Field(b, col)
		if aok != bok || !reflect.DeepEqual(av, bv) {
			return false
		}
	}
	return true
}

func (s *Spec) isGenerated(col string) bool {
	for _, g := range s.Generated {
		if g == col {
			return true
		}
	}
	return false
}

// clone copies rec, including the values behind optional pointer columns,
// so the copy shares no memory with rec.
func (s *Spec) clone(rec Record) Record {
	src := reflect.ValueOf(rec)
	cp := reflect.New(src.Elem().Type())
	cp.Elem().Set(src.Elem())
	for i := 0; i < cp.Elem().NumField(); i++ {
		f := cp.Elem().Field(i)
		if f.Kind() != reflect.Pointer || f.IsNil() || !f.CanSet() {
			continue
		}
		v := reflect.New(f.Type().Elem())
		v.Elem().Set(f.Elem())
		f.Set(v)
	}
	return cp.Interface().(Record)
}

func isNilRecord(rec Record) bool {
	if rec == nil {
		return true
	}
	rv := reflect.ValueOf(rec)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
