package ingest

import (
	"fmt"
	"sort"
	"strings"

	apperr "github.com/yungbote/sdgraph-backend/internal/pkg/errors"
)

// Key is an identity key: identity column name -> value. Nodes have one
// entry, links one per endpoint.
type Key map[string]any

// NodeKey builds the key of a node kind whose identity column is "id".
func NodeKey(id string) Key { return Key{"id": id} }

// String renders the key with columns sorted by name.
func (k Key) String() string {
	cols := make([]string, 0, len(k))
	for col := range k {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return k.format(cols)
}

func (k Key) format(cols []string) string {
	parts := make([]string, 0, len(cols))
	for _, col := range cols {
		parts = append(parts, fmt.Sprintf("%s=%v", col, k[col]))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// checkKey enforces that key carries exactly the identity columns of the
// kind, each a non-empty string, and that payload agrees with it.
func (s *Spec) checkKey(key Key, payload Record) error {
	if len(key) != len(s.Identity) {
		return apperr.Validationf(string(s.Kind), "", "identity key must have exactly %v, got %s", s.Identity, key)
	}
	for _, col := range s.Identity {
		raw, ok := key[col]
		if !ok {
			return apperr.Validationf(string(s.Kind), col, "missing from identity key")
		}
		v, ok := raw.(string)
		if !ok || strings.TrimSpace(v) == "" {
			return apperr.Validationf(string(s.Kind), col, "identity value must be a non-empty string")
		}
		got, _ := s.StringField(payload, col)
		if got != v {
			return apperr.Validationf(string(s.Kind), col, "payload has %q but identity key has %q", got, v)
		}
	}
	return nil
}

// canonical is the session-local index key for a record.
func (s *Spec) canonical(key Key) string {
	var b strings.Builder
	b.WriteString(string(s.Kind))
	for _, col := range s.Identity {
		b.WriteByte(0x1f)
		fmt.Fprint(&b, key[col])
	}
	return b.String()
}

func (s *Spec) describe(key Key) string { return key.format(s.Identity) }
