package ingestion

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/yungbote/sdgraph-backend/internal/data/ingest"
	"github.com/yungbote/sdgraph-backend/internal/domain/level"
	"github.com/yungbote/sdgraph-backend/internal/ingestion/bundle"
	apperr "github.com/yungbote/sdgraph-backend/internal/pkg/errors"
)

// Item is one decoded row ready to upsert.
type Item struct {
	Kind   ingest.Kind
	Key    ingest.Key
	Record ingest.Record
}

// Decoder turns bundle rows into typed records of the registry's kinds.
type Decoder struct {
	registry *ingest.Registry
}

func NewDecoder(registry *ingest.Registry) *Decoder {
	if registry == nil {
		registry = ingest.Default()
	}
	return &Decoder{registry: registry}
}

// Items decodes every row of b. Items are ordered by registry order so
// nodes come before the links that reference them; rows keep file order
// within a table. An unknown table is a ValidationError: the bundle is
// malformed, not a lookup that missed.
func (d *Decoder) Items(b bundle.Bundle) ([]Item, error) {
	specs := make([]*ingest.Spec, 0, len(b))
	for table := range b {
		spec, err := d.registry.Lookup(ingest.Kind(table))
		if err != nil {
			return nil, apperr.Validationf(table, "", "unknown table %q", table)
		}
		specs = append(specs, spec)
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Order() < specs[j].Order() })

	out := make([]Item, 0, b.Len())
	for _, spec := range specs {
		for i, row := range b[string(spec.Kind)] {
			rec, err := d.Record(spec, row)
			if err != nil {
				return nil, fmt.Errorf("%s row %d: %w", spec.Kind, i+1, err)
			}
			key, err := spec.KeyOf(rec)
			if err != nil {
				return nil, fmt.Errorf("%s row %d: %w", spec.Kind, i+1, err)
			}
			out = append(out, Item{Kind: spec.Kind, Key: key, Record: rec})
		}
	}
	return out, nil
}

// Record decodes one row into a new record of spec's kind. Cell values
// are weakly typed: numbers become strings, "yes"/"no" become booleans and
// levels accept names or codes.
func (d *Decoder) Record(spec *ingest.Spec, row bundle.Row) (ingest.Record, error) {
	rec := spec.New()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           rec,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			levelHook,
			boolHook,
			timeHook,
		),
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(compact(row)); err != nil {
		return nil, apperr.Validation(string(spec.Kind), "", err)
	}
	return rec, nil
}

// compact drops nil values and blank strings.
func compact(row bundle.Row) map[string]any {
	out := make(map[string]any, len(row))
	for col, v := range row {
		switch tv := v.(type) {
		case nil:
			continue
		case string:
			if strings.TrimSpace(tv) == "" {
				continue
			}
		}
		out[strings.TrimSpace(col)] = v
	}
	return out
}

var (
	levelType = reflect.TypeOf(level.Level(""))
	boolType  = reflect.TypeOf(true)
	timeType  = reflect.TypeOf(time.Time{})
)

func levelHook(from, to reflect.Type, data any) (any, error) {
	if to != levelType {
		return data, nil
	}
	return level.Parse(strings.TrimSpace(fmt.Sprint(data)))
}

func boolHook(from, to reflect.Type, data any) (any, error) {
	if to != boolType || from.Kind() != reflect.String {
		return data, nil
	}
	switch strings.ToLower(strings.TrimSpace(fmt.Sprint(data))) {
	case "yes", "y", "true", "t", "1":
		return true, nil
	case "no", "n", "false", "f", "0":
		return false, nil
	}
	return data, nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func timeHook(from, to reflect.Type, data any) (any, error) {
	if to != timeType || from.Kind() != reflect.String {
		return data, nil
	}
	s := strings.TrimSpace(fmt.Sprint(data))
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return nil, fmt.Errorf("cannot parse %q as a timestamp", s)
}
