package level

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Level is the 5-point ordinal scale used for weights, priorities and
// qualitative ratings. The stored form is the canonical name.
type Level string

const (
	High       Level = "HIGH"
	HighMedium Level = "HIGH_MEDIUM"
	Medium     Level = "MEDIUM"
	MediumLow  Level = "MEDIUM_LOW"
	Low        Level = "LOW"
)

// All lists the levels from strongest to weakest.
var All = []Level{High, HighMedium, Medium, MediumLow, Low}

var codes = map[Level]string{
	High:       "H",
	HighMedium: "H/M",
	Medium:     "M",
	MediumLow:  "M/L",
	Low:        "L",
}

var ranks = map[Level]int{
	High:       5,
	HighMedium: 4,
	Medium:     3,
	MediumLow:  2,
	Low:        1,
}

// Parse accepts a canonical name ("HIGH_MEDIUM", "high medium") or the
// short spreadsheet code ("H/M").
func Parse(raw string) (Level, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("empty level")
	}
	up := strings.ToUpper(s)
	for l, code := range codes {
		if up == code {
			return l, nil
		}
	}
	name := Level(strings.NewReplacer("-", "_", " ", "_").Replace(up))
	if _, ok := ranks[name]; ok {
		return name, nil
	}
	return "", fmt.Errorf("unknown level %q", raw)
}

func MustParse(raw string) Level {
	l, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return l
}

func (l Level) Valid() bool {
	_, ok := ranks[l]
	return ok
}

// Code is the short form used in the source spreadsheets.
func (l Level) Code() string { return codes[l] }

// Rank is 5 for HIGH down to 1 for LOW, 0 for an invalid level.
func (l Level) Rank() int { return ranks[l] }

// Compare returns -1, 0 or 1 as l is weaker than, equal to or stronger than o.
func (l Level) Compare(o Level) int {
	a, b := l.Rank(), o.Rank()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (l Level) String() string { return string(l) }

func (l Level) Value() (driver.Value, error) {
	if l == "" {
		return nil, nil
	}
	if !l.Valid() {
		return nil, fmt.Errorf("invalid level %q", string(l))
	}
	return string(l), nil
}

func (l *Level) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = ""
		return nil
	case string:
		return l.set(v)
	case []byte:
		return l.set(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Level", src)
	}
}

func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(l))
}

func (l *Level) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("level must be a string: %w", err)
	}
	return l.set(s)
}

func (l *Level) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	return l.set(s)
}

func (l *Level) set(s string) error {
	if strings.TrimSpace(s) == "" {
		*l = ""
		return nil
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// GormDataType keeps the column a plain string on every dialect.
func (Level) GormDataType() string { return "string" }

func Ptr(l Level) *Level { return &l }
