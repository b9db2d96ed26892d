// Package bundle reads import bundles: a set of tables, each a list of rows
// keyed by column name. Bundles come as one YAML or JSON document mapping
// table name to rows, or as CSV files named after their table.
package bundle

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	apperr "github.com/yungbote/sdgraph-backend/internal/pkg/errors"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatCSV  = "csv"
)

type Row map[string]any

// Bundle maps table name to its rows in file order.
type Bundle map[string][]Row

// Len is the total number of rows.
func (b Bundle) Len() int {
	n := 0
	for _, rows := range b {
		n += len(rows)
	}
	return n
}

// Merge appends other's rows to b.
func (b Bundle) Merge(other Bundle) {
	for table, rows := range other {
		b[table] = append(b[table], rows...)
	}
}

func DecodeJSON(r io.Reader) (Bundle, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var raw map[string][]map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, apperr.Validation("", "", fmt.Errorf("decode json bundle: %w", err))
	}
	return fromRaw(raw), nil
}

// DecodeYAML keeps every scalar cell as its source text. Resolving
// scalars would turn an unquoted target id such as 8.10 into the float
// 8.1 and merge it with target 8.1.
func DecodeYAML(r io.Reader) (Bundle, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return Bundle{}, nil
		}
		return nil, apperr.Validation("", "", fmt.Errorf("decode yaml bundle: %w", err))
	}
	root := resolveAlias(&doc)
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return Bundle{}, nil
		}
		root = resolveAlias(root.Content[0])
	}
	if isNull(root) {
		return Bundle{}, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, yamlError(root, "", "bundle must map table names to rows")
	}

	b := make(Bundle, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		table := strings.TrimSpace(root.Content[i].Value)
		rowsNode := resolveAlias(root.Content[i+1])
		if isNull(rowsNode) {
			b[table] = nil
			continue
		}
		if rowsNode.Kind != yaml.SequenceNode {
			return nil, yamlError(rowsNode, table, "rows must be a list")
		}
		rows := make([]Row, 0, len(rowsNode.Content))
		for _, rowNode := range rowsNode.Content {
			row, err := yamlRow(resolveAlias(rowNode), table)
			if err != nil {
				return nil, err
			}
			rows = append(rows, row)
		}
		b[table] = append(b[table], rows...)
	}
	return b, nil
}

func yamlRow(n *yaml.Node, table string) (Row, error) {
	if n.Kind != yaml.MappingNode {
		return nil, yamlError(n, table, "row must be a mapping")
	}
	row := make(Row, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		col := strings.TrimSpace(n.Content[i].Value)
		cell := resolveAlias(n.Content[i+1])
		switch {
		case isNull(cell):
			row[col] = nil
		case cell.Kind == yaml.ScalarNode:
			row[col] = cell.Value
		default:
			var v any
			if err := cell.Decode(&v); err != nil {
				return nil, apperr.Validation(table, col, fmt.Errorf("line %d: %w", cell.Line, err))
			}
			row[col] = v
		}
	}
	return row, nil
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func isNull(n *yaml.Node) bool {
	return n == nil || (n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null")
}

func yamlError(n *yaml.Node, table, msg string) error {
	return apperr.Validationf(table, "", "yaml bundle line %d: %s", n.Line, msg)
}

func fromRaw(raw map[string][]map[string]any) Bundle {
	b := make(Bundle, len(raw))
	for table, rows := range raw {
		out := make([]Row, 0, len(rows))
		for _, row := range rows {
			out = append(out, Row(row))
		}
		b[strings.TrimSpace(table)] = out
	}
	return b
}

// DecodeCSV reads one table. The first record is the header; empty cells
// are left out of the row so optional columns stay unset.
func DecodeCSV(r io.Reader, table string) (Bundle, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return Bundle{table: nil}, nil
	}
	if err != nil {
		return nil, apperr.Validation(table, "", fmt.Errorf("read csv header: %w", err))
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperr.Validation(table, "", fmt.Errorf("read csv: %w", err))
		}
		row := Row{}
		for i, cell := range record {
			if i >= len(header) || header[i] == "" {
				continue
			}
			if cell = strings.TrimSpace(cell); cell != "" {
				row[header[i]] = cell
			}
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	return Bundle{table: rows}, nil
}

// Load reads a bundle from path and reports its format. A directory is read
// as CSV files, one table per file; other files are chosen by extension.
func Load(path string) (Bundle, string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, "", err
	}
	if info.IsDir() {
		b, err := LoadCSVDir(path)
		return b, FormatCSV, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		b, err := DecodeJSON(bytes.NewReader(data))
		return b, FormatJSON, err
	case ".yaml", ".yml":
		b, err := DecodeYAML(bytes.NewReader(data))
		return b, FormatYAML, err
	case ".csv":
		b, err := DecodeCSV(bytes.NewReader(data), tableName(path))
		return b, FormatCSV, err
	default:
		return nil, "", apperr.Validationf("", "", "unsupported bundle file %q", filepath.Base(path))
	}
}

// LoadCSVDir reads every *.csv file of dir in name order.
func LoadCSVDir(dir string) (Bundle, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	out := Bundle{}
	for _, path := range matches {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		b, err := DecodeCSV(f, tableName(path))
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		out.Merge(b)
	}
	return out, nil
}

func tableName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
