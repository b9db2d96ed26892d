package bundle

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "github.com/yungbote/sdgraph-backend/internal/pkg/errors"
)

func TestDecodeYAML(t *testing.T) {
	b, err := DecodeYAML(strings.NewReader(`
practice:
  - id: p1
    name: Dry stacking
    capital_intensity: H/M
sdg_target:
  - id: "1.1"
    description: Eradicate extreme poverty
`))
	require.NoError(t, err)
	require.Len(t, b["practice"], 1)
	assert.Equal(t, "Dry stacking", b["practice"][0]["name"])
	assert.Equal(t, "1.1", b["sdg_target"][0]["id"])
	assert.Equal(t, 2, b.Len())

	empty, err := DecodeYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())

	_, err = DecodeYAML(strings.NewReader("practice: [oops"))
	assert.True(t, errors.Is(err, apperr.ErrInvalidArgument))
}

func TestDecodeYAMLKeepsScalarText(t *testing.T) {
	b, err := DecodeYAML(strings.NewReader(`
sdg_target:
  - id: 8.1
    description: Sustain per capita growth
  - id: 8.10
    description: Strengthen domestic financial institutions
  - id: 17.10
    description: Promote a universal trading system
    parent_goal_id: 17
practice_to_target_link:
  - practice_id: p1
    target_id: 8.10
    is_direct: yes
    remark: ~
    evidence: &shared 007
  - practice_id: p2
    target_id: 8.1
    is_direct: false
    evidence: *shared
`))
	require.NoError(t, err)

	targets := b["sdg_target"]
	require.Len(t, targets, 3)
	assert.Equal(t, "8.1", targets[0]["id"])
	assert.Equal(t, "8.10", targets[1]["id"])
	assert.Equal(t, "17.10", targets[2]["id"])
	assert.Equal(t, "17", targets[2]["parent_goal_id"])

	links := b["practice_to_target_link"]
	require.Len(t, links, 2)
	assert.Equal(t, "8.10", links[0]["target_id"])
	assert.Equal(t, "yes", links[0]["is_direct"])
	assert.Nil(t, links[0]["remark"])
	assert.Equal(t, "007", links[0]["evidence"])
	assert.Equal(t, "007", links[1]["evidence"])
	assert.Equal(t, "false", links[1]["is_direct"])
}

func TestDecodeYAMLRejectsBadShapes(t *testing.T) {
	for name, doc := range map[string]string{
		"top level list":  "- practice\n",
		"rows not a list": "practice:\n  id: p1\n",
		"row not a map":   "practice:\n  - p1\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeYAML(strings.NewReader(doc))
			assert.True(t, errors.Is(err, apperr.ErrInvalidArgument), "%v", err)
		})
	}

	b, err := DecodeYAML(strings.NewReader("practice:\n"))
	require.NoError(t, err)
	assert.Contains(t, b, "practice")
	assert.Equal(t, 0, b.Len())
}

func TestDecodeJSON(t *testing.T) {
	b, err := DecodeJSON(strings.NewReader(`{"concern":[{"id":"concern_jobs","name":"Jobs"}],"sdg_goal":[{"id":1,"name":"No poverty"}]}`))
	require.NoError(t, err)
	assert.Equal(t, "Jobs", b["concern"][0]["name"])
	assert.Equal(t, json.Number("1"), b["sdg_goal"][0]["id"])

	_, err = DecodeJSON(strings.NewReader(`[1,2]`))
	assert.True(t, errors.Is(err, apperr.ErrInvalidArgument))
}

func TestDecodeCSVDropsEmptyCells(t *testing.T) {
	b, err := DecodeCSV(strings.NewReader("\ufeffid, name ,category\np1,Dry stacking,\np2,Water recycling,water\n,,\n"), "practice")
	require.NoError(t, err)
	rows := b["practice"]
	require.Len(t, rows, 2)
	assert.Equal(t, Row{"id": "p1", "name": "Dry stacking"}, rows[0])
	assert.Equal(t, "water", rows[1]["category"])
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	csvDir := filepath.Join(dir, "tables")
	require.NoError(t, os.Mkdir(csvDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(csvDir, "concern.csv"), []byte("id,name\nc1,Jobs\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(csvDir, "practice.csv"), []byte("id,name\np1,Dry stacking\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(csvDir, "notes.txt"), []byte("ignored"), 0o644))

	b, format, err := Load(csvDir)
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, format)
	assert.Len(t, b, 2)
	assert.Equal(t, "Jobs", b["concern"][0]["name"])

	yamlPath := filepath.Join(dir, "seed.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("concern:\n  - id: c1\n    name: Jobs\n"), 0o644))
	b, format, err = Load(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, format)
	assert.Len(t, b["concern"], 1)

	csvPath := filepath.Join(dir, "stakeholder_group.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("id,name\ng1,Communities\n"), 0o644))
	b, _, err = Load(csvPath)
	require.NoError(t, err)
	assert.Len(t, b["stakeholder_group"], 1)

	txt := filepath.Join(dir, "seed.txt")
	require.NoError(t, os.WriteFile(txt, []byte("x"), 0o644))
	_, _, err = Load(txt)
	assert.True(t, errors.Is(err, apperr.ErrInvalidArgument))

	_, _, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
