package services

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/sdgraph-backend/internal/data/ingest"
	types "github.com/yungbote/sdgraph-backend/internal/domain"
	"github.com/yungbote/sdgraph-backend/internal/ingestion/bundle"
	apperr "github.com/yungbote/sdgraph-backend/internal/pkg/errors"
	"github.com/yungbote/sdgraph-backend/internal/platform/ctxutil"
)

func TestImportIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.imports.Import(ctx, ImportRequest{Source: "seed", Format: bundle.FormatJSON, Bundle: seedBundle()})
	require.NoError(t, err)
	assert.Equal(t, 11, first.Report.Created)
	assert.Equal(t, 0, first.Report.Existing)
	assert.Equal(t, ingest.KindCount{Kind: ingest.KindTarget, Created: 2}, first.Report.Kind(ingest.KindTarget))

	second, err := f.imports.Import(ctx, ImportRequest{Source: "seed", Format: bundle.FormatJSON, Bundle: seedBundle()})
	require.NoError(t, err)
	assert.Equal(t, 0, second.Report.Created)
	assert.Equal(t, 11, second.Report.Existing)
	assert.NotEqual(t, first.RunID, second.RunID)

	runs, err := f.imports.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	for _, run := range runs {
		assert.Equal(t, types.ImportStatusSucceeded, run.Status)
		assert.NotNil(t, run.FinishedAt)
	}

	var summary ingest.Report
	for _, run := range runs {
		if run.ID == first.RunID {
			require.NoError(t, json.Unmarshal(run.Summary, &summary))
		}
	}
	assert.Equal(t, 11, summary.Created)
}

func TestImportYAMLKeepsDottedTargetIDsDistinct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := bundle.DecodeYAML(strings.NewReader(`
sdg_target:
  - id: 8.1
    description: Sustain per capita growth
  - id: 8.10
    description: Strengthen domestic financial institutions
  - id: 10.1
    description: Income growth of the bottom 40 per cent
  - id: 10.10
    description: Placeholder for a tenth target
`))
	require.NoError(t, err)

	res, err := f.imports.Import(ctx, ImportRequest{Source: "targets.yaml", Format: bundle.FormatYAML, Bundle: b})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Report.Created)
	assert.Equal(t, 0, res.Report.Existing)

	var ids []string
	require.NoError(t, f.db.Table("sdg_target").Order("id").Pluck("id", &ids).Error)
	assert.Equal(t, []string{"10.1", "10.10", "8.1", "8.10"}, ids)
}

func TestImportWithDanglingLinkStoresNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b := bundle.Bundle{
		"practice": {{"id": "p1", "name": "Dry stacking"}},
		"practice_to_target_link": {
			{"practice_id": "p1", "target_id": "99.9", "relevance_weight": "LOW", "is_direct": false},
		},
	}
	_, err := f.imports.Import(ctx, ImportRequest{Source: "bad", Format: bundle.FormatJSON, Bundle: b})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrReferential))

	var n int64
	require.NoError(t, f.db.Model(&types.Practice{}).Count(&n).Error)
	assert.Zero(t, n)

	runs, err := f.imports.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, types.ImportStatusFailed, runs[0].Status)
	assert.Contains(t, runs[0].Error, "99.9")
}

func TestImportRecordsRunOnRequestTrace(t *testing.T) {
	f := newFixture(t)
	td := &ctxutil.TraceData{RequestID: "req-1"}
	ctx := ctxutil.WithTraceData(context.Background(), td)

	res, err := f.imports.Import(ctx, ImportRequest{Source: "api", Format: bundle.FormatJSON, Bundle: bundle.Bundle{
		"concern": {{"id": "c1", "name": "Water scarcity"}},
	}})
	require.NoError(t, err)
	assert.Equal(t, res.RunID.String(), td.ImportRunID)

	failed := &ctxutil.TraceData{}
	_, err = f.imports.Import(ctxutil.WithTraceData(context.Background(), failed), ImportRequest{Source: "api", Format: bundle.FormatJSON, Bundle: bundle.Bundle{
		"concern_to_target_link": {{"concern_id": "c1", "target_id": "99.9"}},
	}})
	require.Error(t, err)
	assert.NotEmpty(t, failed.ImportRunID)
}

func TestImportRejectsInvalidRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.imports.Import(ctx, ImportRequest{Source: "bad", Format: bundle.FormatYAML, Bundle: bundle.Bundle{
		"stakeholder_to_concern_link": {{"stakeholder_id": "s1", "concern_id": "c1"}},
	}})
	assert.True(t, errors.Is(err, apperr.ErrInvalidArgument))

	_, err = f.imports.Import(ctx, ImportRequest{Source: "bad", Format: bundle.FormatYAML, Bundle: bundle.Bundle{
		"widgets": {{"id": "w1"}},
	}})
	assert.True(t, errors.Is(err, apperr.ErrInvalidArgument))
}

func TestImportPathCSVDirectory(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write("practice.csv", "id,name,capital_intensity,long_term_liability\np1,Dry stacking,H/M,yes\n")
	write("practice_action.csv", "id,name\na1,Filter press\n")
	write("practice_to_action_link.csv", "practice_id,action_id,is_core\np1,a1,true\n")

	res, err := f.imports.ImportPath(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Report.Created)

	var p types.Practice
	require.NoError(t, f.db.Take(&p, "id = ?", "p1").Error)
	assert.Equal(t, types.Level("HIGH_MEDIUM"), p.CapitalIntensity)
	require.NotNil(t, p.LongTermLiability)
	assert.True(t, *p.LongTermLiability)
}

func TestProjectWithoutNeo4jIsSkipped(t *testing.T) {
	f := newFixture(t)
	stats, err := f.imports.Project(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Nodes)
}
