package imports

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/yungbote/sdgraph-backend/internal/data/repos/testutil"
	types "github.com/yungbote/sdgraph-backend/internal/domain"
	"github.com/yungbote/sdgraph-backend/internal/pkg/dbctx"
)

func TestImportRunRepo(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background()}
	repo := NewImportRunRepo(db, testutil.Logger(t))

	now := time.Now().UTC()
	older, err := repo.Create(dbc, &types.ImportRun{Source: "seed.yaml", Format: "yaml", StartedAt: now.Add(-time.Hour)})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, older.ID)
	assert.Equal(t, types.ImportStatusRunning, older.Status)

	newer, err := repo.Create(dbc, &types.ImportRun{Source: "data/", Format: "csv", StartedAt: now})
	require.NoError(t, err)

	finished := now.Add(time.Minute)
	require.NoError(t, repo.UpdateFields(dbc, older.ID, map[string]interface{}{
		"status":      types.ImportStatusSucceeded,
		"created":     4,
		"existing":    1,
		"summary":     datatypes.JSON([]byte(`{"kinds":[]}`)),
		"finished_at": finished,
	}))

	got, err := repo.GetByID(dbc, older.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, types.ImportStatusSucceeded, got.Status)
	assert.Equal(t, 4, got.Created)
	assert.Equal(t, 1, got.Existing)
	require.NotNil(t, got.FinishedAt)

	missing, err := repo.GetByID(dbc, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	recent, err := repo.ListRecent(dbc, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, newer.ID, recent[0].ID)
	assert.Equal(t, older.ID, recent[1].ID)

	recent, err = repo.ListRecent(dbc, 1)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}
