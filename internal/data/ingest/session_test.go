package ingest_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yungbote/sdgraph-backend/internal/data/ingest"
	"github.com/yungbote/sdgraph-backend/internal/data/repos/testutil"
	"github.com/yungbote/sdgraph-backend/internal/domain/level"
	"github.com/yungbote/sdgraph-backend/internal/domain/links"
	"github.com/yungbote/sdgraph-backend/internal/domain/nodes"
	apperr "github.com/yungbote/sdgraph-backend/internal/pkg/errors"
)

func newEngine(t *testing.T, db *gorm.DB, opts ...ingest.Option) *ingest.Engine {
	t.Helper()
	return ingest.NewEngine(db, testutil.Logger(t), ingest.Default(), opts...)
}

func count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func finalize(t *testing.T, s *ingest.Session) *ingest.Report {
	t.Helper()
	rep, err := s.Finalize()
	require.NoError(t, err)
	return rep
}

func TestUpsertFirstImportWins(t *testing.T) {
	db := testutil.DB(t)
	eng := newEngine(t, db)
	ctx := context.Background()

	s := eng.Begin(ctx)
	rec, created, err := s.Upsert(ingest.KindPractice, ingest.NodeKey("p1"),
		&nodes.Practice{ID: "p1", Name: "Dry stacking", Category: "tailings"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Dry stacking", rec.(*nodes.Practice).Name)
	finalize(t, s)

	s = eng.Begin(ctx)
	rec, created, err = s.Upsert(ingest.KindPractice, ingest.NodeKey("p1"),
		&nodes.Practice{ID: "p1", Name: "Dry stacking v2", Category: "tailings-updated"})
	require.NoError(t, err)
	assert.False(t, created)
	got := rec.(*nodes.Practice)
	assert.Equal(t, "Dry stacking", got.Name)
	assert.Equal(t, "tailings", got.Category)
	rep := finalize(t, s)
	assert.Equal(t, 0, rep.Created)
	assert.Equal(t, 1, rep.Existing)

	var stored nodes.Practice
	require.NoError(t, db.Take(&stored, "id = ?", "p1").Error)
	assert.Equal(t, "Dry stacking", stored.Name)
	assert.Equal(t, int64(1), count(t, db, &nodes.Practice{}))
}

func TestLinkLookupIgnoresAttributes(t *testing.T) {
	db := testutil.DB(t)
	eng := newEngine(t, db)
	ctx := context.Background()

	s := eng.Begin(ctx)
	_, _, err := ingest.Upsert(s, &nodes.Practice{ID: "p1", Name: "Dry stacking"})
	require.NoError(t, err)
	_, _, err = ingest.Upsert(s, &nodes.Target{ID: "1.1", Description: "Eradicate extreme poverty"})
	require.NoError(t, err)
	link, created, err := ingest.Upsert(s, &links.PracticeToTargetLink{
		PracticeID: "p1", TargetID: "1.1", RelevanceWeight: level.High, IsDirect: testutil.PtrBool(true),
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, level.High, link.RelevanceWeight)
	finalize(t, s)

	s = eng.Begin(ctx)
	link, created, err = ingest.Upsert(s, &links.PracticeToTargetLink{
		PracticeID: "p1", TargetID: "1.1", RelevanceWeight: level.Low, IsDirect: testutil.PtrBool(false),
		Evidence: "different evidence",
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, level.High, link.RelevanceWeight)
	require.NotNil(t, link.IsDirect)
	assert.True(t, *link.IsDirect)
	finalize(t, s)

	assert.Equal(t, int64(1), count(t, db, &links.PracticeToTargetLink{}))
}

func TestSameKeyTwiceInOneSession(t *testing.T) {
	db := testutil.DB(t)
	s := newEngine(t, db).Begin(context.Background())

	first, created, err := ingest.Upsert(s, &nodes.Concern{ID: "concern_jobs", Name: "Jobs"})
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := ingest.Upsert(s, &nodes.Concern{ID: "concern_jobs", Name: "Employment"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.NotSame(t, first, second)
	assert.Equal(t, first, second)
	assert.Equal(t, "Jobs", second.Name)
	assert.Equal(t, 1, s.Pending())

	rep := finalize(t, s)
	assert.Equal(t, ingest.KindCount{Kind: ingest.KindConcern, Created: 1, Existing: 1}, rep.Kind(ingest.KindConcern))
	assert.Equal(t, int64(1), count(t, db, &nodes.Concern{}))
}

func TestReturnedRecordIsDetachedFromSession(t *testing.T) {
	db := testutil.DB(t)
	s := newEngine(t, db).Begin(context.Background())

	rec, created, err := ingest.Upsert(s, &nodes.Practice{ID: "p1", Name: "Dry stacking"})
	require.NoError(t, err)
	require.True(t, created)
	rec.ID = "p2"
	rec.Name = "Renamed"

	again, created, err := ingest.Upsert(s, &nodes.Practice{ID: "p1", Name: "Other"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "p1", again.ID)
	assert.Equal(t, "Dry stacking", again.Name)
	again.Name = "Changed again"

	link, _, err := ingest.Upsert(s, &links.PracticeToTargetLink{
		PracticeID: "p1", TargetID: "6.3", RelevanceWeight: level.Low, IsDirect: testutil.PtrBool(true),
	})
	require.NoError(t, err)
	*link.IsDirect = false
	_, _, err = ingest.Upsert(s, &nodes.Target{ID: "6.3", Description: "Water quality"})
	require.NoError(t, err)

	finalize(t, s)

	var ids []string
	require.NoError(t, db.Model(&nodes.Practice{}).Order("id").Pluck("id", &ids).Error)
	assert.Equal(t, []string{"p1"}, ids)
	var stored nodes.Practice
	require.NoError(t, db.Take(&stored, "id = ?", "p1").Error)
	assert.Equal(t, "Dry stacking", stored.Name)
	var storedLink links.PracticeToTargetLink
	require.NoError(t, db.Take(&storedLink, "practice_id = ? AND target_id = ?", "p1", "6.3").Error)
	require.NotNil(t, storedLink.IsDirect)
	assert.True(t, *storedLink.IsDirect)
}

func TestCreationTimestampIsStampedOnce(t *testing.T) {
	db := testutil.DB(t)
	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	t1 := t0.Add(48 * time.Hour)
	ctx := context.Background()

	s := newEngine(t, db, ingest.WithClock(func() time.Time { return t0 })).Begin(ctx)
	_, _, err := ingest.Upsert(s, &nodes.Practice{ID: "p1", Name: "Dry stacking"})
	require.NoError(t, err)
	_, _, err = ingest.Upsert(s, &nodes.Target{ID: "6.3", Description: "Water quality"})
	require.NoError(t, err)
	link, _, err := ingest.Upsert(s, &links.PracticeToTargetLink{
		PracticeID: "p1", TargetID: "6.3", RelevanceWeight: level.Medium, IsDirect: testutil.PtrBool(true),
	})
	require.NoError(t, err)
	assert.True(t, link.LastUpdated.Equal(t0))
	finalize(t, s)

	s = newEngine(t, db, ingest.WithClock(func() time.Time { return t1 })).Begin(ctx)
	again, created, err := ingest.Upsert(s, &links.PracticeToTargetLink{
		PracticeID: "p1", TargetID: "6.3", RelevanceWeight: level.Medium, IsDirect: testutil.PtrBool(true),
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.True(t, again.LastUpdated.Equal(t0), "got %s", again.LastUpdated)
	finalize(t, s)

	for i := 0; i < 2; i++ {
		var stored links.PracticeToTargetLink
		require.NoError(t, db.Take(&stored, "practice_id = ? AND target_id = ?", "p1", "6.3").Error)
		assert.True(t, stored.LastUpdated.Equal(t0), "read %d got %s", i, stored.LastUpdated)
	}
}

func TestSuppliedTimestampIsKept(t *testing.T) {
	db := testutil.DB(t)
	supplied := time.Date(2023, 7, 9, 0, 0, 0, 0, time.UTC)
	s := newEngine(t, db).Begin(context.Background())
	_, _, err := ingest.Upsert(s, &nodes.Practice{ID: "p1", Name: "Dry stacking"})
	require.NoError(t, err)
	_, _, err = ingest.Upsert(s, &nodes.Target{ID: "6.3", Description: "Water quality"})
	require.NoError(t, err)
	link, _, err := ingest.Upsert(s, &links.PracticeToTargetLink{
		PracticeID: "p1", TargetID: "6.3", RelevanceWeight: level.Low, IsDirect: testutil.PtrBool(false),
		LastUpdated: supplied,
	})
	require.NoError(t, err)
	assert.True(t, link.LastUpdated.Equal(supplied))
	finalize(t, s)
}

// scenarioRecords is a batch of three nodes and two links between them.
func scenarioRecords() []ingest.Record {
	return []ingest.Record{
		&nodes.Practice{ID: "p1", Name: "Dry stacking", Category: "tailings"},
		&nodes.Target{ID: "1.1", Description: "Eradicate extreme poverty"},
		&nodes.Concern{ID: "concern_jobs", Name: "Local jobs"},
		&links.PracticeToTargetLink{PracticeID: "p1", TargetID: "1.1", RelevanceWeight: level.High, IsDirect: testutil.PtrBool(true)},
		&links.ConcernToTargetLink{ConcernID: "concern_jobs", TargetID: "1.1", Evidence: "survey 2021"},
	}
}

func upsertAll(t *testing.T, s *ingest.Session, recs []ingest.Record) []bool {
	t.Helper()
	reg := ingest.Default()
	out := make([]bool, 0, len(recs))
	for _, rec := range recs {
		spec, err := reg.KindOf(rec)
		require.NoError(t, err)
		key, err := spec.KeyOf(rec)
		require.NoError(t, err)
		_, created, err := s.Upsert(spec.Kind, key, rec)
		require.NoError(t, err)
		out = append(out, created)
	}
	return out
}

func totalRows(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var total int64
	for _, spec := range ingest.Default().Specs() {
		total += count(t, db, spec.New())
	}
	return total
}

func TestReimportIsANoop(t *testing.T) {
	db := testutil.DB(t)
	eng := newEngine(t, db)
	ctx := context.Background()

	s := eng.Begin(ctx)
	assert.Equal(t, []bool{true, true, true, true, true}, upsertAll(t, s, scenarioRecords()))
	rep := finalize(t, s)
	assert.Equal(t, 5, rep.Created)
	assert.Equal(t, int64(5), totalRows(t, db))

	s = eng.Begin(ctx)
	assert.Equal(t, []bool{false, false, false, false, false}, upsertAll(t, s, scenarioRecords()))
	assert.Equal(t, 0, s.Pending())
	rep = finalize(t, s)
	assert.Equal(t, 0, rep.Created)
	assert.Equal(t, 5, rep.Existing)
	assert.Equal(t, int64(5), totalRows(t, db))
}

func TestFinalizeIsAllOrNothing(t *testing.T) {
	db := testutil.DB(t)
	s := newEngine(t, db).Begin(context.Background())

	upsertAll(t, s, scenarioRecords())
	_, created, err := ingest.Upsert(s, &links.PracticeToTargetLink{
		PracticeID: "p1", TargetID: "99.9", RelevanceWeight: level.Low, IsDirect: testutil.PtrBool(false),
	})
	require.NoError(t, err, "missing referents are only detected at finalization")
	assert.True(t, created)

	rep, err := s.Finalize()
	require.Error(t, err)
	assert.Nil(t, rep)
	assert.True(t, errors.Is(err, apperr.ErrReferential), "got %v", err)

	var refErr *apperr.ReferentialError
	require.True(t, errors.As(err, &refErr))
	assert.Equal(t, string(ingest.KindPracticeToTarget), refErr.Kind)
	assert.Contains(t, refErr.Key, "99.9")

	assert.Equal(t, int64(0), totalRows(t, db))
}

func TestNodesAreInsertedBeforeLinks(t *testing.T) {
	db := testutil.DB(t)
	s := newEngine(t, db).Begin(context.Background())

	recs := scenarioRecords()
	reversed := make([]ingest.Record, 0, len(recs))
	for i := len(recs) - 1; i >= 0; i-- {
		reversed = append(reversed, recs[i])
	}
	upsertAll(t, s, reversed)
	rep := finalize(t, s)
	assert.Equal(t, 5, rep.Created)
	assert.Equal(t, int64(5), totalRows(t, db))
}

func TestConcurrentWriterIsTreatedAsExisting(t *testing.T) {
	db := testutil.DB(t)
	eng := newEngine(t, db)
	ctx := context.Background()

	a := eng.Begin(ctx)
	b := eng.Begin(ctx)
	_, createdA, err := ingest.Upsert(a, &nodes.Goal{ID: "SDG6", Name: "Clean water"})
	require.NoError(t, err)
	_, createdB, err := ingest.Upsert(b, &nodes.Goal{ID: "SDG6", Name: "Water and sanitation"})
	require.NoError(t, err)
	require.True(t, createdA)
	require.True(t, createdB)

	finalize(t, a)
	rep := finalize(t, b)
	assert.Equal(t, 0, rep.Created)
	assert.Equal(t, 1, rep.Existing)

	var stored nodes.Goal
	require.NoError(t, db.Take(&stored, "id = ?", "SDG6").Error)
	assert.Equal(t, "Clean water", stored.Name)
	assert.Equal(t, int64(1), count(t, db, &nodes.Goal{}))
}

func TestDiscardPersistsNothing(t *testing.T) {
	db := testutil.DB(t)
	s := newEngine(t, db).Begin(context.Background())
	upsertAll(t, s, scenarioRecords())
	s.Discard()
	s.Discard()

	_, err := s.Finalize()
	assert.ErrorIs(t, err, ingest.ErrSessionClosed)
	_, _, err = ingest.Upsert(s, &nodes.Concern{ID: "c2", Name: "Dust"})
	assert.ErrorIs(t, err, ingest.ErrSessionClosed)
	assert.Equal(t, int64(0), totalRows(t, db))
}

func TestSessionIsSingleUse(t *testing.T) {
	db := testutil.DB(t)
	s := newEngine(t, db).Begin(context.Background())
	rep := finalize(t, s)
	assert.Equal(t, 0, rep.Created)

	_, err := s.Finalize()
	assert.ErrorIs(t, err, ingest.ErrSessionClosed)
	_, _, err = s.Upsert(ingest.KindConcern, ingest.NodeKey("c1"), &nodes.Concern{ID: "c1", Name: "Noise"})
	assert.ErrorIs(t, err, ingest.ErrSessionClosed)
}

func TestUpsertValidation(t *testing.T) {
	db := testutil.DB(t)
	s := newEngine(t, db).Begin(context.Background())

	cases := []struct {
		name    string
		kind    ingest.Kind
		key     ingest.Key
		payload ingest.Record
		field   string
	}{
		{"missing required name", ingest.KindPractice, ingest.NodeKey("p1"), &nodes.Practice{ID: "p1"}, "name"},
		{"missing required weight", ingest.KindStakeholderToConcern,
			ingest.Key{"stakeholder_id": "sh1", "concern_id": "c1"},
			&links.StakeholderToConcernLink{StakeholderID: "sh1", ConcernID: "c1"}, "priority_weight"},
		{"level outside the scale", ingest.KindObjectiveToGoal,
			ingest.Key{"sd_objective_id": "Env", "sdg_goal_id": "SDG6"},
			&links.ObjectiveToGoalLink{ObjectiveID: "Env", GoalID: "SDG6", Weight: level.Level("EXTREME")}, "weight"},
		{"missing is_direct flag", ingest.KindPracticeToTarget,
			ingest.Key{"practice_id": "p1", "target_id": "1.1"},
			&links.PracticeToTargetLink{PracticeID: "p1", TargetID: "1.1", RelevanceWeight: level.High}, "is_direct"},
		{"key disagrees with payload", ingest.KindPractice, ingest.NodeKey("p2"),
			&nodes.Practice{ID: "p1", Name: "Dry stacking"}, "id"},
		{"key has attribute columns", ingest.KindPractice, ingest.Key{"id": "p1", "name": "Dry stacking"},
			&nodes.Practice{ID: "p1", Name: "Dry stacking"}, ""},
		{"link key misses an endpoint", ingest.KindConcernToTarget, ingest.Key{"concern_id": "c1"},
			&links.ConcernToTargetLink{ConcernID: "c1", TargetID: "1.1"}, ""},
		{"payload of another kind", ingest.KindConcern, ingest.NodeKey("p1"),
			&nodes.Practice{ID: "p1", Name: "Dry stacking"}, ""},
		{"nil payload", ingest.KindConcern, ingest.NodeKey("c1"), nil, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := s.Upsert(tc.kind, tc.key, tc.payload)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
			var verr *apperr.ValidationError
			require.True(t, errors.As(err, &verr))
			if tc.field != "" {
				assert.Equal(t, tc.field, verr.Field)
			}
		})
	}
	assert.Equal(t, 0, s.Pending())
}

func TestUnknownKind(t *testing.T) {
	db := testutil.DB(t)
	s := newEngine(t, db).Begin(context.Background())
	_, _, err := s.Upsert(ingest.Kind("sdg_widget"), ingest.NodeKey("w1"), &nodes.Concern{ID: "w1", Name: "x"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

type recordingObserver struct {
	upserts   map[bool]int
	outcomes  []string
	finalized int
}

func (o *recordingObserver) ObserveUpsert(_ string, created bool) { o.upserts[created]++ }
func (o *recordingObserver) ObserveFinalize(outcome string, records int, _ time.Duration) {
	o.outcomes = append(o.outcomes, outcome)
	o.finalized += records
}

func TestObserverSeesOutcomes(t *testing.T) {
	db := testutil.DB(t)
	obs := &recordingObserver{upserts: map[bool]int{}}
	eng := newEngine(t, db, ingest.WithObserver(obs))

	s := eng.Begin(context.Background())
	upsertAll(t, s, scenarioRecords())
	finalize(t, s)

	s = eng.Begin(context.Background())
	upsertAll(t, s, scenarioRecords())
	finalize(t, s)

	assert.Equal(t, 5, obs.upserts[true])
	assert.Equal(t, 5, obs.upserts[false])
	assert.Equal(t, []string{"committed", "empty"}, obs.outcomes)
	assert.Equal(t, 5, obs.finalized)
}
