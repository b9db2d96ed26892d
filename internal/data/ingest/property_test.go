package ingest_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/yungbote/sdgraph-backend/internal/data/ingest"
	"github.com/yungbote/sdgraph-backend/internal/data/repos/testutil"
	"github.com/yungbote/sdgraph-backend/internal/domain/level"
	"github.com/yungbote/sdgraph-backend/internal/domain/links"
	"github.com/yungbote/sdgraph-backend/internal/domain/nodes"
)

// importBatch upserts practices p<i> for every i in ids, target 1.1 and a
// link from each practice to the target, then finalizes.
func importBatch(s *ingest.Session, ids []uint8, weight level.Level) (*ingest.Report, error) {
	if _, _, err := ingest.Upsert(s, &nodes.Target{ID: "1.1", Description: "Eradicate extreme poverty"}); err != nil {
		return nil, err
	}
	for _, i := range ids {
		id := fmt.Sprintf("p%d", i)
		if _, _, err := ingest.Upsert(s, &nodes.Practice{ID: id, Name: "Practice " + id}); err != nil {
			return nil, err
		}
		if _, _, err := ingest.Upsert(s, &links.PracticeToTargetLink{
			PracticeID: id, TargetID: "1.1", RelevanceWeight: weight, IsDirect: testutil.PtrBool(true),
		}); err != nil {
			return nil, err
		}
	}
	return s.Finalize()
}

func distinct(ids []uint8) int {
	seen := map[uint8]struct{}{}
	for _, i := range ids {
		seen[i] = struct{}{}
	}
	return len(seen)
}

func TestIngestionProperties(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping property-based test in short mode")
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20

	properties := gopter.NewProperties(parameters)
	weights := gen.IntRange(0, len(level.All)-1).Map(func(i int) level.Level { return level.All[i] })

	properties.Property("re-importing a batch creates nothing", prop.ForAll(
		func(ids []uint8, first, second level.Level) bool {
			db := testutil.DB(t)
			eng := newEngine(t, db)
			ctx := context.Background()

			if _, err := importBatch(eng.Begin(ctx), ids, first); err != nil {
				t.Log(err)
				return false
			}
			before := totalRows(t, db)
			rep, err := importBatch(eng.Begin(ctx), ids, second)
			if err != nil {
				t.Log(err)
				return false
			}
			return rep.Created == 0 && totalRows(t, db) == before
		},
		gen.SliceOf(gen.UInt8()),
		weights,
		weights,
	))

	properties.Property("one row per distinct identity", prop.ForAll(
		func(ids []uint8) bool {
			db := testutil.DB(t)
			eng := newEngine(t, db)

			rep, err := importBatch(eng.Begin(context.Background()), ids, level.Medium)
			if err != nil {
				t.Log(err)
				return false
			}
			n := int64(distinct(ids))
			return count(t, db, &nodes.Practice{}) == n &&
				count(t, db, &links.PracticeToTargetLink{}) == n &&
				count(t, db, &nodes.Target{}) == 1 &&
				rep.Created == int(2*n)+1 &&
				rep.Existing == 2*(len(ids)-int(n))
		},
		gen.SliceOf(gen.UInt8()),
	))

	properties.Property("overlapping batches converge", prop.ForAll(
		func(a, b []uint8) bool {
			db := testutil.DB(t)
			eng := newEngine(t, db)
			ctx := context.Background()

			if _, err := importBatch(eng.Begin(ctx), a, level.High); err != nil {
				return false
			}
			if _, err := importBatch(eng.Begin(ctx), b, level.Low); err != nil {
				return false
			}
			union := distinct(append(append([]uint8{}, a...), b...))
			return count(t, db, &nodes.Practice{}) == int64(union) &&
				count(t, db, &links.PracticeToTargetLink{}) == int64(union)
		},
		gen.SliceOf(gen.UInt8()),
		gen.SliceOf(gen.UInt8()),
	))

	properties.TestingRun(t)
}
