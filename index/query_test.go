package index

import (
	"context"
	"math"
	"slices"
	"sync"
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/zindex/geom"
	"github.com/hupe1980/zindex/morton"
	"github.com/hupe1980/zindex/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildFour(t *testing.T) *Index {
	t.Helper()
	x, err := Build(context.Background(), newEncoder(t, 2, 1), fourPoints())
	require.NoError(t, err)
	return x
}

func TestQuery(t *testing.T) {
	x := buildFour(t)
	q := geom.Point{0.4, 0.4}

	t.Run("Candidate", func(t *testing.T) {
		candidates, err := x.Candidates(q)
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Equal(t, uint64(3), candidates[0].Code)
		assert.Equal(t, geom.Point{0.5, 0.5}, candidates[0].Point)
	})

	t.Run("Match", func(t *testing.T) {
		matches, err := x.Query(q, 0.2)
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, uint32(0), matches[0].ID)
		assert.InDelta(t, math.Sqrt(0.02), matches[0].Distance, 1e-12)
	})

	t.Run("CandidateButNoMatch", func(t *testing.T) {
		matches, err := x.Query(q, 0.01)
		require.NoError(t, err)
		assert.Empty(t, matches)

		found, matched, err := x.Count(q, 0.01)
		require.NoError(t, err)
		assert.Equal(t, 1, found)
		assert.Equal(t, 0, matched)
	})

	t.Run("InvalidEpsilon", func(t *testing.T) {
		_, err := x.Query(q, -1)
		assert.ErrorIs(t, err, ErrInvalidEpsilon)
		_, _, err = x.Count(q, math.NaN())
		assert.ErrorIs(t, err, ErrInvalidEpsilon)
	})

	t.Run("InfiniteEpsilon", func(t *testing.T) {
		found, matched, err := x.Count(q, math.Inf(1))
		require.NoError(t, err)
		assert.Equal(t, found, matched)
	})

	t.Run("DimensionMismatch", func(t *testing.T) {
		_, err := x.Query(geom.Point{0.4}, 0.2)
		assert.IsType(t, &geom.ErrDimensionMismatch{}, err)
	})

	t.Run("OutOfBounds", func(t *testing.T) {
		_, err := x.Query(geom.Point{1.5, 0}, 0.2)
		assert.IsType(t, &morton.ErrOutOfBounds{}, err)
	})
}

func TestQueryResultsAreCopies(t *testing.T) {
	x := buildFour(t)
	q := geom.Point{0.4, 0.4}

	matches, err := x.Query(q, 0.2)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	matches[0].Point[0], matches[0].Point[1] = -0.9, -0.9

	candidates, err := x.Candidates(q)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	candidates[0].Point[0] = -0.9

	assert.Equal(t, geom.Point{0.5, 0.5}, x.Entry(3).Point)

	matches, err = x.Query(q, 0.2)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, geom.Point{0.5, 0.5}, matches[0].Point)

	for i, e := range x.All() {
		code, err := x.Encoder().Encode(e.Point)
		require.NoError(t, err)
		assert.Equal(t, x.Code(i), code)
	}
}

func TestQueryBoundaryBlindness(t *testing.T) {
	// The stored point sits in cell (0,0) at distance 0.02 from a query in
	// cell (1,0). Same-cell lookup must not return it.
	x, err := Build(context.Background(), newEncoder(t, 2, 1), []geom.Point{{-0.01, -0.5}})
	require.NoError(t, err)

	q := geom.Point{0.01, -0.5}
	matches, err := x.Query(q, 1)
	require.NoError(t, err)
	assert.Empty(t, matches)

	found, _, err := x.Count(q, 1)
	require.NoError(t, err)
	assert.Zero(t, found)
}

func TestQueryEmptyIndex(t *testing.T) {
	x := Empty(newEncoder(t, 3, 4))

	matches, err := x.Query(geom.Point{0, 0, 0}, 1)
	require.NoError(t, err)
	assert.Empty(t, matches)

	assert.Equal(t, 0, x.LowerBound(0))
	lo, hi := x.Cell(0)
	assert.Equal(t, lo, hi)
}

func TestLowerBound(t *testing.T) {
	x := buildFour(t)

	for code := uint64(0); code < 4; code++ {
		assert.Equal(t, int(code), x.LowerBound(code))
	}
	assert.Equal(t, 4, x.LowerBound(4))
}

func TestSameCellCompleteness(t *testing.T) {
	rng := testutil.NewRNG(4711)
	enc := newEncoder(t, 3, 3)
	points := rng.UniformPoints(5000, enc.Box())

	x, err := Build(context.Background(), enc, points)
	require.NoError(t, err)

	for range 200 {
		q := rng.PointIn(enc.Box())

		want, err := testutil.SameCell(enc, points, q)
		require.NoError(t, err)

		candidates, err := x.Candidates(q)
		require.NoError(t, err)
		got := make([]uint32, 0, len(candidates))
		for _, c := range candidates {
			got = append(got, c.ID)
		}
		assert.Equal(t, nilIfEmpty(want), nilIfEmpty(got))

		wantMatches, err := testutil.SameCellWithin(enc, points, q, 0.1)
		require.NoError(t, err)
		ids, err := x.MatchIDs(q, 0.1)
		require.NoError(t, err)
		assert.Equal(t, nilIfEmpty(wantMatches), nilIfEmpty(ids.ToArray()))
	}
}

func nilIfEmpty(ids []uint32) []uint32 {
	if len(ids) == 0 {
		return nil
	}
	return ids
}

func TestQueryFiltered(t *testing.T) {
	rng := testutil.NewRNG(99)
	enc := newEncoder(t, 2, 2)
	points := rng.UniformPoints(2000, enc.Box())

	x, err := Build(context.Background(), enc, points)
	require.NoError(t, err)

	q := geom.Point{0.3, 0.3}
	all, err := x.Query(q, 0.5)
	require.NoError(t, err)
	require.NotEmpty(t, all)

	allow := roaring.New()
	for _, m := range all {
		if m.ID%2 == 0 {
			allow.Add(m.ID)
		}
	}

	filtered, err := x.QueryFiltered(q, 0.5, allow)
	require.NoError(t, err)
	assert.Equal(t, int(allow.GetCardinality()), len(filtered))
	for _, m := range filtered {
		assert.True(t, allow.Contains(m.ID))
	}

	unfiltered, err := x.QueryFiltered(q, 0.5, nil)
	require.NoError(t, err)
	assert.Equal(t, all, unfiltered)
}

func TestMatchIDs(t *testing.T) {
	x := buildFour(t)

	ids, err := x.MatchIDs(geom.Point{0.4, 0.4}, 0.2)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0}, ids.ToArray())

	ids, err = x.MatchIDs(geom.Point{0.4, 0.4}, 0.01)
	require.NoError(t, err)
	assert.True(t, ids.IsEmpty())
}

func TestConcurrentQueries(t *testing.T) {
	rng := testutil.NewRNG(7)
	enc := newEncoder(t, 3, 5)
	points := rng.UniformPoints(10000, enc.Box())

	x, err := Build(context.Background(), enc, points)
	require.NoError(t, err)

	queries := rng.UniformPoints(64, enc.Box())
	want := make([][]Match, len(queries))
	for i, q := range queries {
		want[i], err = x.Query(q, 0.05)
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i, q := range queries {
				got, err := x.Query(q, 0.05)
				if err != nil {
					errs <- err
					return
				}
				if !slices.EqualFunc(got, want[i], func(a, b Match) bool { return a.ID == b.ID }) {
					assert.Fail(t, "concurrent query mismatch", "query %d", i)
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
}

func TestStats(t *testing.T) {
	x := buildFour(t)
	s := x.Stats()
	assert.Equal(t, Stats{Entries: 4, Cells: 4, MaxOccupancy: 1, MeanOccupancy: 1}, s)

	enc := newEncoder(t, 2, 1)
	y, err := Build(context.Background(), enc, []geom.Point{{0.1, 0.1}, {0.2, 0.2}, {0.3, 0.3}, {-0.5, -0.5}})
	require.NoError(t, err)
	s = y.Stats()
	assert.Equal(t, 2, s.Cells)
	assert.Equal(t, 3, s.MaxOccupancy)
	assert.InDelta(t, 2.0, s.MeanOccupancy, 1e-12)

	assert.Equal(t, Stats{}, Empty(enc).Stats())
}

func BenchmarkQuery(b *testing.B) {
	rng := testutil.NewRNG(4711)
	enc := newEncoder(b, 3, 10)
	x, err := Build(context.Background(), enc, rng.UniformPoints(100000, enc.Box()))
	require.NoError(b, err)

	fast := testutil.NewFastRNG(4711)
	box := enc.Box()
	q := make(geom.Point, 3)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := x.Count(fast.PointIn(box, q), 0.001); err != nil {
			b.Fatal(err)
		}
	}
}
