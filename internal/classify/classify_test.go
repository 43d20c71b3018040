package classify

import (
	"fmt"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/chloropleth-cli/internal/source"
)

func recs(pops ...int64) []source.CountyRecord {
	records := make([]source.CountyRecord, len(pops))
	for i, p := range pops {
		records[i] = source.CountyRecord{
			GEOID:      fmt.Sprintf("48/county-%02d", i),
			Name:       fmt.Sprintf("County %d", i),
			StateFIPS:  "48",
			Population: p,
		}
	}
	return records
}

func TestParseMethod(t *testing.T) {
	for _, name := range []string{"quantile", "jenks", "equal-interval"} {
		m, err := ParseMethod(name)
		require.NoError(t, err)
		assert.Equal(t, Method(name), m)
	}

	_, err := ParseMethod("stddev")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrUnknownMethod))
}

func TestClassifyEmptyInput(t *testing.T) {
	result, err := Classify(nil, Population, Quantile)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNoRecords))
	assert.True(t, result.Empty)
}

func TestClassifyNoUsableValues(t *testing.T) {
	result, err := Classify(recs(0, 0, -5), Population, Quantile)
	require.NoError(t, err)
	assert.True(t, result.Empty)
	assert.Empty(t, result.Assignments)
}

func TestEqualIntervalBreaks(t *testing.T) {
	records := recs(10, 20, 30, 40, 50, 60, 70, 80, 90, 100)
	result, err := Classify(records, Population, EqualInterval)
	require.NoError(t, err)
	require.False(t, result.Empty)

	wantBounds := []float64{10, 28, 46, 64, 82, 100}
	for i := 0; i < NumClasses; i++ {
		assert.InDelta(t, wantBounds[i], result.Intervals[i].Low, 1e-9, "class %d low", i)
		assert.InDelta(t, wantBounds[i+1], result.Intervals[i].High, 1e-9, "class %d high", i)
	}
}

func TestQuantileBalancedCounts(t *testing.T) {
	// Ten distinct values: a quantile split puts two in each class.
	records := recs(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	result, err := Classify(records, Population, Quantile)
	require.NoError(t, err)
	require.False(t, result.Empty)

	counts := make([]int, NumClasses)
	for _, class := range result.Assignments {
		counts[class]++
	}
	for i, n := range counts {
		assert.Equal(t, 2, n, "class %d", i)
	}
}

func TestNaturalBreaksIsolatesClusters(t *testing.T) {
	// Two tight clusters far apart: no class interval may span the gap.
	records := recs(10, 11, 12, 13, 14, 1000, 1001, 1002, 1003, 1004)
	result, err := Classify(records, Population, NaturalBreaks)
	require.NoError(t, err)
	require.False(t, result.Empty)

	assert.Less(t,
		result.Assignments["48/county-00"],
		result.Assignments["48/county-05"])

	// No class interval may straddle the gap between the clusters.
	clusterOf := make(map[int]bool)
	for i, rec := range records {
		class, ok := result.Assignments[rec.GEOID]
		require.True(t, ok)
		high := i >= 5
		if prev, seen := clusterOf[class]; seen {
			assert.Equal(t, prev, high, "class %d mixes clusters", class)
		}
		clusterOf[class] = high
	}
}

func TestClassifyBoundaryAssignment(t *testing.T) {
	// Upper edges are inclusive: a value sitting exactly on a boundary
	// belongs to the lower class.
	records := recs(10, 28, 46, 64, 82, 100)
	result, err := Classify(records, Population, EqualInterval)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Assignments["48/county-00"]) // 10 = min
	assert.Equal(t, 0, result.Assignments["48/county-01"]) // 28 = b1
	assert.Equal(t, 1, result.Assignments["48/county-02"]) // 46 = b2
	assert.Equal(t, 4, result.Assignments["48/county-05"]) // 100 = max
}

func TestClassifyAllEqualValues(t *testing.T) {
	result, err := Classify(recs(500, 500, 500, 500), Population, Quantile)
	require.NoError(t, err)
	require.False(t, result.Empty)

	for i := 0; i < NumClasses; i++ {
		assert.Equal(t, 500.0, result.Intervals[i].Low)
		assert.Equal(t, 500.0, result.Intervals[i].High)
	}
	for geoid, class := range result.Assignments {
		assert.Equal(t, 0, class, "geoid %s", geoid)
	}
}

func TestClassifyAllEqualValuesEveryMethod(t *testing.T) {
	// More values than classes, all identical: boundaries collapse to the
	// shared value under every method.
	records := recs(500, 500, 500, 500, 500, 500)
	for _, method := range []Method{Quantile, NaturalBreaks, EqualInterval} {
		result, err := Classify(records, Population, method)
		require.NoError(t, err)
		require.False(t, result.Empty)

		for i := 0; i < NumClasses; i++ {
			assert.Equal(t, 500.0, result.Intervals[i].Low, "method %s class %d", method, i)
			assert.Equal(t, 500.0, result.Intervals[i].High, "method %s class %d", method, i)
		}
		for geoid, class := range result.Assignments {
			assert.Equal(t, 0, class, "method %s geoid %s", method, geoid)
		}
	}
}

func TestNaturalBreaksDuplicateHeavy(t *testing.T) {
	// Six equal values and one outlier: the ties must still produce ordered
	// boundaries, with the outlier alone in the top class.
	records := recs(7, 7, 7, 7, 7, 7, 900)
	result, err := Classify(records, Population, NaturalBreaks)
	require.NoError(t, err)
	require.False(t, result.Empty)

	assert.Equal(t, 7.0, result.Intervals[0].Low)
	assert.Equal(t, 900.0, result.Intervals[NumClasses-1].High)
	for i := 1; i < NumClasses; i++ {
		assert.LessOrEqual(t, result.Intervals[i-1].High, result.Intervals[i].High,
			"class %d boundary out of order", i)
	}

	for i := 0; i < 6; i++ {
		geoid := fmt.Sprintf("48/county-%02d", i)
		assert.NotEqual(t, result.Assignments[geoid], result.Assignments["48/county-06"],
			"duplicate %s must not share the outlier's class", geoid)
	}
}

func TestClassifyExcludesNonPositive(t *testing.T) {
	records := recs(0, 10, 20, 30, 40, 50)
	result, err := Classify(records, Population, EqualInterval)
	require.NoError(t, err)

	_, ok := result.Assignments["48/county-00"]
	assert.False(t, ok, "zero-population county must have no assignment")
	assert.Len(t, result.Assignments, 5)
	// Breaks span only the usable values.
	assert.Equal(t, 10.0, result.Intervals[0].Low)
	assert.Equal(t, 50.0, result.Intervals[NumClasses-1].High)
}

func TestClassifyDeterministic(t *testing.T) {
	records := recs(312, 45, 78123, 990, 45, 6620, 871, 12, 3400, 560)
	for _, method := range []Method{Quantile, NaturalBreaks, EqualInterval} {
		a, err := Classify(records, Population, method)
		require.NoError(t, err)
		b, err := Classify(records, Population, method)
		require.NoError(t, err)
		assert.Equal(t, a, b, "method %s", method)
	}
}

func TestClassifyUnknownMethod(t *testing.T) {
	_, err := Classify(recs(1, 2, 3), Population, Method("stddev"))
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrUnknownMethod))
}

func TestIntervalsAreContiguous(t *testing.T) {
	records := recs(3, 19, 56, 91, 144, 233, 377, 610, 987, 1597)
	for _, method := range []Method{Quantile, NaturalBreaks, EqualInterval} {
		result, err := Classify(records, Population, method)
		require.NoError(t, err)
		for i := 1; i < NumClasses; i++ {
			assert.Equal(t, result.Intervals[i-1].High, result.Intervals[i].Low,
				"method %s class %d", method, i)
		}
		assert.Equal(t, 3.0, result.Intervals[0].Low, "method %s", method)
		assert.Equal(t, 1597.0, result.Intervals[NumClasses-1].High, "method %s", method)
	}
}

func TestJenksFewDistinctValues(t *testing.T) {
	// Fewer values than classes falls back to equal intervals without error.
	result, err := Classify(recs(5, 10, 15), Population, NaturalBreaks)
	require.NoError(t, err)
	require.False(t, result.Empty)
	assert.Equal(t, 5.0, result.Intervals[0].Low)
	assert.Equal(t, 15.0, result.Intervals[NumClasses-1].High)
}
