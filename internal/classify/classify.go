// Package classify computes five-class statistical classifications of county
// attributes and maps class indices to palette colors.
package classify

import (
	"sort"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/stat"

	"github.com/sells-group/chloropleth-cli/internal/source"
)

// NumClasses is fixed: every method yields exactly five classes.
const NumClasses = 5

// Method selects the classification algorithm. The set is closed; dispatch
// happens in one switch rather than through subtyping.
type Method string

const (
	Quantile      Method = "quantile"
	NaturalBreaks Method = "jenks"
	EqualInterval Method = "equal-interval"
)

// ErrNoRecords is returned when Classify is called with no records at all.
var ErrNoRecords = eris.New("classify: no records")

// ErrUnknownMethod is returned for a method outside the closed set.
var ErrUnknownMethod = eris.New("classify: unknown method")

// ParseMethod resolves a method name as accepted on the command line.
func ParseMethod(name string) (Method, error) {
	switch Method(name) {
	case Quantile, NaturalBreaks, EqualInterval:
		return Method(name), nil
	}
	return "", eris.Wrapf(ErrUnknownMethod, "%q", name)
}

// Extractor pulls the numeric attribute to classify from a record. Values
// <= 0 mean "no data": they are excluded from break computation and their
// records get no class assignment.
type Extractor func(source.CountyRecord) float64

// Population extracts the county population attribute.
func Population(rec source.CountyRecord) float64 {
	return float64(rec.Population)
}

// Interval is one class's value range [Low, High]. The upper edge is
// inclusive; class 0's lower edge is additionally closed at the global
// minimum. Degenerate input may produce coincident boundaries.
type Interval struct {
	Low  float64
	High float64
}

// Result is a complete classification. Recomputed wholesale on every
// method or attribute change, never mutated incrementally.
type Result struct {
	Method    Method
	Intervals [NumClasses]Interval
	// Assignments maps record identifier to class index 0-4. Records with
	// no usable attribute value are absent.
	Assignments map[string]int
	// Empty marks a classification over zero usable values; Intervals and
	// Assignments carry no information in that case.
	Empty bool
}

// Classify computes class breaks for the records' extracted values under the
// given method and assigns each record a class. Degenerate inputs (all-equal
// values, fewer than five distinct values) yield coincident boundaries, not
// errors.
func Classify(records []source.CountyRecord, extract Extractor, method Method) (Result, error) {
	if len(records) == 0 {
		return Result{Method: method, Empty: true}, ErrNoRecords
	}

	values := make([]float64, 0, len(records))
	for _, rec := range records {
		if v := extract(rec); v > 0 {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return Result{Method: method, Empty: true}, nil
	}
	sort.Float64s(values)

	bounds, err := breaks(values, method)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		Method:      method,
		Assignments: make(map[string]int, len(records)),
	}
	for i := 0; i < NumClasses; i++ {
		result.Intervals[i] = Interval{Low: bounds[i], High: bounds[i+1]}
	}
	for _, rec := range records {
		v := extract(rec)
		if v <= 0 {
			continue
		}
		result.Assignments[rec.GEOID] = classIndex(v, bounds)
	}
	return result, nil
}

// breaks returns the six ordered class boundaries b0..b5 over sorted values.
func breaks(sorted []float64, method Method) ([NumClasses + 1]float64, error) {
	var b [NumClasses + 1]float64
	minVal := sorted[0]
	maxVal := sorted[len(sorted)-1]

	switch method {
	case EqualInterval:
		step := (maxVal - minVal) / NumClasses
		for k := 0; k <= NumClasses; k++ {
			b[k] = minVal + float64(k)*step
		}
		b[NumClasses] = maxVal

	case Quantile:
		b[0] = minVal
		b[NumClasses] = maxVal
		for k := 1; k < NumClasses; k++ {
			b[k] = stat.Quantile(float64(k)/NumClasses, stat.LinInterp, sorted, nil)
		}

	case NaturalBreaks:
		b = jenksBreaks(sorted)

	default:
		return b, eris.Wrapf(ErrUnknownMethod, "%q", method)
	}
	return b, nil
}

// classIndex places a value in the class whose interval contains it: upper
// edges are inclusive, ties fall to the lower class. Values at or below the
// first boundary are class 0; float round-off above the top clamps to 4.
func classIndex(v float64, b [NumClasses + 1]float64) int {
	for k := 1; k <= NumClasses; k++ {
		if v <= b[k] {
			return k - 1
		}
	}
	return NumClasses - 1
}
