package classify

import "math"

// jenksBreaks computes Fisher-Jenks natural breaks over sorted values: the
// five-way partition minimizing total within-class variance, found by
// dynamic programming over cumulative sum and sum-of-squares tables. O(n²k)
// in the value count, which is comfortable at county scale (~3,000 max).
func jenksBreaks(sorted []float64) [NumClasses + 1]float64 {
	var b [NumClasses + 1]float64
	n := len(sorted)
	minVal := sorted[0]
	maxVal := sorted[n-1]

	// All values equal: every boundary coincides at the shared value.
	if minVal == maxVal {
		for k := 0; k <= NumClasses; k++ {
			b[k] = minVal
		}
		return b
	}

	// Too few values to partition: collapse to equal intervals, which
	// yields the required five (possibly coincident) boundaries.
	if n <= NumClasses {
		step := (maxVal - minVal) / NumClasses
		for k := 0; k <= NumClasses; k++ {
			b[k] = minVal + float64(k)*step
		}
		b[NumClasses] = maxVal
		return b
	}

	// lowerLimit[i][j]: 1-based index of the first value of class j in the
	// optimal partition of the first i values into j classes.
	// variance[i][j]: the corresponding minimal variance sum.
	lowerLimit := make([][]int, n+1)
	variance := make([][]float64, n+1)
	for i := 0; i <= n; i++ {
		lowerLimit[i] = make([]int, NumClasses+1)
		variance[i] = make([]float64, NumClasses+1)
	}
	for j := 1; j <= NumClasses; j++ {
		lowerLimit[1][j] = 1
		for i := 2; i <= n; i++ {
			variance[i][j] = math.Inf(1)
		}
	}

	var v float64
	for i := 2; i <= n; i++ {
		var sum, sumSq, w float64
		for m := 1; m <= i; m++ {
			idx := i - m + 1 // 1-based index of the candidate class start
			val := sorted[idx-1]
			w++
			sum += val
			sumSq += val * val
			v = sumSq - sum*sum/w
			if idx == 1 {
				continue
			}
			for j := 2; j <= NumClasses; j++ {
				if variance[i][j] >= v+variance[idx-1][j-1] {
					lowerLimit[i][j] = idx
					variance[i][j] = v + variance[idx-1][j-1]
				}
			}
		}
		lowerLimit[i][1] = 1
		variance[i][1] = v
	}

	b[0] = minVal
	b[NumClasses] = maxVal
	k := n
	for j := NumClasses; j >= 2; j-- {
		// The boundary below class j is the value preceding its first member.
		// Duplicate-heavy inputs can tie the DP down to the first value, in
		// which case the boundary collapses to the minimum.
		id := lowerLimit[k][j]
		if id < 2 {
			b[j-1] = minVal
			k = 1
			continue
		}
		b[j-1] = sorted[id-2]
		k = id - 1
	}
	return b
}
