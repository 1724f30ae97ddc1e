package metrics

import "slices"

// median finds the median value in a slice of floats.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	// Work on a copy to avoid mutating the original
	temp := make([]float64, len(values))
	copy(temp, values)
	slices.Sort(temp)

	n := len(temp)
	if n%2 == 1 {
		return temp[n/2]
	}
	return (temp[n/2-1] + temp[n/2]) / 2.0
}

// percentile returns the q-th percentile (0..100) using linear
// interpolation between closest ranks.
func percentile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}

	temp := make([]float64, len(values))
	copy(temp, values)
	slices.Sort(temp)

	if q <= 0 {
		return temp[0]
	}
	if q >= 100 {
		return temp[len(temp)-1]
	}

	rank := q / 100 * float64(len(temp)-1)
	lower := int(rank)
	upper := lower + 1
	if upper >= len(temp) {
		return temp[lower]
	}
	frac := rank - float64(lower)
	return temp[lower] + frac*(temp[upper]-temp[lower])
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
