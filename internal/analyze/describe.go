package analyze

import "sort"

// Stats is a five-number-style description of a sample: mean, median, min,
// max and the inner quartiles.
type Stats struct {
	Count  int
	Mean   float64
	Median float64
	Min    float64
	Max    float64
	Q1     float64
	Q3     float64
}

// Describe computes Stats over xs. Quartiles use linear interpolation between
// closest ranks, matching the convention of the upstream quarterly reports.
// An empty sample yields the zero Stats.
func Describe(xs []float64) Stats {
	if len(xs) == 0 {
		return Stats{}
	}

	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	var sum float64
	for _, x := range sorted {
		sum += x
	}

	return Stats{
		Count:  len(sorted),
		Mean:   sum / float64(len(sorted)),
		Median: quantile(sorted, 0.5),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Q1:     quantile(sorted, 0.25),
		Q3:     quantile(sorted, 0.75),
	}
}

// quantile returns the q-quantile of an ascending sample by linear
// interpolation: h = (n-1)q, interpolate between floor(h) and floor(h)+1.
func quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	h := float64(n-1) * q
	lo := int(h)
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := h - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
