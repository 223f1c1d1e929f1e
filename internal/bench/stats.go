package bench

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Stats summarises a sample.
type Stats struct {
	N    int
	Best float64
	Mean float64
	Std  float64
}

// CalcStats returns the minimum, mean and sample standard deviation of
// values. Std is zero for fewer than two values.
func CalcStats(values []float64) Stats {
	s := Stats{N: len(values)}
	if s.N == 0 {
		return s
	}
	s.Best = values[0]
	for _, v := range values[1:] {
		s.Best = math.Min(s.Best, v)
	}
	if s.N < 2 {
		s.Mean = values[0]
		return s
	}
	s.Mean, s.Std = stat.MeanStdDev(values, nil)
	return s
}
