package main

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// SampleSummary describes one fitted sample for the run log.
type SampleSummary struct {
	Count  int
	P10    float64
	Median float64
	P90    float64
	KS     float64
}

func summarizeLognormal(samples []float64, fit DistanceFit) SampleSummary {
	return SampleSummary{
		Count:  len(samples),
		P10:    percentile(samples, 10),
		Median: percentile(samples, 50),
		P90:    percentile(samples, 90),
		KS:     ksStatistic(samples, distuv.LogNormal{Mu: math.Log(fit.Scale), Sigma: fit.Shape}),
	}
}

// ksStatistic is the Kolmogorov-Smirnov distance between the empirical CDF of
// samples and dist.
func ksStatistic(samples []float64, dist distuv.LogNormal) float64 {
	if len(samples) == 0 {
		return 0
	}
	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	n := float64(len(sorted))
	var d float64
	for i, x := range sorted {
		cdf := dist.CDF(x)
		d = math.Max(d, math.Max(float64(i+1)/n-cdf, cdf-float64(i)/n))
	}
	return d
}

func percentile(arr []float64, p float64) float64 {
	if len(arr) == 0 {
		return 0
	}
	sorted := make([]float64, len(arr))
	copy(sorted, arr)
	sort.Float64s(sorted)
	idx := (p / 100) * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper {
		return sorted[lower]
	}
	return sorted[lower] + (sorted[upper]-sorted[lower])*(idx-float64(lower))
}
