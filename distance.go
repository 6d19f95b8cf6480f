package main

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	// maxTripKm filters implausible survey distances.
	maxTripKm = 1000
	// minDistanceSamples is the smallest sample a lognormal is fitted to.
	minDistanceSamples = 2
	// regionAll is the region key of the fit over all region types.
	regionAll = 0
)

var (
	ErrInsufficientSamples = errors.New("insufficient samples")
	ErrDegenerateSample    = errors.New("degenerate sample")
)

// DistanceFit is a fitted trip-distance distribution, distances in meters.
type DistanceFit struct {
	Distribution string  `json:"distribution"`
	Shape        float64 `json:"shape"`
	Scale        float64 `json:"scale"`
}

// DistanceDistributions maps activity pair → region type → fit.
type DistanceDistributions map[string]map[int]DistanceFit

type activityPair struct {
	name  string
	start Activity // ActivityUndefined matches any start
	dest  Activity
}

var distancePairs = []activityPair{
	{name: "home_work", start: ActivityHome, dest: ActivityWork},
	{name: "home_school", start: ActivityHome, dest: ActivitySchool},
	{name: "any_shopping", dest: ActivityShopping},
	{name: "any_other", dest: ActivityOther},
}

func (p activityPair) matches(t Trip) bool {
	if p.start != ActivityUndefined && t.StartActivity != p.start {
		return false
	}
	return t.DestActivity == p.dest
}

// fitLognormal is the maximum-likelihood lognormal with location fixed at 0:
// shape is the population standard deviation of ln(x), scale is exp(mean ln(x)).
// Non-positive samples are ignored.
func fitLognormal(samples []float64) (DistanceFit, error) {
	logs := make([]float64, 0, len(samples))
	for _, x := range samples {
		if x > 0 && !math.IsInf(x, 0) {
			logs = append(logs, math.Log(x))
		}
	}
	if len(logs) < minDistanceSamples {
		return DistanceFit{}, fmt.Errorf("%w: %d positive values", ErrInsufficientSamples, len(logs))
	}

	mu, sigma := stat.PopMeanStdDev(logs, nil)
	if sigma == 0 || math.IsNaN(sigma) {
		return DistanceFit{}, fmt.Errorf("%w: all %d values equal", ErrDegenerateSample, len(logs))
	}
	return DistanceFit{Distribution: "lognorm", Shape: sigma, Scale: math.Exp(mu)}, nil
}

// regionTypes lists region key 0 ("all") followed by the distinct region codes seen
// on trips, ascending. A real code of 0 is folded into "all".
func regionTypes(trips []Trip) []int {
	seen := make(map[int]bool)
	for _, t := range trips {
		if t.RegionType != nil && *t.RegionType != regionAll {
			seen[*t.RegionType] = true
		}
	}
	regions := make([]int, 0, len(seen)+1)
	for r := range seen {
		regions = append(regions, r)
	}
	sort.Ints(regions)
	return append([]int{regionAll}, regions...)
}

// fitDistanceDistributions fits one lognormal per activity pair and region type.
// Buckets that cannot be fitted are left out and logged.
func fitDistanceDistributions(trips []Trip) DistanceDistributions {
	regions := regionTypes(trips)
	out := make(DistanceDistributions, len(distancePairs))

	for _, pair := range distancePairs {
		byRegion := make(map[int]DistanceFit, len(regions))
		for _, region := range regions {
			var meters []float64
			for _, t := range trips {
				if !(t.DistanceKm < maxTripKm) || !pair.matches(t) {
					continue
				}
				if region != regionAll && (t.RegionType == nil || *t.RegionType != region) {
					continue
				}
				meters = append(meters, t.DistanceKm)
			}
			floats.Scale(1000, meters)

			fit, err := fitLognormal(meters)
			if err != nil {
				log.Printf("[distance] %s region %d: skipped: %v", pair.name, region, err)
				continue
			}
			s := summarizeLognormal(meters, fit)
			log.Printf("[distance] %s region %d: n=%d shape=%.4f scale=%.0fm median=%.0fm ks=%.4f",
				pair.name, region, s.Count, fit.Shape, fit.Scale, s.Median, s.KS)
			byRegion[region] = fit
		}
		out[pair.name] = byRegion
	}
	return out
}
