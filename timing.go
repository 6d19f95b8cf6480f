package main

import "math"

// TimingStats counts what the time resolver removed.
type TimingStats struct {
	LegsDropped    int
	PersonsDropped int
}

// resolveTimes reconstructs start/stop minutes for every leg, drops legs and persons
// whose timing cannot be recovered, and computes dwell times. The result is sorted by
// (person, leg) and every remaining person has legs 1..n.
func resolveTimes(trips []Trip) ([]Trip, TimingStats) {
	var stats TimingStats
	sorted := sortTrips(trips)
	kept := make([]Trip, 0, len(sorted))

	for _, r := range personRanges(sorted) {
		legs := sorted[r[0]:r[1]]
		lastLeg := legs[len(legs)-1].LegIndex

		resolved := make([]Trip, 0, len(legs))
		dropPerson := false
		for _, leg := range legs {
			if !resolveLeg(&leg) {
				if leg.LegIndex == lastLeg {
					continue
				}
				// A gap inside the day makes the whole chain unreliable.
				dropPerson = true
				break
			}
			resolved = append(resolved, leg)
		}

		if !dropPerson && !contiguousLegs(resolved) {
			dropPerson = true
		}
		if dropPerson {
			stats.PersonsDropped++
			stats.LegsDropped += len(legs)
			continue
		}
		stats.LegsDropped += len(legs) - len(resolved)
		kept = append(kept, resolved...)
	}

	for i := range kept {
		kept[i].DwellTime = dwellTime(kept, i)
	}
	return kept, stats
}

// resolveLeg fills Start and Stop from the raw clock fields, imputing one from the
// other with the trip duration. It returns false when neither is known.
func resolveLeg(t *Trip) bool {
	hasStart := t.StartHour < missingTime && t.StartMinute < missingTime
	hasStop := t.StopHour < missingTime && t.StopMinute < missingTime

	if hasStart {
		t.Start = float64(t.StartHour*60 + t.StartMinute)
	}
	if hasStop {
		t.Stop = float64(t.StopHour*60 + t.StopMinute)
		if t.NextDay {
			t.Stop += 1440
		}
	}

	switch {
	case hasStart && hasStop:
	case hasStart:
		t.Stop = t.Start + t.DurationMin
	case hasStop:
		t.Start = t.Stop - t.DurationMin
	default:
		t.Start, t.Stop = math.NaN(), math.NaN()
		return false
	}
	return true
}

func contiguousLegs(legs []Trip) bool {
	for i, leg := range legs {
		if leg.LegIndex != i+1 {
			return false
		}
	}
	return true
}

// dwellTime is the time spent at the origin of leg i: minutes since midnight for the
// first leg, otherwise the gap since the previous arrival. Negative or unknown gaps are nil.
func dwellTime(sorted []Trip, i int) *float64 {
	t := sorted[i]
	var d float64
	if t.LegIndex == 1 {
		d = t.Start
	} else {
		if !precedesLeg(sorted, i-1, i) {
			return nil
		}
		d = t.Start - sorted[i-1].Stop
	}
	if math.IsNaN(d) || d < 0 {
		return nil
	}
	return &d
}
