package main

import (
	"sort"
	"strings"
)

// chainHomeOnly is the day of a person who did not leave home.
const chainHomeOnly = "H"

// ChainCount is how many members of a cohort followed one activity chain.
type ChainCount struct {
	Chain string
	Count int
}

// CohortChains is the chain frequency table of one cohort. Chains are in order of
// first occurrence among the members.
type CohortChains struct {
	Cohort     Cohort
	SampleSize int
	Chains     []ChainCount
}

// buildChains derives each person's chain from labeled trips: the start activity of
// every leg followed by the destination of the last one. Persons with an undefined
// label have no chain. Not-mobile persons without trips get "H".
func buildChains(trips []Trip, persons []Person) map[int64]string {
	sorted := sortTrips(trips)
	chains := make(map[int64]string)
	hasTrips := make(map[int64]bool)

	for _, r := range personRanges(sorted) {
		legs := sorted[r[0]:r[1]]
		hasTrips[legs[0].PersonID] = true
		var b strings.Builder
		ok := true
		for _, leg := range legs {
			if leg.StartActivity == ActivityUndefined {
				ok = false
				break
			}
			b.WriteByte(byte(leg.StartActivity))
		}
		last := legs[len(legs)-1].DestActivity
		if !ok || last == ActivityUndefined {
			continue
		}
		b.WriteByte(byte(last))
		chains[legs[0].PersonID] = b.String()
	}

	for _, p := range persons {
		if p.NotMobile && !hasTrips[p.ID] {
			chains[p.ID] = chainHomeOnly
		}
	}
	return chains
}

// tabulateChains counts chains among the members that have one.
func tabulateChains(cm CohortMembers, chains map[int64]string) CohortChains {
	out := CohortChains{Cohort: cm.Cohort}
	index := make(map[string]int)
	for _, id := range cm.Members {
		chain, ok := chains[id]
		if !ok {
			continue
		}
		out.SampleSize++
		if i, seen := index[chain]; seen {
			out.Chains[i].Count++
			continue
		}
		index[chain] = len(out.Chains)
		out.Chains = append(out.Chains, ChainCount{Chain: chain, Count: 1})
	}
	return out
}

// aggregateChains tabulates chain frequencies for every cohort.
func aggregateChains(part *CohortPartition, chains map[int64]string) []CohortChains {
	groups := make([]CohortChains, 0, cohortCount())
	part.Each(func(cm CohortMembers) {
		groups = append(groups, tabulateChains(cm, chains))
	})
	return groups
}

// rankChains returns a copy ordered by count, descending; ties keep their order.
func rankChains(chains []ChainCount) []ChainCount {
	ranked := make([]ChainCount, len(chains))
	copy(ranked, chains)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	return ranked
}
