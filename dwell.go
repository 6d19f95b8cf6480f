package main

import (
	"log"
	"math/rand/v2"
)

// minChainSamples is the smallest chain count a dwell-time mixture is fitted for.
const minChainSamples = 30

type mixtureKey struct {
	Cohort Cohort
	Chain  string
}

// MixtureStats counts fitted and failed mixtures of one run.
type MixtureStats struct {
	Fitted int
	Failed int
}

// dwellTable holds each person's dwell times by leg, index 0 being leg 1.
func dwellTable(resolved []Trip) map[int64][]*float64 {
	table := make(map[int64][]*float64)
	for _, t := range resolved {
		row := table[t.PersonID]
		for len(row) < t.LegIndex {
			row = append(row, nil)
		}
		row[t.LegIndex-1] = t.DwellTime
		table[t.PersonID] = row
	}
	return table
}

// dwellSamples collects the first dims dwell times of every member following chain.
// Rows with a missing value are dropped.
func dwellSamples(members []int64, chain string, chains map[int64]string, dwell map[int64][]*float64) [][]float64 {
	dims := len(chain) - 1
	var x [][]float64
	for _, id := range members {
		if chains[id] != chain {
			continue
		}
		row := dwell[id]
		if len(row) < dims {
			continue
		}
		sample := make([]float64, dims)
		complete := true
		for j := 0; j < dims; j++ {
			if row[j] == nil {
				complete = false
				break
			}
			sample[j] = *row[j]
		}
		if complete {
			x = append(x, sample)
		}
	}
	return x
}

// fitDwellTimeMixtures fits a Gaussian mixture over the dwell-time vectors of every
// (cohort, chain) with at least minChainSamples members. Chains are taken from the
// time-resolved trips and ranked by count before the cutoff is applied.
func fitDwellTimeMixtures(resolved []Trip, part *CohortPartition, seed uint64) (map[mixtureKey]GaussianMixture, MixtureStats) {
	chains := buildChains(resolved, nil)
	dwell := dwellTable(resolved)
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	var stats MixtureStats
	out := make(map[mixtureKey]GaussianMixture)
	part.Each(func(cm CohortMembers) {
		table := tabulateChains(cm, chains)
		for _, cc := range rankChains(table.Chains) {
			if cc.Count < minChainSamples {
				break
			}
			if len(cc.Chain) < 2 {
				continue
			}

			x := dwellSamples(cm.Members, cc.Chain, chains, dwell)
			model, err := selectMixture(x, maxMixtureComponents, rng)
			if err != nil {
				stats.Failed++
				log.Printf("[activity] %v %s: mixture skipped: %v", cm.Cohort, cc.Chain, err)
				continue
			}
			out[mixtureKey{Cohort: cm.Cohort, Chain: cc.Chain}] = model.export()
			stats.Fitted++
		}
	})
	return out, stats
}
