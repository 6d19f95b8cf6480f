package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildChains(t *testing.T) {
	trips := []Trip{
		newTrip(1, 1, 1),
		newTrip(1, 2, 8),
		newTrip(2, 1, 4),
		newTrip(2, 2, 2),
		newTrip(2, 3, 8),
		newTrip(3, 1, 8),
		newTrip(4, 1, 99),
	}
	trips[5].Context = 5
	persons := []Person{
		{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4},
		{ID: 5, NotMobile: true},
		{ID: 6},
	}

	chains := buildChains(labelActivities(trips), persons)
	require.Equal(t, map[int64]string{
		1: "HWH",
		2: "HPBH",
		5: chainHomeOnly,
	}, chains)

	legs := map[int64]int{}
	for _, trip := range trips {
		legs[trip.PersonID]++
	}
	for id, chain := range chains {
		if id == 5 {
			continue
		}
		require.Len(t, chain, legs[id]+1)
		for _, c := range chain {
			require.Contains(t, "HWBSPO", string(c))
		}
	}
}

func TestNotMobileWithTripsKeepsTripChain(t *testing.T) {
	trips := []Trip{newTrip(1, 1, 4), newTrip(1, 2, 8)}
	chains := buildChains(labelActivities(trips), []Person{{ID: 1, NotMobile: true}})
	require.Equal(t, "HPH", chains[1])
}

func TestTabulateChains(t *testing.T) {
	chains := map[int64]string{1: "HWH", 2: "HPH", 3: "HWH", 5: "H"}
	cm := CohortMembers{Cohort: Cohort{"1", "working", "car_user", "0_40"}, Members: []int64{1, 2, 3, 4, 5}}

	got := tabulateChains(cm, chains)
	require.Equal(t, cm.Cohort, got.Cohort)
	require.Equal(t, 4, got.SampleSize, "members without a chain are not counted")
	require.Equal(t, []ChainCount{{"HWH", 2}, {"HPH", 1}, {"H", 1}}, got.Chains)
}

func TestAggregateChainsCoversEveryCohort(t *testing.T) {
	persons := []Person{{ID: 1, Weekday: 1, Employment: 1, Multimodal: 1, AgeGroup: 1}}
	groups := aggregateChains(partitionCohorts(persons), map[int64]string{1: "HWH"})
	require.Len(t, groups, cohortCount())
	require.Equal(t, 1, groups[0].SampleSize)
	require.Equal(t, 1, groups[len(groups)-1].SampleSize)
	require.Equal(t, 0, groups[1].SampleSize)
}

func TestRankChainsKeepsTieOrder(t *testing.T) {
	in := []ChainCount{{"HOH", 2}, {"HWH", 3}, {"HPH", 2}, {"H", 5}}
	ranked := rankChains(in)
	require.Equal(t, []ChainCount{{"H", 5}, {"HWH", 3}, {"HOH", 2}, {"HPH", 2}}, ranked)
	require.Equal(t, "HOH", in[0].Chain, "input is not reordered")
}
