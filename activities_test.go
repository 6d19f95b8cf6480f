package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLabelFirstLegStartFromContext(t *testing.T) {
	cases := []struct {
		context int
		want    Activity
	}{
		{context: 1, want: ActivityHome},
		{context: 2, want: ActivityOther},
		{context: 9, want: ActivityOther},
		{context: 3, want: ActivityUndefined},
		{context: 0, want: ActivityUndefined},
	}
	for _, tc := range cases {
		trip := newTrip(1, 1, 1)
		trip.Context = tc.context
		labeled := labelActivities([]Trip{trip})
		require.Equal(t, tc.want, labeled[0].StartActivity, "context %d", tc.context)
	}
}

func TestLabelDestinationFromPurpose(t *testing.T) {
	want := map[int]Activity{
		1:  ActivityWork,
		2:  ActivityBusiness,
		3:  ActivitySchool,
		4:  ActivityShopping,
		5:  ActivityOther,
		6:  ActivityOther,
		7:  ActivityOther,
		8:  ActivityHome,
		99: ActivityUndefined,
	}
	for purpose, activity := range want {
		labeled := labelActivities([]Trip{newTrip(1, 1, purpose)})
		require.Equal(t, activity, labeled[0].DestActivity, "purpose %d", purpose)
	}
}

func TestLabelStartFollowsPreviousDestination(t *testing.T) {
	trips := []Trip{
		newTrip(1, 3, 8),
		newTrip(1, 1, 1),
		newTrip(1, 2, 4),
		newTrip(2, 1, 3),
		newTrip(2, 2, 7),
	}
	labeled := labelActivities(trips)
	require.Len(t, labeled, len(trips))

	for i := 1; i < len(labeled); i++ {
		if labeled[i].PersonID != labeled[i-1].PersonID {
			continue
		}
		require.Equal(t, labeled[i-1].DestActivity, labeled[i].StartActivity,
			"person %d leg %d", labeled[i].PersonID, labeled[i].LegIndex)
	}

	require.Equal(t, "HWPH", chainOf(labeled[:3]))
	require.Equal(t, "HSO", chainOf(labeled[3:]))
}

func TestLabelReturnPurposeScansBackward(t *testing.T) {
	trips := []Trip{
		newTrip(1, 1, 4),
		newTrip(1, 2, purposeReturn),
		newTrip(1, 3, purposeReturn),
		newTrip(1, 4, 8),
	}
	labeled := labelActivities(trips)
	require.Equal(t, ActivityShopping, labeled[1].DestActivity)
	require.Equal(t, ActivityShopping, labeled[2].DestActivity)
	require.Equal(t, ActivityShopping, labeled[3].StartActivity)
}

func TestLabelReturnPurposeOnFirstLegIsUndefined(t *testing.T) {
	labeled := labelActivities([]Trip{
		newTrip(1, 1, purposeReturn),
		newTrip(1, 2, purposeReturn),
	})
	require.Equal(t, ActivityUndefined, labeled[0].DestActivity)
	require.Equal(t, ActivityUndefined, labeled[1].DestActivity)
	require.Equal(t, ActivityUndefined, labeled[1].StartActivity)
}

func TestLabelGapLeavesStartUndefined(t *testing.T) {
	labeled := labelActivities([]Trip{
		newTrip(1, 1, 1),
		newTrip(1, 3, purposeReturn),
	})
	require.Equal(t, ActivityUndefined, labeled[1].StartActivity)
	require.Equal(t, ActivityUndefined, labeled[1].DestActivity)
}

func TestActivityNames(t *testing.T) {
	require.Equal(t, "HOME", ActivityHome.Name())
	require.Equal(t, "SHOPPING", ActivityShopping.Name())
	require.Equal(t, "", ActivityUndefined.Name())
	require.Equal(t, "P", ActivityShopping.String())
	require.Equal(t, "-", ActivityUndefined.String())
}

// chainOf concatenates the start of every leg and the destination of the last one.
func chainOf(legs []Trip) string {
	b := make([]byte, 0, len(legs)+1)
	for _, leg := range legs {
		b = append(b, byte(leg.StartActivity))
	}
	return string(append(b, byte(legs[len(legs)-1].DestActivity)))
}
