package main

// purposeReturn is the survey purpose code for "back to where the previous leg went".
const purposeReturn = 10

// activityByPurpose maps survey purpose codes to destination activities.
// Code 10 is resolved by walking back through the person's legs.
var activityByPurpose = map[int]Activity{
	1: ActivityWork,
	2: ActivityBusiness,
	3: ActivitySchool,
	4: ActivityShopping,
	5: ActivityOther,
	6: ActivityOther,
	7: ActivityOther,
	8: ActivityHome,
}

// labelActivities returns a copy of trips sorted by (person, leg) with start and
// destination activities assigned. No row is dropped.
func labelActivities(trips []Trip) []Trip {
	sorted := sortTrips(trips)

	for i := range sorted {
		t := &sorted[i]
		t.DestActivity = destinationActivity(sorted, i)

		t.StartActivity = ActivityUndefined
		if t.LegIndex == 1 {
			switch t.Context {
			case 1:
				t.StartActivity = ActivityHome
			case 2, 9:
				t.StartActivity = ActivityOther
			}
		} else if precedesLeg(sorted, i-1, i) {
			t.StartActivity = sorted[i-1].DestActivity
		}
	}
	return sorted
}

// precedesLeg reports whether sorted[j] is the leg directly before sorted[i] of the same person.
func precedesLeg(sorted []Trip, j, i int) bool {
	return j >= 0 && sorted[j].PersonID == sorted[i].PersonID && sorted[j].LegIndex == sorted[i].LegIndex-1
}

// destinationActivity resolves the destination of sorted[i]. A return-purpose leg takes
// the destination of the closest preceding leg with a different purpose; it stays
// undefined if the scan reaches the first leg without finding one.
func destinationActivity(sorted []Trip, i int) Activity {
	j := i
	for sorted[j].Purpose == purposeReturn {
		if sorted[j].LegIndex == 1 || !precedesLeg(sorted, j-1, j) {
			return ActivityUndefined
		}
		j--
	}
	return activityByPurpose[sorted[j].Purpose]
}
