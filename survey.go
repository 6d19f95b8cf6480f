package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
)

// Activity is the single-letter location category visited before or after a leg.
type Activity byte

const (
	ActivityUndefined Activity = 0
	ActivityHome      Activity = 'H'
	ActivityWork      Activity = 'W'
	ActivityBusiness  Activity = 'B'
	ActivitySchool    Activity = 'S'
	ActivityShopping  Activity = 'P'
	ActivityOther     Activity = 'O'
)

var activityNames = map[Activity]string{
	ActivityHome:     "HOME",
	ActivityWork:     "WORK",
	ActivityBusiness: "BUSINESS",
	ActivitySchool:   "SCHOOL",
	ActivityShopping: "SHOPPING",
	ActivityOther:    "OTHER",
}

// Name returns the long activity name used in the output files, or "" if undefined.
func (a Activity) Name() string {
	return activityNames[a]
}

func (a Activity) String() string {
	if a == ActivityUndefined {
		return "-"
	}
	return string(a)
}

// Person is one survey respondent on their reporting day.
type Person struct {
	ID         int64
	Employment int // taet
	Multimodal int
	AgeGroup   int // alter_gr
	Weekday    int // ST_WOTAG, 1 = Monday
	Holiday    bool
	NotMobile  bool
}

// Trip is one recorded leg of a person's day. Raw fields come from the survey;
// the labeler and time resolver fill in the derived ones.
type Trip struct {
	PersonID    int64
	LegIndex    int
	Context     int // W_SO1, where the first leg of the day started
	Purpose     int
	DistanceKm  float64
	StartHour   int
	StartMinute int
	StopHour    int
	StopMinute  int
	NextDay     bool
	DurationMin float64 // NaN when the survey has no imputed duration
	GridCell    string
	RegionType  *int
	RegularWork bool

	StartActivity Activity
	DestActivity  Activity
	Start         float64 // minutes since midnight
	Stop          float64 // minutes since midnight, >1440 on next-day arrivals
	DwellTime     *float64
}

// missingTime is what the survey uses for unknown hours/minutes (80 and up).
const missingTime = 80

// csvNumber decodes survey cells with comma decimal marks; empty cells are absent.
type csvNumber struct {
	value float64
	valid bool
}

func (n *csvNumber) UnmarshalCSV(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		n.valid = false
		return nil
	}
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return fmt.Errorf("parse number %q: %w", s, err)
	}
	n.value, n.valid = v, true
	return nil
}

func (n csvNumber) intOr(def int) int {
	if !n.valid {
		return def
	}
	return int(n.value)
}

func (n csvNumber) floatOr(def float64) float64 {
	if !n.valid {
		return def
	}
	return n.value
}

type personRow struct {
	ID         csvNumber `csv:"HP_ID_Lok"`
	Employment csvNumber `csv:"taet"`
	Multimodal csvNumber `csv:"multimodal"`
	AgeGroup   csvNumber `csv:"alter_gr"`
	Weekday    csvNumber `csv:"ST_WOTAG"`
	Holiday    csvNumber `csv:"feiertag"`
	Mobile     csvNumber `csv:"mobil"`
}

type tripRow struct {
	PersonID    csvNumber `csv:"HP_ID_Lok"`
	LegIndex    csvNumber `csv:"W_ID"`
	Context     csvNumber `csv:"W_SO1"`
	Purpose     csvNumber `csv:"zweck"`
	DistanceKm  csvNumber `csv:"wegkm"`
	StartHour   csvNumber `csv:"W_SZS"`
	StartMinute csvNumber `csv:"W_SZM"`
	StopHour    csvNumber `csv:"W_AZS"`
	StopMinute  csvNumber `csv:"W_AZM"`
	NextDay     csvNumber `csv:"W_FOLGETAG"`
	DurationMin csvNumber `csv:"wegmin_imp1"`
	GridCell    string    `csv:"GITTER_500m"`
	RegularWork csvNumber `csv:"W_RBW"`
}

func surveyReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	return cr
}

// decodePersons reads the persons table. Rows without an ID are skipped.
func decodePersons(r io.Reader) ([]Person, error) {
	var rows []personRow
	if err := gocsv.UnmarshalCSV(surveyReader(r), &rows); err != nil {
		return nil, fmt.Errorf("decode persons: %w", err)
	}

	persons := make([]Person, 0, len(rows))
	for _, row := range rows {
		if !row.ID.valid {
			continue
		}
		persons = append(persons, Person{
			ID:         int64(row.ID.value),
			Employment: row.Employment.intOr(0),
			Multimodal: row.Multimodal.intOr(0),
			AgeGroup:   row.AgeGroup.intOr(0),
			Weekday:    row.Weekday.intOr(0),
			Holiday:    row.Holiday.intOr(0) == 1,
			NotMobile:  row.Mobile.valid && row.Mobile.value == 0,
		})
	}
	return persons, nil
}

// decodeTrips reads the trips table and attaches region types from the grid-cell map.
// Regular work trips are dropped: they are reported out of order and carry no timing.
func decodeTrips(r io.Reader, regions map[string]int) ([]Trip, error) {
	var rows []tripRow
	if err := gocsv.UnmarshalCSV(surveyReader(r), &rows); err != nil {
		return nil, fmt.Errorf("decode trips: %w", err)
	}

	trips := make([]Trip, 0, len(rows))
	for _, row := range rows {
		if !row.PersonID.valid || !row.LegIndex.valid {
			continue
		}
		t := Trip{
			PersonID:    int64(row.PersonID.value),
			LegIndex:    int(row.LegIndex.value),
			Context:     row.Context.intOr(0),
			Purpose:     row.Purpose.intOr(0),
			DistanceKm:  row.DistanceKm.floatOr(math.NaN()),
			StartHour:   row.StartHour.intOr(99),
			StartMinute: row.StartMinute.intOr(99),
			StopHour:    row.StopHour.intOr(99),
			StopMinute:  row.StopMinute.intOr(99),
			NextDay:     row.NextDay.intOr(0) == 1,
			DurationMin: row.DurationMin.floatOr(math.NaN()),
			GridCell:    strings.TrimSpace(row.GridCell),
			RegularWork: row.RegularWork.intOr(0) == 1,
		}
		if t.RegularWork {
			continue
		}
		t.RegionType = lookupRegion(regions, t.GridCell)
		trips = append(trips, t)
	}
	return trips, nil
}

func lookupRegion(regions map[string]int, cell string) *int {
	if cell == "" {
		return nil
	}
	v, ok := regions[cell]
	if !ok {
		return nil
	}
	return &v
}

// decodeRegionMap reads the grid-cell → region-type JSON object.
func decodeRegionMap(r io.Reader) (map[string]int, error) {
	var raw map[string]*float64
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode region map: %w", err)
	}
	regions := make(map[string]int, len(raw))
	for cell, v := range raw {
		if v == nil {
			continue
		}
		regions[cell] = int(*v)
	}
	return regions, nil
}

// loadRegionMap reads the region map at path. An empty path yields an empty map.
func loadRegionMap(path string) (map[string]int, error) {
	if path == "" {
		return map[string]int{}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open region map: %w", err)
	}
	defer f.Close()
	return decodeRegionMap(f)
}

// loadSurveyCSV reads persons, trips and the region map from disk.
func loadSurveyCSV(personsPath, tripsPath, regionMapPath string) ([]Person, []Trip, error) {
	regions, err := loadRegionMap(regionMapPath)
	if err != nil {
		return nil, nil, err
	}

	pf, err := os.Open(personsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open persons: %w", err)
	}
	defer pf.Close()
	persons, err := decodePersons(pf)
	if err != nil {
		return nil, nil, err
	}

	tf, err := os.Open(tripsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open trips: %w", err)
	}
	defer tf.Close()
	trips, err := decodeTrips(tf, regions)
	if err != nil {
		return nil, nil, err
	}

	return persons, trips, nil
}

// sortTrips returns a copy ordered by (person, leg).
func sortTrips(trips []Trip) []Trip {
	sorted := make([]Trip, len(trips))
	copy(sorted, trips)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].PersonID != sorted[j].PersonID {
			return sorted[i].PersonID < sorted[j].PersonID
		}
		return sorted[i].LegIndex < sorted[j].LegIndex
	})
	return sorted
}

// personRanges splits trips sorted by person into [start, end) index ranges, one per person.
func personRanges(sorted []Trip) [][2]int {
	var ranges [][2]int
	start := 0
	for i := 1; i <= len(sorted); i++ {
		if i == len(sorted) || sorted[i].PersonID != sorted[start].PersonID {
			ranges = append(ranges, [2]int{start, i})
			start = i
		}
	}
	return ranges
}
