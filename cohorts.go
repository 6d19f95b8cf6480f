package main

import "strconv"

// bucketUndefined is the catch-all bucket of every axis; it matches everyone.
const bucketUndefined = "undefined"

// Cohort is one cell of the weekday × homogeneity × mobility × age cross-product.
type Cohort struct {
	Weekday     string
	Homogeneity string
	Mobility    string
	Age         string
}

type bucket struct {
	name  string
	match func(p Person) bool
}

type axis struct {
	name    string
	buckets []bucket
}

func codeIn(codes ...int) func(int) bool {
	return func(v int) bool {
		for _, c := range codes {
			if v == c {
				return true
			}
		}
		return false
	}
}

func anyPerson(Person) bool { return true }

func weekdayBuckets() []bucket {
	buckets := make([]bucket, 0, 9)
	for d := 1; d <= 7; d++ {
		day := d
		buckets = append(buckets, bucket{
			name:  strconv.Itoa(day),
			match: func(p Person) bool { return p.Weekday == day && !p.Holiday },
		})
	}
	buckets = append(buckets,
		bucket{name: "8", match: func(p Person) bool { return p.Holiday }},
		bucket{name: bucketUndefined, match: anyPerson},
	)
	return buckets
}

func employmentBucket(name string, codes ...int) bucket {
	in := codeIn(codes...)
	return bucket{name: name, match: func(p Person) bool { return in(p.Employment) }}
}

func multimodalBucket(name string, codes ...int) bucket {
	in := codeIn(codes...)
	return bucket{name: name, match: func(p Person) bool { return in(p.Multimodal) }}
}

func ageBucket(name string, codes ...int) bucket {
	in := codeIn(codes...)
	return bucket{name: name, match: func(p Person) bool { return in(p.AgeGroup) }}
}

// cohortAxes is traversed in this order everywhere cohorts are enumerated, so every
// stage sees identical cohort definitions and identical output ordering.
var cohortAxes = [4]axis{
	{name: "weekday", buckets: weekdayBuckets()},
	{name: "homogeneity", buckets: []bucket{
		employmentBucket("working", 1),
		employmentBucket("non_working", 3, 4, 5),
		employmentBucket("pupil_student", 2),
		{name: bucketUndefined, match: anyPerson},
	}},
	{name: "mobility", buckets: []bucket{
		multimodalBucket("car_user", 1),
		multimodalBucket("car_other", 4, 5, 6),
		multimodalBucket("other", 2, 3, 6, 8),
		{name: bucketUndefined, match: anyPerson},
	}},
	{name: "age", buckets: []bucket{
		ageBucket("0_40", 1, 2, 3),
		ageBucket("40_60", 4, 5),
		ageBucket("60_100", 6, 7, 8),
		{name: bucketUndefined, match: anyPerson},
	}},
}

// CohortMembers is a cohort together with the IDs of the persons it contains, in
// input order.
type CohortMembers struct {
	Cohort  Cohort
	Members []int64
}

// CohortPartition precomputes one membership mask per (axis, bucket) so each cohort
// is the AND of four masks.
type CohortPartition struct {
	persons []Person
	masks   [4][][]bool
}

func partitionCohorts(persons []Person) *CohortPartition {
	p := &CohortPartition{persons: persons}
	for a, ax := range cohortAxes {
		p.masks[a] = make([][]bool, len(ax.buckets))
		for b, bk := range ax.buckets {
			mask := make([]bool, len(persons))
			for i, person := range persons {
				mask[i] = bk.match(person)
			}
			p.masks[a][b] = mask
		}
	}
	return p
}

// Each calls fn for every cohort of the cross-product in the fixed traversal order.
func (p *CohortPartition) Each(fn func(CohortMembers)) {
	var idx [4]int
	for idx[0] = range cohortAxes[0].buckets {
		for idx[1] = range cohortAxes[1].buckets {
			for idx[2] = range cohortAxes[2].buckets {
				for idx[3] = range cohortAxes[3].buckets {
					fn(p.members(idx))
				}
			}
		}
	}
}

func (p *CohortPartition) members(idx [4]int) CohortMembers {
	c := Cohort{
		Weekday:     cohortAxes[0].buckets[idx[0]].name,
		Homogeneity: cohortAxes[1].buckets[idx[1]].name,
		Mobility:    cohortAxes[2].buckets[idx[2]].name,
		Age:         cohortAxes[3].buckets[idx[3]].name,
	}

	var ids []int64
	for i, person := range p.persons {
		if p.masks[0][idx[0]][i] && p.masks[1][idx[1]][i] &&
			p.masks[2][idx[2]][i] && p.masks[3][idx[3]][i] {
			ids = append(ids, person.ID)
		}
	}
	return CohortMembers{Cohort: c, Members: ids}
}

// cohortCount is the size of the cross-product.
func cohortCount() int {
	n := 1
	for _, ax := range cohortAxes {
		n *= len(ax.buckets)
	}
	return n
}
