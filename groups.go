package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

var weekdayAbbrev = map[string]string{
	"1":             "mo",
	"2":             "tu",
	"3":             "we",
	"4":             "th",
	"5":             "fr",
	"6":             "sa",
	"7":             "so",
	"8":             "ho",
	bucketUndefined: bucketUndefined,
}

// ActivityGroup is one cohort entry of ActivityGroups.json.
type ActivityGroup struct {
	Weekday         string       `json:"weekday"`
	HomogenousGroup string       `json:"homogenousGroup"`
	MobilityGroup   string       `json:"mobilityGroup"`
	Age             string       `json:"age"`
	SampleSize      int          `json:"sampleSize"`
	ActivityChains  []ChainEntry `json:"activityChains"`
}

// ChainEntry is one ranked activity chain of a cohort.
type ChainEntry struct {
	Chain           []string         `json:"chain"`
	Weight          int              `json:"weight"`
	GaussianMixture *GaussianMixture `json:"gaussianMixture"`
}

// resolvableEnd reports whether a chain ends at home or other; the stay after any
// other final activity is unknown.
func resolvableEnd(chain string) bool {
	last := Activity(chain[len(chain)-1])
	return last == ActivityHome || last == ActivityOther
}

func chainNames(chain string) []string {
	names := make([]string, len(chain))
	for i := range chain {
		names[i] = Activity(chain[i]).Name()
	}
	return names
}

// buildActivityGroups assembles the output entries from the chain tables and fitted
// mixtures, one per cohort in traversal order.
func buildActivityGroups(groups []CohortChains, mixtures map[mixtureKey]GaussianMixture) []ActivityGroup {
	out := make([]ActivityGroup, 0, len(groups))
	for _, g := range groups {
		entries := make([]ChainEntry, 0)
		for _, cc := range rankChains(g.Chains) {
			if cc.Count < minChainSamples || !resolvableEnd(cc.Chain) {
				continue
			}
			entry := ChainEntry{Chain: chainNames(cc.Chain), Weight: cc.Count}
			if cc.Chain != chainHomeOnly {
				if gm, ok := mixtures[mixtureKey{Cohort: g.Cohort, Chain: cc.Chain}]; ok {
					entry.GaussianMixture = &gm
				}
			}
			entries = append(entries, entry)
		}

		out = append(out, ActivityGroup{
			Weekday:         weekdayAbbrev[g.Cohort.Weekday],
			HomogenousGroup: g.Cohort.Homogeneity,
			MobilityGroup:   g.Cohort.Mobility,
			Age:             g.Cohort.Age,
			SampleSize:      g.SampleSize,
			ActivityChains:  entries,
		})
	}
	return out
}

// writeJSON encodes v into a temporary file next to path and renames it into place.
func writeJSON(path string, v any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
