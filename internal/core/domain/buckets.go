package domain

import (
	"sort"
	"time"
)

// BucketWindow is the number of slots in a chart window.
const BucketWindow = 5

// Mode selects the bucket granularity used for aggregation.
type Mode string

const (
	ModeDay   Mode = "day"
	ModeMonth Mode = "month"
	ModeYear  Mode = "year"
)

// IsValid checks if the mode is one of the supported granularities.
func (m Mode) IsValid() bool {
	switch m {
	case ModeDay, ModeMonth, ModeYear:
		return true
	}
	return false
}

// KeyLayout returns the time layout bucket keys use in this mode.
func (m Mode) KeyLayout() string {
	switch m {
	case ModeYear:
		return "2006"
	case ModeMonth:
		return "2006-01"
	default:
		return "2006-01-02"
	}
}

// BucketSet maps a date key to a count.
type BucketSet map[string]float64

// Keys returns the keys of the set in no particular order.
func (b BucketSet) Keys() []string {
	keys := make([]string, 0, len(b))
	for key := range b {
		keys = append(keys, key)
	}
	return keys
}

// TypedBuckets partitions bucket counts by type name.
type TypedBuckets map[string]BucketSet

// ParseBucketKey parses a YYYY, YYYY-MM or YYYY-MM-DD key into the instant it
// starts at, in UTC.
func ParseBucketKey(key string) (time.Time, bool) {
	var layout string
	switch len(key) {
	case 4:
		layout = "2006"
	case 7:
		layout = "2006-01"
	case 10:
		layout = "2006-01-02"
	default:
		return time.Time{}, false
	}
	t, err := time.Parse(layout, key)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

type parsedKey struct {
	key string
	at  time.Time
}

// PickRecentBuckets selects a window of BucketWindow keys for charting.
// With at least BucketWindow keys it returns the most recent ones ascending.
// With fewer it centers them: ceil((BucketWindow-n)/2) empty slots on the
// left, the keys ascending, then empty slots to fill the window.
// Unparseable keys are ignored and duplicates count once.
func PickRecentBuckets(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	parsed := make([]parsedKey, 0, len(keys))
	for _, key := range keys {
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		at, ok := ParseBucketKey(key)
		if !ok {
			continue
		}
		parsed = append(parsed, parsedKey{key: key, at: at})
	}

	sort.Slice(parsed, func(i, j int) bool {
		if parsed[i].at.Equal(parsed[j].at) {
			return parsed[i].key < parsed[j].key
		}
		return parsed[i].at.Before(parsed[j].at)
	})

	window := make([]string, BucketWindow)
	n := len(parsed)
	if n >= BucketWindow {
		for i, p := range parsed[n-BucketWindow:] {
			window[i] = p.key
		}
		return window
	}

	left := (BucketWindow - n + 1) / 2
	for i, p := range parsed {
		window[left+i] = p.key
	}
	return window
}

// TypeSeries is one type partition aligned to a chosen window.
type TypeSeries struct {
	Type   string    `json:"type"`
	Values []float64 `json:"values"`
}

// Trend is a chart-ready window of totals and per-type values.
type Trend struct {
	Mode        Mode         `json:"mode"`
	Chosen      []string     `json:"chosen"`
	TotalSeries []float64    `json:"totalSeries"`
	TypeSeries  []TypeSeries `json:"typeSeries"`
}

// AggregateForMode picks the recent window of the summary's buckets for the
// given mode and aligns the total and per-type series to it. Placeholder
// slots and buckets a series lacks contribute 0.
func AggregateForMode(mode Mode, summary *StatsSummary) Trend {
	var totals BucketSet
	var typed TypedBuckets
	if summary != nil {
		totals, typed = summary.BucketsFor(mode)
	}

	chosen := PickRecentBuckets(totals.Keys())

	typeNames := make([]string, 0, len(typed))
	for name := range typed {
		typeNames = append(typeNames, name)
	}
	sort.Strings(typeNames)

	series := make([]TypeSeries, 0, len(typeNames))
	for _, name := range typeNames {
		series = append(series, TypeSeries{Type: name, Values: align(chosen, typed[name])})
	}

	return Trend{
		Mode:        mode,
		Chosen:      chosen,
		TotalSeries: align(chosen, totals),
		TypeSeries:  series,
	}
}

func align(chosen []string, buckets BucketSet) []float64 {
	values := make([]float64, len(chosen))
	for i, key := range chosen {
		if key == "" {
			continue
		}
		values[i] = buckets[key]
	}
	return values
}
