package domain

// ZoneRow is one line of the per-zone statistics table.
type ZoneRow struct {
	Zone         string           `json:"zone"`
	Total        int64            `json:"total"`
	StatusCounts map[string]int64 `json:"statusCounts"`
}

// StatsSummary is the statistics payload behind the dashboard panels.
type StatsSummary struct {
	Kind        RecordKind   `json:"kind"`
	TotalCount  int64        `json:"totalCount"`
	Day         BucketSet    `json:"day"`
	Month       BucketSet    `json:"month"`
	Year        BucketSet    `json:"year"`
	DayByType   TypedBuckets `json:"dayByType"`
	MonthByType TypedBuckets `json:"monthByType"`
	YearByType  TypedBuckets `json:"yearByType"`
	Zones       []ZoneRow    `json:"zones"`
}

// NewStatsSummary returns a summary with every collection initialised.
func NewStatsSummary(kind RecordKind) *StatsSummary {
	return &StatsSummary{
		Kind:        kind,
		Day:         BucketSet{},
		Month:       BucketSet{},
		Year:        BucketSet{},
		DayByType:   TypedBuckets{},
		MonthByType: TypedBuckets{},
		YearByType:  TypedBuckets{},
		Zones:       []ZoneRow{},
	}
}

// BucketsFor returns the total and per-type buckets for a mode.
func (s *StatsSummary) BucketsFor(mode Mode) (BucketSet, TypedBuckets) {
	switch mode {
	case ModeYear:
		return s.Year, s.YearByType
	case ModeMonth:
		return s.Month, s.MonthByType
	default:
		return s.Day, s.DayByType
	}
}

// SetBuckets replaces the total and per-type buckets for a mode.
func (s *StatsSummary) SetBuckets(mode Mode, totals BucketSet, byType TypedBuckets) {
	switch mode {
	case ModeYear:
		s.Year, s.YearByType = totals, byType
	case ModeMonth:
		s.Month, s.MonthByType = totals, byType
	default:
		s.Day, s.DayByType = totals, byType
	}
}
