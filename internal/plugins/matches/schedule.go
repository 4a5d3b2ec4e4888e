package matches

import "time"

// ViewMode selects how the calendar derives its visible date range.
type ViewMode string

const (
	ModeMonth ViewMode = "month"
	ModeWeek  ViewMode = "week"
)

// windowPadMonths is how far the fetch window extends beyond the visible
// range on each side. Padding means rapid navigation inside the window
// never refetches; only crossing the boundary does.
const windowPadMonths = 3

// DateRange is an inclusive calendar date interval.
type DateRange struct {
	From Date `json:"from"`
	To   Date `json:"to"`
}

// Contains reports whether other lies fully inside r.
func (r DateRange) Contains(other DateRange) bool {
	return !other.From.Before(r.From.Time) && !other.To.After(r.To.Time)
}

// ContainsDate reports whether d lies inside r.
func (r DateRange) ContainsDate(d Date) bool {
	return !d.Before(r.From.Time) && !d.After(r.To.Time)
}

// startOfWeek returns the Monday on or before d. The calendar grid is
// Monday-start throughout.
func startOfWeek(d Date) Date {
	offset := int(d.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7 // Sunday
	}
	return d.AddDays(-offset)
}

// VisibleRange computes the date range the calendar shows for a view mode
// and anchor date. Month mode spans the full Monday-start weeks covering
// the anchor's month, so the grid always renders complete rows including
// overflow days from adjacent months. Week mode is the Monday-start week
// containing the anchor.
func VisibleRange(mode ViewMode, anchor Date) DateRange {
	if mode == ModeWeek {
		from := startOfWeek(anchor)
		return DateRange{From: from, To: from.AddDays(6)}
	}

	firstOfMonth := NewDate(anchor.Year(), anchor.Month(), 1)
	lastOfMonth := firstOfMonth.AddMonths(1).AddDays(-1)
	from := startOfWeek(firstOfMonth)
	to := startOfWeek(lastOfMonth).AddDays(6)
	return DateRange{From: from, To: to}
}

// DesiredWindow pads a visible range by the rolling-window margin on both
// sides. This is the range the cache must cover before the view can be
// derived without a fetch.
func DesiredWindow(visible DateRange) DateRange {
	return DateRange{
		From: visible.From.AddMonths(-windowPadMonths),
		To:   visible.To.AddMonths(windowPadMonths),
	}
}

// Filter derives the subset of matches visible for a discipline filter and
// visible range. It is a pure function: the input slice is never mutated
// and the result is a fresh slice. disciplineID 0 means "all disciplines".
func Filter(matches []Match, disciplineID int64, visible DateRange) []Match {
	out := make([]Match, 0, len(matches))
	for _, m := range matches {
		if disciplineID != 0 && m.DisciplineID != disciplineID {
			continue
		}
		if !visible.ContainsDate(m.MatchDate) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// DayBucket groups the matches of one calendar day.
type DayBucket struct {
	Date    Date    `json:"date"`
	Matches []Match `json:"matches"`
}

// BucketByDay groups matches by calendar day, preserving first-seen date
// order across buckets and insertion order within each bucket. The input
// arrives already sorted by date then time for the upcoming carousel, but
// the grouping itself never reorders anything.
func BucketByDay(matches []Match) []DayBucket {
	index := make(map[string]int, len(matches))
	buckets := make([]DayBucket, 0, len(matches))
	for _, m := range matches {
		key := m.MatchDate.String()
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, DayBucket{Date: m.MatchDate})
		}
		buckets[i].Matches = append(buckets[i].Matches, m)
	}
	return buckets
}
