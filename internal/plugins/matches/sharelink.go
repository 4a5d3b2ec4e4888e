package matches

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/clubcasares/clubserver/internal/apperror"
)

// Share link query parameters on the public calendar path. Exactly one
// parameter group may be present in a link: a single match, a single date,
// or an inclusive date range.
const (
	calendarPath = "/calendario"

	paramMatch      = "partido"
	paramDate       = "fecha"
	paramRangeStart = "desde"
	paramRangeEnd   = "hasta"
)

// ShareLink identifies what a shareable calendar URL points at. At most
// one of the three groups is set: MatchID, Date, or RangeStart+RangeEnd.
type ShareLink struct {
	MatchID    int64 `json:"match_id,omitempty"`
	Date       *Date `json:"date,omitempty"`
	RangeStart *Date `json:"range_start,omitempty"`
	RangeEnd   *Date `json:"range_end,omitempty"`
}

// validate enforces that exactly one parameter group is set and that a
// range has both ends in order.
func (l ShareLink) validate() error {
	groups := 0
	if l.MatchID != 0 {
		groups++
	}
	if l.Date != nil {
		groups++
	}
	if l.RangeStart != nil || l.RangeEnd != nil {
		if l.RangeStart == nil || l.RangeEnd == nil {
			return apperror.NewBadRequest("a range link needs both desde and hasta")
		}
		if l.RangeEnd.Before(l.RangeStart.Time) {
			return apperror.NewBadRequest("desde must not be after hasta")
		}
		groups++
	}
	if groups == 0 {
		return apperror.NewBadRequest("share link needs a match, a date, or a range")
	}
	if groups > 1 {
		return apperror.NewBadRequest("share link parameters are mutually exclusive")
	}
	return nil
}

// Encode builds the shareable URL for this link on top of the site's base
// URL. Only the one provided parameter group is appended.
func (l ShareLink) Encode(baseURL string) (string, error) {
	if err := l.validate(); err != nil {
		return "", err
	}

	q := url.Values{}
	switch {
	case l.MatchID != 0:
		q.Set(paramMatch, strconv.FormatInt(l.MatchID, 10))
	case l.Date != nil:
		q.Set(paramDate, l.Date.String())
	default:
		q.Set(paramRangeStart, l.RangeStart.String())
		q.Set(paramRangeEnd, l.RangeEnd.String())
	}

	return strings.TrimRight(baseURL, "/") + calendarPath + "?" + q.Encode(), nil
}

// DecodeShareLink parses calendar query parameters back into a ShareLink.
// The same mutual-exclusion rules applied on encode are enforced, so a
// hand-crafted URL mixing groups is rejected rather than half-honored.
func DecodeShareLink(q url.Values) (ShareLink, error) {
	var l ShareLink

	if v := q.Get(paramMatch); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return ShareLink{}, apperror.NewBadRequest("invalid partido parameter")
		}
		l.MatchID = id
	}
	if v := q.Get(paramDate); v != "" {
		d, err := ParseDate(v)
		if err != nil {
			return ShareLink{}, err
		}
		l.Date = &d
	}
	if v := q.Get(paramRangeStart); v != "" {
		d, err := ParseDate(v)
		if err != nil {
			return ShareLink{}, err
		}
		l.RangeStart = &d
	}
	if v := q.Get(paramRangeEnd); v != "" {
		d, err := ParseDate(v)
		if err != nil {
			return ShareLink{}, err
		}
		l.RangeEnd = &d
	}

	if err := l.validate(); err != nil {
		return ShareLink{}, err
	}
	return l, nil
}
