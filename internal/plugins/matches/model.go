// Package matches implements the club's match schedule: the rolling-window
// match cache, the calendar view derivation (month/week grids, upcoming
// buckets), share links, and the permission-gated mutations that keep the
// schedule consistent. This is the heart of the public site's calendar.
package matches

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/clubcasares/clubserver/internal/apperror"
)

// Match types used by the club. Free-text in the database but validated
// against this set on write.
const (
	TypeFriendly      = "Amistoso"
	TypeGroupStage    = "Fase de grupos"
	TypeRoundOf16     = "Octavos"
	TypeQuarterfinals = "Cuartos"
	TypeSemifinals    = "Semifinal"
	TypeFinal         = "Final"
)

// matchTypes is the allowed set for validation.
var matchTypes = map[string]bool{
	TypeFriendly:      true,
	TypeGroupStage:    true,
	TypeRoundOf16:     true,
	TypeQuarterfinals: true,
	TypeSemifinals:    true,
	TypeFinal:         true,
}

// Match statuses.
const (
	StatusScheduled = "programado"
	StatusPlayed    = "jugado"
	StatusSuspended = "suspendido"
)

var matchStatuses = map[string]bool{
	StatusScheduled: true,
	StatusPlayed:    true,
	StatusSuspended: true,
}

// Icon classes the frontend renders on match cards. A match without a
// tournament is a friendly and gets the friendly icon.
const (
	IconFriendly = "friendly"
	IconTrophy   = "trophy"
)

// --- Date ---

// dateLayout is the wire and storage format for calendar dates.
const dateLayout = "2006-01-02"

// Date is a calendar date without time-of-day. It is stored in a DATE
// column and serialized as "2006-01-02". The embedded time.Time is always
// midnight UTC so that comparisons are purely by calendar day.
type Date struct {
	time.Time
}

// NewDate builds a Date from year/month/day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time.Time to its calendar date (in the time's location).
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// Today returns the current calendar date.
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses a "2006-01-02" string.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return Date{}, apperror.NewBadRequest(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", s))
	}
	return Date{t}, nil
}

// String returns the date in "2006-01-02" form.
func (d Date) String() string {
	return d.Format(dateLayout)
}

// AddDays returns the date shifted by n calendar days.
func (d Date) AddDays(n int) Date {
	return Date{d.AddDate(0, 0, n)}
}

// AddMonths returns the date shifted by n calendar months.
func (d Date) AddMonths(n int) Date {
	return Date{d.AddDate(0, n, 0)}
}

// MarshalJSON serializes the date as "2006-01-02".
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON parses "2006-01-02" (or null, leaving the zero date).
func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" || s == `""` {
		*d = Date{}
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date JSON: %s", s)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Scan implements sql.Scanner. With parseTime=true the driver hands us a
// time.Time; raw bytes are parsed as a fallback.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = DateOf(v)
		return nil
	case []byte:
		parsed, err := ParseDate(string(v))
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case string:
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

// Value implements driver.Valuer, storing the date as its string form.
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

// --- Domain models ---

// Match is a scheduled or played fixture between a club team and a rival.
// A match belongs to exactly one discipline. Result is the optional 1:1
// attached record, eager-loaded on window reads.
type Match struct {
	ID           int64        `json:"id"`
	DisciplineID int64        `json:"discipline_id"`
	MatchDate    Date         `json:"match_date"`
	MatchTime    string       `json:"match_time"`
	RivalTeam    string       `json:"rival_team"`
	MatchType    string       `json:"match_type"`
	Status       string       `json:"status"`
	TournamentID *int64       `json:"tournament_id"`
	LocationID   *int64       `json:"location_id"`
	Result       *MatchResult `json:"result,omitempty"`
	Icon         string       `json:"icon"`
	CreatedAt    time.Time    `json:"created_at"`
}

// IsFriendly reports whether the match is a friendly: no tournament
// association implies friendly semantics.
func (m *Match) IsFriendly() bool {
	return m.TournamentID == nil
}

// MatchResult is the 1:1 result record for a played match. Scorers is an
// ordered list of names, persisted as a JSON array so order survives.
type MatchResult struct {
	MatchID    int64    `json:"match_id"`
	OurScore   int      `json:"our_score"`
	RivalScore int      `json:"rival_score"`
	Scorers    []string `json:"scorers"`
}

// Tournament is an optional association for a match.
type Tournament struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Year int    `json:"year"`
}

// --- Request DTOs ---

// MatchRequest holds the fields for creating or updating a match.
type MatchRequest struct {
	DisciplineID int64  `json:"discipline_id"`
	MatchDate    string `json:"match_date"`
	MatchTime    string `json:"match_time"`
	RivalTeam    string `json:"rival_team"`
	MatchType    string `json:"match_type"`
	Status       string `json:"status"`
	TournamentID *int64 `json:"tournament_id"`
	LocationID   *int64 `json:"location_id"`
}

// ResultRequest holds the fields for setting a match result.
type ResultRequest struct {
	OurScore   int      `json:"our_score"`
	RivalScore int      `json:"rival_score"`
	Scorers    []string `json:"scorers"`
}

// TournamentRequest holds the fields for creating a tournament.
type TournamentRequest struct {
	Name string `json:"name"`
	Year int    `json:"year"`
}
