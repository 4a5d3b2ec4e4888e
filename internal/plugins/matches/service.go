package matches

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/clubcasares/clubserver/internal/apperror"
	"github.com/clubcasares/clubserver/internal/plugins/audit"
	"github.com/clubcasares/clubserver/internal/plugins/auth"
)

// upcomingLimit caps the upcoming-matches carousel.
const upcomingLimit = 10

// timePattern matches a 24h "HH:MM" kickoff time.
var timePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ScheduleView is the derived calendar payload for one (discipline, mode,
// anchor) combination.
type ScheduleView struct {
	Mode    ViewMode  `json:"mode"`
	Anchor  Date      `json:"anchor"`
	Visible DateRange `json:"visible"`
	Matches []Match   `json:"matches"`
}

// Service holds the schedule business logic. Reads derive views from the
// rolling-window cache; mutations are permission-gated server-side and bump
// the cache version on success.
type Service interface {
	Schedule(ctx context.Context, disciplineID int64, mode ViewMode, anchor Date) (*ScheduleView, error)
	Window(ctx context.Context, from, to Date) ([]Match, error)
	Upcoming(ctx context.Context) ([]DayBucket, error)
	Day(ctx context.Context, day Date) ([]Match, error)
	GetMatch(ctx context.Context, id int64) (*Match, error)

	Create(ctx context.Context, session *auth.Session, req MatchRequest) (*Match, error)
	Update(ctx context.Context, session *auth.Session, id int64, req MatchRequest) (*Match, error)
	Delete(ctx context.Context, session *auth.Session, id int64) error
	SetResult(ctx context.Context, session *auth.Session, matchID int64, req ResultRequest) (*Match, error)
	ClearResult(ctx context.Context, session *auth.Session, matchID int64) error

	ShareURL(link ShareLink) (string, error)

	ListTournaments(ctx context.Context) ([]Tournament, error)
	CreateTournament(ctx context.Context, session *auth.Session, req TournamentRequest) (*Tournament, error)
	DeleteTournament(ctx context.Context, session *auth.Session, id int64) error
}

type service struct {
	repo    Repository
	cache   *Cache
	audit   audit.Recorder
	baseURL string

	// today is swappable in tests.
	today func() Date
}

// NewService creates the matches service.
func NewService(repo Repository, cache *Cache, recorder audit.Recorder, baseURL string) Service {
	return &service{
		repo:    repo,
		cache:   cache,
		audit:   recorder,
		baseURL: baseURL,
		today:   Today,
	}
}

// decorate fills derived presentation fields on a match slice.
func decorate(matches []Match) []Match {
	for i := range matches {
		if matches[i].IsFriendly() {
			matches[i].Icon = IconFriendly
		} else {
			matches[i].Icon = IconTrophy
		}
	}
	return matches
}

// --- Reads ---

// Schedule derives the calendar view: ensure the padded window is cached,
// then filter down to the discipline and visible range.
func (s *service) Schedule(ctx context.Context, disciplineID int64, mode ViewMode, anchor Date) (*ScheduleView, error) {
	if mode != ModeMonth && mode != ModeWeek {
		return nil, apperror.NewBadRequest("modo must be month or week")
	}

	visible := VisibleRange(mode, anchor)
	cached, err := s.cache.Ensure(ctx, DesiredWindow(visible))
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	return &ScheduleView{
		Mode:    mode,
		Anchor:  anchor,
		Visible: visible,
		Matches: decorate(Filter(cached, disciplineID, visible)),
	}, nil
}

// Window serves an ad hoc inclusive date range, bypassing the cache.
func (s *service) Window(ctx context.Context, from, to Date) ([]Match, error) {
	if to.Before(from.Time) {
		return nil, apperror.NewBadRequest("desde must not be after hasta")
	}
	matches, err := s.repo.ListWindow(ctx, from, to)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing match window: %w", err))
	}
	return decorate(matches), nil
}

// Upcoming returns the next matches from today onward, capped, grouped by
// day in first-seen date order.
func (s *service) Upcoming(ctx context.Context) ([]DayBucket, error) {
	matches, err := s.repo.ListUpcoming(ctx, s.today(), upcomingLimit)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing upcoming matches: %w", err))
	}
	return BucketByDay(decorate(matches)), nil
}

// Day returns one calendar day's matches, used by deep links carrying a
// fecha parameter.
func (s *service) Day(ctx context.Context, day Date) ([]Match, error) {
	matches, err := s.repo.ListDay(ctx, day)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing day matches: %w", err))
	}
	return decorate(matches), nil
}

func (s *service) GetMatch(ctx context.Context, id int64) (*Match, error) {
	m, err := s.repo.GetMatch(ctx, id)
	if err != nil {
		return nil, err
	}
	decorated := decorate([]Match{*m})
	return &decorated[0], nil
}

// --- Mutations ---

// Create adds a match. The gate here is deliberately the COARSE one: any
// manager may propose a match on any discipline, but only managers scoped
// to that discipline may later edit or delete it.
func (s *service) Create(ctx context.Context, session *auth.Session, req MatchRequest) (*Match, error) {
	if session == nil {
		return nil, apperror.NewUnauthorized("authentication required")
	}
	if !session.CanManage {
		return nil, apperror.NewForbidden("management rights required")
	}

	m, err := validateMatch(req)
	if err != nil {
		return nil, err
	}
	m.CreatedAt = time.Now().UTC()

	if err := s.repo.CreateMatch(ctx, m); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("creating match: %w", err))
	}
	s.cache.Invalidate(ctx)

	slog.Info("match created",
		slog.Int64("match_id", m.ID),
		slog.Int64("discipline_id", m.DisciplineID),
		slog.String("date", m.MatchDate.String()),
	)
	s.audit.Record(ctx, session.UserID, audit.ActionCreate, "match",
		strconv.FormatInt(m.ID, 10), fmt.Sprintf("vs %s on %s", m.RivalTeam, m.MatchDate))

	decorated := decorate([]Match{*m})
	return &decorated[0], nil
}

// Update edits a match. The caller must manage the match's CURRENT
// discipline, and the target discipline too when moving it.
func (s *service) Update(ctx context.Context, session *auth.Session, id int64, req MatchRequest) (*Match, error) {
	existing, err := s.repo.GetMatch(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireMatchManage(session, existing.DisciplineID); err != nil {
		return nil, err
	}
	if req.DisciplineID != existing.DisciplineID {
		if err := requireMatchManage(session, req.DisciplineID); err != nil {
			return nil, err
		}
	}

	m, err := validateMatch(req)
	if err != nil {
		return nil, err
	}
	m.ID = id

	if err := s.repo.UpdateMatch(ctx, m); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)

	s.audit.Record(ctx, session.UserID, audit.ActionUpdate, "match",
		strconv.FormatInt(id, 10), fmt.Sprintf("vs %s on %s", m.RivalTeam, m.MatchDate))

	return s.GetMatch(ctx, id)
}

// Delete removes a match and its result in one transaction, so a partial
// failure can never leave an orphaned row on either side.
func (s *service) Delete(ctx context.Context, session *auth.Session, id int64) error {
	existing, err := s.repo.GetMatch(ctx, id)
	if err != nil {
		return err
	}
	if err := requireMatchManage(session, existing.DisciplineID); err != nil {
		return err
	}

	if err := s.repo.DeleteMatch(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx)

	slog.Info("match deleted",
		slog.Int64("match_id", id),
		slog.Int64("discipline_id", existing.DisciplineID),
	)
	s.audit.Record(ctx, session.UserID, audit.ActionDelete, "match",
		strconv.FormatInt(id, 10), fmt.Sprintf("vs %s on %s", existing.RivalTeam, existing.MatchDate))

	return nil
}

// SetResult creates or replaces a match's result.
func (s *service) SetResult(ctx context.Context, session *auth.Session, matchID int64, req ResultRequest) (*Match, error) {
	existing, err := s.repo.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if err := requireMatchManage(session, existing.DisciplineID); err != nil {
		return nil, err
	}
	if req.OurScore < 0 || req.RivalScore < 0 {
		return nil, apperror.NewValidation("scores must not be negative")
	}

	scorers := make([]string, 0, len(req.Scorers))
	for _, name := range req.Scorers {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			scorers = append(scorers, trimmed)
		}
	}

	result := &MatchResult{
		MatchID:    matchID,
		OurScore:   req.OurScore,
		RivalScore: req.RivalScore,
		Scorers:    scorers,
	}
	if err := s.repo.UpsertResult(ctx, result); err != nil {
		return nil, apperror.NewInternal(err)
	}
	s.cache.Invalidate(ctx)

	s.audit.Record(ctx, session.UserID, audit.ActionUpdate, "match_result",
		strconv.FormatInt(matchID, 10),
		fmt.Sprintf("%d-%d", req.OurScore, req.RivalScore))

	return s.GetMatch(ctx, matchID)
}

// ClearResult removes a match's result without touching the match.
func (s *service) ClearResult(ctx context.Context, session *auth.Session, matchID int64) error {
	existing, err := s.repo.GetMatch(ctx, matchID)
	if err != nil {
		return err
	}
	if err := requireMatchManage(session, existing.DisciplineID); err != nil {
		return err
	}

	if err := s.repo.DeleteResult(ctx, matchID); err != nil {
		return err
	}
	s.cache.Invalidate(ctx)

	s.audit.Record(ctx, session.UserID, audit.ActionDelete, "match_result",
		strconv.FormatInt(matchID, 10), "")
	return nil
}

// ShareURL encodes a share link against the configured base URL.
func (s *service) ShareURL(link ShareLink) (string, error) {
	return link.Encode(s.baseURL)
}

// --- Tournaments ---

func (s *service) ListTournaments(ctx context.Context) ([]Tournament, error) {
	out, err := s.repo.ListTournaments(ctx)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	return out, nil
}

func (s *service) CreateTournament(ctx context.Context, session *auth.Session, req TournamentRequest) (*Tournament, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.NewValidation("tournament name is required")
	}
	if req.Year < 1900 || req.Year > 2200 {
		return nil, apperror.NewValidation("tournament year is out of range")
	}

	t := &Tournament{Name: name, Year: req.Year}
	if err := s.repo.CreateTournament(ctx, t); err != nil {
		return nil, apperror.NewInternal(err)
	}
	s.audit.Record(ctx, session.UserID, audit.ActionCreate, "tournament",
		strconv.FormatInt(t.ID, 10), t.Name)
	return t, nil
}

func (s *service) DeleteTournament(ctx context.Context, session *auth.Session, id int64) error {
	if err := s.repo.DeleteTournament(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	s.audit.Record(ctx, session.UserID, audit.ActionDelete, "tournament",
		strconv.FormatInt(id, 10), "")
	return nil
}

// --- Validation and gating helpers ---

// requireMatchManage enforces the per-discipline predicate on edit, delete,
// and result paths.
func requireMatchManage(session *auth.Session, disciplineID int64) error {
	if session == nil {
		return apperror.NewUnauthorized("authentication required")
	}
	if !session.CanManageDiscipline(disciplineID) {
		return apperror.NewForbidden("you do not manage this discipline")
	}
	return nil
}

// validateMatch checks a match request and builds the domain model.
func validateMatch(req MatchRequest) (*Match, error) {
	if req.DisciplineID <= 0 {
		return nil, apperror.NewValidation("discipline_id is required")
	}
	date, err := ParseDate(req.MatchDate)
	if err != nil {
		return nil, apperror.NewValidation("match_date must be YYYY-MM-DD")
	}
	if !timePattern.MatchString(req.MatchTime) {
		return nil, apperror.NewValidation("match_time must be HH:MM (24h)")
	}
	rival := strings.TrimSpace(req.RivalTeam)
	if rival == "" {
		return nil, apperror.NewValidation("rival_team is required")
	}
	if !matchTypes[req.MatchType] {
		return nil, apperror.NewValidation("unknown match_type")
	}
	status := req.Status
	if status == "" {
		status = StatusScheduled
	}
	if !matchStatuses[status] {
		return nil, apperror.NewValidation("unknown status")
	}

	return &Match{
		DisciplineID: req.DisciplineID,
		MatchDate:    date,
		MatchTime:    req.MatchTime,
		RivalTeam:    rival,
		MatchType:    req.MatchType,
		Status:       status,
		TournamentID: req.TournamentID,
		LocationID:   req.LocationID,
	}, nil
}
