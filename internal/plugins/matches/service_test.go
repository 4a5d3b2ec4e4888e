package matches

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/clubcasares/clubserver/internal/apperror"
	"github.com/clubcasares/clubserver/internal/plugins/auth"
)

// memRepo is an in-memory Repository for service tests. Matches live in a
// slice in insertion order; failNext forces the next write to error.
type memRepo struct {
	matches  []Match
	results  map[int64]*MatchResult
	nextID   int64
	failNext error

	deleteCalls int
}

func newMemRepo() *memRepo {
	return &memRepo{results: map[int64]*MatchResult{}, nextID: 1}
}

func (r *memRepo) takeErr() error {
	err := r.failNext
	r.failNext = nil
	return err
}

func (r *memRepo) attach(m Match) Match {
	if res, ok := r.results[m.ID]; ok {
		m.Result = res
	}
	return m
}

func (r *memRepo) ListWindow(ctx context.Context, from, to Date) ([]Match, error) {
	if err := r.takeErr(); err != nil {
		return nil, err
	}
	var out []Match
	for _, m := range r.matches {
		if !m.MatchDate.Before(from.Time) && !m.MatchDate.After(to.Time) {
			out = append(out, r.attach(m))
		}
	}
	return out, nil
}

func (r *memRepo) ListUpcoming(ctx context.Context, from Date, limit int) ([]Match, error) {
	var out []Match
	for _, m := range r.matches {
		if !m.MatchDate.Before(from.Time) {
			out = append(out, r.attach(m))
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memRepo) ListDay(ctx context.Context, day Date) ([]Match, error) {
	var out []Match
	for _, m := range r.matches {
		if m.MatchDate.Equal(day.Time) {
			out = append(out, r.attach(m))
		}
	}
	return out, nil
}

func (r *memRepo) GetMatch(ctx context.Context, id int64) (*Match, error) {
	for _, m := range r.matches {
		if m.ID == id {
			found := r.attach(m)
			return &found, nil
		}
	}
	return nil, apperror.NewNotFound("match not found")
}

func (r *memRepo) CreateMatch(ctx context.Context, m *Match) error {
	if err := r.takeErr(); err != nil {
		return err
	}
	m.ID = r.nextID
	r.nextID++
	r.matches = append(r.matches, *m)
	return nil
}

func (r *memRepo) UpdateMatch(ctx context.Context, m *Match) error {
	if err := r.takeErr(); err != nil {
		return err
	}
	for i := range r.matches {
		if r.matches[i].ID == m.ID {
			r.matches[i] = *m
			return nil
		}
	}
	return apperror.NewNotFound("match not found")
}

func (r *memRepo) DeleteMatch(ctx context.Context, id int64) error {
	r.deleteCalls++
	if err := r.takeErr(); err != nil {
		return err
	}
	for i := range r.matches {
		if r.matches[i].ID == id {
			delete(r.results, id)
			r.matches = append(r.matches[:i], r.matches[i+1:]...)
			return nil
		}
	}
	return apperror.NewNotFound("match not found")
}

func (r *memRepo) UpsertResult(ctx context.Context, res *MatchResult) error {
	if err := r.takeErr(); err != nil {
		return err
	}
	r.results[res.MatchID] = res
	return nil
}

func (r *memRepo) DeleteResult(ctx context.Context, matchID int64) error {
	if _, ok := r.results[matchID]; !ok {
		return apperror.NewNotFound("match result not found")
	}
	delete(r.results, matchID)
	return nil
}

func (r *memRepo) ListTournaments(ctx context.Context) ([]Tournament, error) { return nil, nil }
func (r *memRepo) CreateTournament(ctx context.Context, t *Tournament) error {
	t.ID = 1
	return nil
}
func (r *memRepo) DeleteTournament(ctx context.Context, id int64) error { return nil }

// noopRecorder satisfies audit.Recorder.
type noopRecorder struct{}

func (noopRecorder) Record(ctx context.Context, userID, action, targetType, targetID, detail string) {
}

type harness struct {
	svc  Service
	repo *memRepo
	mr   *miniredis.Miniredis
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	repo := newMemRepo()
	svc := NewService(repo, NewCache(repo, rdb), noopRecorder{}, testBase)
	return &harness{svc: svc, repo: repo, mr: mr}
}

func assertAppError(t *testing.T, err error, code int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected AppError with code %d, got nil", code)
	}
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	if appErr.Code != code {
		t.Fatalf("expected code %d, got %d (%v)", code, appErr.Code, appErr)
	}
}

func managerSession(ids ...int64) *auth.Session {
	return &auth.Session{UserID: "mgr", CanManage: true, ManagedDisciplineIDs: ids}
}

func validRequest(disciplineID int64) MatchRequest {
	return MatchRequest{
		DisciplineID: disciplineID,
		MatchDate:    "2025-05-10",
		MatchTime:    "20:00",
		RivalTeam:    "CA River",
		MatchType:    TypeFriendly,
	}
}

func TestCreateValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	session := managerSession()

	tests := []struct {
		name   string
		mutate func(*MatchRequest)
	}{
		{"missing discipline", func(r *MatchRequest) { r.DisciplineID = 0 }},
		{"bad date", func(r *MatchRequest) { r.MatchDate = "10/05/2025" }},
		{"bad time", func(r *MatchRequest) { r.MatchTime = "25:99" }},
		{"empty rival", func(r *MatchRequest) { r.RivalTeam = "  " }},
		{"unknown type", func(r *MatchRequest) { r.MatchType = "Repechaje" }},
		{"unknown status", func(r *MatchRequest) { r.Status = "pendiente" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest(3)
			tt.mutate(&req)
			_, err := h.svc.Create(ctx, session, req)
			assertAppError(t, err, http.StatusUnprocessableEntity)
		})
	}
}

func TestPermissionGateAsymmetry(t *testing.T) {
	// A manager scoped to discipline 5 may ADD a match in any discipline,
	// but may only edit or delete matches of discipline 5.
	h := newHarness(t)
	ctx := context.Background()
	scoped := managerSession(5)

	in5, err := h.svc.Create(ctx, scoped, validRequest(5))
	if err != nil {
		t.Fatalf("create in own discipline: %v", err)
	}
	in7, err := h.svc.Create(ctx, scoped, validRequest(7))
	if err != nil {
		t.Fatalf("create in foreign discipline must pass the coarse gate: %v", err)
	}

	// Edit/delete on discipline 5: allowed.
	if _, err := h.svc.Update(ctx, scoped, in5.ID, validRequest(5)); err != nil {
		t.Fatalf("update own discipline: %v", err)
	}

	// Edit/delete on discipline 7: forbidden.
	_, err = h.svc.Update(ctx, scoped, in7.ID, validRequest(7))
	assertAppError(t, err, http.StatusForbidden)
	err = h.svc.Delete(ctx, scoped, in7.ID)
	assertAppError(t, err, http.StatusForbidden)

	// Without the coarse flag, even adding is rejected.
	_, err = h.svc.Create(ctx, &auth.Session{UserID: "u"}, validRequest(5))
	assertAppError(t, err, http.StatusForbidden)
}

func TestUpdateMovingDisciplineNeedsBothGates(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	scoped := managerSession(5)

	m, err := h.svc.Create(ctx, scoped, validRequest(5))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Moving the match into an unmanaged discipline is forbidden.
	_, err = h.svc.Update(ctx, scoped, m.ID, validRequest(7))
	assertAppError(t, err, http.StatusForbidden)
}

func TestAddThenList(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	session := managerSession()

	// Warm the cache so the add must invalidate it to become visible.
	view, err := h.svc.Schedule(ctx, 0, ModeMonth, date("2025-05-15"))
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if len(view.Matches) != 0 {
		t.Fatalf("expected empty calendar, got %d matches", len(view.Matches))
	}

	created, err := h.svc.Create(ctx, session, validRequest(3))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	view, err = h.svc.Schedule(ctx, 0, ModeMonth, date("2025-05-15"))
	if err != nil {
		t.Fatalf("Schedule after create: %v", err)
	}
	if len(view.Matches) != 1 || view.Matches[0].ID != created.ID {
		t.Fatalf("created match missing from refreshed calendar: %+v", view.Matches)
	}

	got := view.Matches[0]
	if got.TournamentID != nil {
		t.Error("friendly match must have no tournament")
	}
	if got.Icon != IconFriendly {
		t.Errorf("Icon = %q, want %q", got.Icon, IconFriendly)
	}

	// The match lands in the 2025-05-10 bucket.
	buckets := BucketByDay(view.Matches)
	if len(buckets) != 1 || buckets[0].Date.String() != "2025-05-10" {
		t.Fatalf("buckets = %+v, want one bucket on 2025-05-10", buckets)
	}
}

func TestDeleteRemovesMatchAndResultTogether(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	session := managerSession()

	m, err := h.svc.Create(ctx, session, validRequest(3))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := h.svc.SetResult(ctx, session, m.ID, ResultRequest{
		OurScore: 2, RivalScore: 1, Scorers: []string{"Gómez", "Díaz"},
	}); err != nil {
		t.Fatalf("SetResult: %v", err)
	}

	if err := h.svc.Delete(ctx, session, m.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	// One repository call covers both rows; nothing is orphaned.
	if h.repo.deleteCalls != 1 {
		t.Errorf("deleteCalls = %d, want 1 (single transactional delete)", h.repo.deleteCalls)
	}
	if len(h.repo.results) != 0 {
		t.Errorf("orphaned results remain: %v", h.repo.results)
	}
	_, err = h.svc.GetMatch(ctx, m.ID)
	assertAppError(t, err, http.StatusNotFound)
}

func TestSetResultPreservesScorerOrder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	session := managerSession()

	m, err := h.svc.Create(ctx, session, validRequest(3))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	scorers := []string{"Zárate", "Acuña", "Benítez"}
	got, err := h.svc.SetResult(ctx, session, m.ID, ResultRequest{
		OurScore: 3, RivalScore: 0, Scorers: scorers,
	})
	if err != nil {
		t.Fatalf("SetResult: %v", err)
	}
	if got.Result == nil {
		t.Fatal("result not attached")
	}
	for i, name := range scorers {
		if got.Result.Scorers[i] != name {
			t.Fatalf("scorer order changed: %v", got.Result.Scorers)
		}
	}
}

func TestFailedMutationDoesNotInvalidateCache(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	session := managerSession()

	// Warm the cache.
	if _, err := h.svc.Schedule(ctx, 0, ModeMonth, date("2025-05-15")); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	before, _ := h.mr.Get(versionKey)

	h.repo.failNext = errors.New("db down")
	_, err := h.svc.Create(ctx, session, validRequest(3))
	assertAppError(t, err, http.StatusInternalServerError)

	after, _ := h.mr.Get(versionKey)
	if before != after {
		t.Errorf("version moved on failed mutation: %q -> %q", before, after)
	}
}

func TestMutationErrorsAreTyped(t *testing.T) {
	// Write failures must surface as typed errors, never be swallowed.
	h := newHarness(t)
	ctx := context.Background()
	session := managerSession()

	_, err := h.svc.Update(ctx, session, 999, validRequest(3))
	assertAppError(t, err, http.StatusNotFound)

	err = h.svc.Delete(ctx, session, 999)
	assertAppError(t, err, http.StatusNotFound)

	m, _ := h.svc.Create(ctx, session, validRequest(3))
	err = h.svc.ClearResult(ctx, session, m.ID)
	assertAppError(t, err, http.StatusNotFound)

	_, err = h.svc.SetResult(ctx, session, m.ID, ResultRequest{OurScore: -1})
	assertAppError(t, err, http.StatusUnprocessableEntity)
}

func TestUpcomingBucketsCapAndOrder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	session := managerSession()

	// Pin "today" so the test is stable.
	h.svc.(*service).today = func() Date { return date("2025-05-01") }

	// One past match (excluded) and a dozen future ones across days.
	past := validRequest(3)
	past.MatchDate = "2025-04-30"
	if _, err := h.svc.Create(ctx, session, past); err != nil {
		t.Fatalf("Create: %v", err)
	}
	days := []string{
		"2025-05-02", "2025-05-02", "2025-05-03", "2025-05-05", "2025-05-05",
		"2025-05-05", "2025-05-08", "2025-05-09", "2025-05-10", "2025-05-11",
		"2025-05-12", "2025-05-13",
	}
	for _, d := range days {
		req := validRequest(3)
		req.MatchDate = d
		if _, err := h.svc.Create(ctx, session, req); err != nil {
			t.Fatalf("Create(%s): %v", d, err)
		}
	}

	buckets, err := h.svc.Upcoming(ctx)
	if err != nil {
		t.Fatalf("Upcoming: %v", err)
	}

	total := 0
	var prev string
	for _, b := range buckets {
		if b.Date.String() <= prev {
			t.Errorf("bucket dates out of order: %s after %s", b.Date, prev)
		}
		if b.Date.String() < "2025-05-01" {
			t.Errorf("past match leaked into upcoming: %s", b.Date)
		}
		prev = b.Date.String()
		total += len(b.Matches)
	}
	if total != upcomingLimit {
		t.Errorf("upcoming total = %d, want capped at %d", total, upcomingLimit)
	}
}
