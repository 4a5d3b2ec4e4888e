package disciplines

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/clubcasares/clubserver/internal/apperror"
	"github.com/clubcasares/clubserver/internal/plugins/auth"
)

// mockRepo is a test double with overridable function fields. Unset methods
// return zero values so each test only wires what it exercises.
type mockRepo struct {
	getDisciplineFn  func(ctx context.Context, id int64) (*Discipline, error)
	createPlayerFn   func(ctx context.Context, p *Player) error
	getPlayerFn      func(ctx context.Context, id int64) (*Player, error)
	deletePlayerFn   func(ctx context.Context, id int64) error
	assignManagerFn  func(ctx context.Context, userID string, disciplineID int64) error
	createDiscFn     func(ctx context.Context, d *Discipline) error
}

func (m *mockRepo) ListDisciplines(ctx context.Context) ([]Discipline, error) { return nil, nil }
func (m *mockRepo) GetDiscipline(ctx context.Context, id int64) (*Discipline, error) {
	if m.getDisciplineFn != nil {
		return m.getDisciplineFn(ctx, id)
	}
	return &Discipline{ID: id}, nil
}
func (m *mockRepo) GetDisciplineBySlug(ctx context.Context, slug string) (*Discipline, error) {
	return nil, apperror.NewNotFound("discipline not found")
}
func (m *mockRepo) CreateDiscipline(ctx context.Context, d *Discipline) error {
	if m.createDiscFn != nil {
		return m.createDiscFn(ctx, d)
	}
	d.ID = 1
	return nil
}
func (m *mockRepo) UpdateDiscipline(ctx context.Context, d *Discipline) error { return nil }
func (m *mockRepo) DeleteDiscipline(ctx context.Context, id int64) error      { return nil }

func (m *mockRepo) ListPlayers(ctx context.Context, disciplineID int64) ([]Player, error) {
	return nil, nil
}
func (m *mockRepo) GetPlayer(ctx context.Context, id int64) (*Player, error) {
	if m.getPlayerFn != nil {
		return m.getPlayerFn(ctx, id)
	}
	return nil, apperror.NewNotFound("player not found")
}
func (m *mockRepo) CreatePlayer(ctx context.Context, p *Player) error {
	if m.createPlayerFn != nil {
		return m.createPlayerFn(ctx, p)
	}
	p.ID = 1
	return nil
}
func (m *mockRepo) UpdatePlayer(ctx context.Context, p *Player) error { return nil }
func (m *mockRepo) DeletePlayer(ctx context.Context, id int64) error {
	if m.deletePlayerFn != nil {
		return m.deletePlayerFn(ctx, id)
	}
	return nil
}

func (m *mockRepo) ListStaff(ctx context.Context, disciplineID int64) ([]Staff, error) {
	return nil, nil
}
func (m *mockRepo) GetStaff(ctx context.Context, id int64) (*Staff, error) {
	return nil, apperror.NewNotFound("staff member not found")
}
func (m *mockRepo) CreateStaff(ctx context.Context, s *Staff) error { s.ID = 1; return nil }
func (m *mockRepo) UpdateStaff(ctx context.Context, s *Staff) error { return nil }
func (m *mockRepo) DeleteStaff(ctx context.Context, id int64) error { return nil }

func (m *mockRepo) ListManagers(ctx context.Context, disciplineID int64) ([]Manager, error) {
	return nil, nil
}
func (m *mockRepo) AssignManager(ctx context.Context, userID string, disciplineID int64) error {
	if m.assignManagerFn != nil {
		return m.assignManagerFn(ctx, userID, disciplineID)
	}
	return nil
}
func (m *mockRepo) RemoveManager(ctx context.Context, userID string, disciplineID int64) error {
	return nil
}

// noopRecorder satisfies audit.Recorder without persisting anything.
type noopRecorder struct{}

func (noopRecorder) Record(ctx context.Context, userID, action, targetType, targetID, detail string) {
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

func adminSession() *auth.Session {
	return &auth.Session{UserID: "admin", IsAdmin: true, CanManage: true}
}

func scopedSession(ids ...int64) *auth.Session {
	return &auth.Session{UserID: "mgr", CanManage: true, ManagedDisciplineIDs: ids}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Fútbol", "futbol"},
		{"Hockey Femenino", "hockey-femenino"},
		{"  Vóley -- Playa  ", "voley-playa"},
		{"Ñandú FC", "nandu-fc"},
	}
	for _, tt := range tests {
		if got := slugify(tt.in); got != tt.want {
			t.Errorf("slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCreateDisciplineValidation(t *testing.T) {
	svc := NewService(&mockRepo{}, noopRecorder{})

	_, err := svc.CreateDiscipline(context.Background(), adminSession(), DisciplineRequest{Name: "  "})
	assertAppError(t, err, http.StatusUnprocessableEntity)

	_, err = svc.CreateDiscipline(context.Background(), adminSession(), DisciplineRequest{Name: "Fútbol", Slug: "Not A Slug"})
	assertAppError(t, err, http.StatusUnprocessableEntity)
}

func TestCreateDisciplineDerivesSlug(t *testing.T) {
	svc := NewService(&mockRepo{}, noopRecorder{})

	d, err := svc.CreateDiscipline(context.Background(), adminSession(), DisciplineRequest{Name: "Hockey Femenino"})
	if err != nil {
		t.Fatalf("CreateDiscipline: %v", err)
	}
	if d.Slug != "hockey-femenino" {
		t.Errorf("Slug = %q, want hockey-femenino", d.Slug)
	}
}

func TestCreatePlayerPermissionScope(t *testing.T) {
	svc := NewService(&mockRepo{}, noopRecorder{})
	ctx := context.Background()
	req := PlayerRequest{Name: "Juan Pérez", Position: "Delantero"}

	// Scoped manager of discipline 5 can add to 5 but not to 7.
	if _, err := svc.CreatePlayer(ctx, scopedSession(5), 5, req); err != nil {
		t.Fatalf("expected scoped manager to add to own discipline: %v", err)
	}
	_, err := svc.CreatePlayer(ctx, scopedSession(5), 7, req)
	assertAppError(t, err, http.StatusForbidden)

	// Unrestricted manager adds anywhere.
	if _, err := svc.CreatePlayer(ctx, adminSession(), 7, req); err != nil {
		t.Fatalf("expected unrestricted manager to add anywhere: %v", err)
	}

	// Nil session (middleware not applied) is rejected, not panicking.
	_, err = svc.CreatePlayer(ctx, nil, 5, req)
	assertAppError(t, err, http.StatusUnauthorized)
}

func TestDeletePlayerChecksOwningDiscipline(t *testing.T) {
	// The gate must use the PLAYER's discipline, not anything client-supplied.
	repo := &mockRepo{
		getPlayerFn: func(ctx context.Context, id int64) (*Player, error) {
			return &Player{ID: id, DisciplineID: 7, Name: "X"}, nil
		},
	}
	svc := NewService(repo, noopRecorder{})

	err := svc.DeletePlayer(context.Background(), scopedSession(5), 99)
	assertAppError(t, err, http.StatusForbidden)

	if err := svc.DeletePlayer(context.Background(), scopedSession(5, 7), 99); err != nil {
		t.Fatalf("expected manager of discipline 7 to delete: %v", err)
	}
}

func TestAssignManagerRequiresExistingDiscipline(t *testing.T) {
	repo := &mockRepo{
		getDisciplineFn: func(ctx context.Context, id int64) (*Discipline, error) {
			return nil, apperror.NewNotFound("discipline not found")
		},
	}
	svc := NewService(repo, noopRecorder{})

	err := svc.AssignManager(context.Background(), adminSession(), 42, "user-1")
	assertAppError(t, err, http.StatusNotFound)
}
