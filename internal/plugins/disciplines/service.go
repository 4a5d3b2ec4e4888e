package disciplines

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

// Service holds the business logic for disciplines, rosters, and manager
// assignments. Roster mutations take the caller's session and enforce the
// per-discipline permission predicate server-side.
type Service interface {
	ListDisciplines(ctx context.Context) ([]Discipline, error)
	GetDisciplineBySlug(ctx context.Context, slug string) (*Discipline, error)
	CreateDiscipline(ctx context.Context, session *auth.Session, req DisciplineRequest) (*Discipline, error)
	UpdateDiscipline(ctx context.Context, session *auth.Session, id int64, req DisciplineRequest) (*Discipline, error)
	DeleteDiscipline(ctx context.Context, session *auth.Session, id int64) error

	ListPlayers(ctx context.Context, disciplineID int64) ([]Player, error)
	CreatePlayer(ctx context.Context, session *auth.Session, disciplineID int64, req PlayerRequest) (*Player, error)
	UpdatePlayer(ctx context.Context, session *auth.Session, id int64, req PlayerRequest) (*Player, error)
	DeletePlayer(ctx context.Context, session *auth.Session, id int64) error

	ListStaff(ctx context.Context, disciplineID int64) ([]Staff, error)
	CreateStaff(ctx context.Context, session *auth.Session, disciplineID int64, req StaffRequest) (*Staff, error)
	UpdateStaff(ctx context.Context, session *auth.Session, id int64, req StaffRequest) (*Staff, error)
	DeleteStaff(ctx context.Context, session *auth.Session, id int64) error

	ListManagers(ctx context.Context, disciplineID int64) ([]Manager, error)
	AssignManager(ctx context.Context, session *auth.Session, disciplineID int64, userID string) error
	RemoveManager(ctx context.Context, session *auth.Session, disciplineID int64, userID string) error
}

type service struct {
	repo  Repository
	audit audit.Recorder
}

// NewService creates the disciplines service.
func NewService(repo Repository, recorder audit.Recorder) Service {
	return &service{repo: repo, audit: recorder}
}

// slugPattern matches a valid URL slug: lowercase letters, digits, hyphens.
var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// --- Disciplines ---

func (s *service) ListDisciplines(ctx context.Context) ([]Discipline, error) {
	out, err := s.repo.ListDisciplines(ctx)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing disciplines: %w", err))
	}
	return out, nil
}

func (s *service) GetDisciplineBySlug(ctx context.Context, slug string) (*Discipline, error) {
	return s.repo.GetDisciplineBySlug(ctx, slug)
}

func (s *service) CreateDiscipline(ctx context.Context, session *auth.Session, req DisciplineRequest) (*Discipline, error) {
	d, err := validateDiscipline(req)
	if err != nil {
		return nil, err
	}
	d.CreatedAt = time.Now().UTC()

	if err := s.repo.CreateDiscipline(ctx, d); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("creating discipline: %w", err))
	}

	slog.Info("discipline created",
		slog.Int64("discipline_id", d.ID),
		slog.String("slug", d.Slug),
	)
	s.audit.Record(ctx, session.UserID, audit.ActionCreate, "discipline",
		strconv.FormatInt(d.ID, 10), d.Name)

	return d, nil
}

func (s *service) UpdateDiscipline(ctx context.Context, session *auth.Session, id int64, req DisciplineRequest) (*Discipline, error) {
	d, err := validateDiscipline(req)
	if err != nil {
		return nil, err
	}
	d.ID = id

	if err := s.repo.UpdateDiscipline(ctx, d); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, session.UserID, audit.ActionUpdate, "discipline",
		strconv.FormatInt(id, 10), d.Name)

	return s.repo.GetDiscipline(ctx, id)
}

func (s *service) DeleteDiscipline(ctx context.Context, session *auth.Session, id int64) error {
	if err := s.repo.DeleteDiscipline(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, session.UserID, audit.ActionDelete, "discipline",
		strconv.FormatInt(id, 10), "")
	return nil
}

func validateDiscipline(req DisciplineRequest) (*Discipline, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.NewValidation("discipline name is required")
	}
	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		slug = slugify(name)
	}
	if !slugPattern.MatchString(slug) {
		return nil, apperror.NewValidation("slug may only contain lowercase letters, digits, and hyphens")
	}
	return &Discipline{Name: name, Slug: slug, Icon: strings.TrimSpace(req.Icon)}, nil
}

// slugify derives a URL slug from a display name. Spanish accented vowels
// are transliterated so "Fútbol" becomes "futbol".
func slugify(name string) string {
	replacer := strings.NewReplacer(
		"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ñ", "n", "ü", "u",
	)
	s := replacer.Replace(strings.ToLower(strings.TrimSpace(name)))

	var b strings.Builder
	lastHyphen := true
	for _, r := range s {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}

// --- Rosters ---

// requireDisciplineManage enforces the per-discipline predicate: the caller
// must hold management rights covering the given discipline. An unrestricted
// manager (empty scoped set) passes for any discipline.
func requireDisciplineManage(session *auth.Session, disciplineID int64) error {
	if session == nil {
		return apperror.NewUnauthorized("authentication required")
	}
	if !session.CanManageDiscipline(disciplineID) {
		return apperror.NewForbidden("you do not manage this discipline")
	}
	return nil
}

func (s *service) ListPlayers(ctx context.Context, disciplineID int64) ([]Player, error) {
	out, err := s.repo.ListPlayers(ctx, disciplineID)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing players: %w", err))
	}
	return out, nil
}

func (s *service) CreatePlayer(ctx context.Context, session *auth.Session, disciplineID int64, req PlayerRequest) (*Player, error) {
	if err := requireDisciplineManage(session, disciplineID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.NewValidation("player name is required")
	}

	p := &Player{
		DisciplineID: disciplineID,
		Name:         name,
		Position:     strings.TrimSpace(req.Position),
		JerseyNumber: req.JerseyNumber,
	}
	if err := s.repo.CreatePlayer(ctx, p); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("creating player: %w", err))
	}
	s.audit.Record(ctx, session.UserID, audit.ActionCreate, "player",
		strconv.FormatInt(p.ID, 10), p.Name)
	return p, nil
}

func (s *service) UpdatePlayer(ctx context.Context, session *auth.Session, id int64, req PlayerRequest) (*Player, error) {
	existing, err := s.repo.GetPlayer(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireDisciplineManage(session, existing.DisciplineID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.NewValidation("player name is required")
	}

	existing.Name = name
	existing.Position = strings.TrimSpace(req.Position)
	existing.JerseyNumber = req.JerseyNumber
	if err := s.repo.UpdatePlayer(ctx, existing); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, session.UserID, audit.ActionUpdate, "player",
		strconv.FormatInt(id, 10), existing.Name)
	return existing, nil
}

func (s *service) DeletePlayer(ctx context.Context, session *auth.Session, id int64) error {
	existing, err := s.repo.GetPlayer(ctx, id)
	if err != nil {
		return err
	}
	if err := requireDisciplineManage(session, existing.DisciplineID); err != nil {
		return err
	}
	if err := s.repo.DeletePlayer(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, session.UserID, audit.ActionDelete, "player",
		strconv.FormatInt(id, 10), existing.Name)
	return nil
}

func (s *service) ListStaff(ctx context.Context, disciplineID int64) ([]Staff, error) {
	out, err := s.repo.ListStaff(ctx, disciplineID)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing staff: %w", err))
	}
	return out, nil
}

func (s *service) CreateStaff(ctx context.Context, session *auth.Session, disciplineID int64, req StaffRequest) (*Staff, error) {
	if err := requireDisciplineManage(session, disciplineID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.NewValidation("staff name is required")
	}

	m := &Staff{
		DisciplineID: disciplineID,
		Name:         name,
		Role:         strings.TrimSpace(req.Role),
	}
	if err := s.repo.CreateStaff(ctx, m); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("creating staff: %w", err))
	}
	s.audit.Record(ctx, session.UserID, audit.ActionCreate, "staff",
		strconv.FormatInt(m.ID, 10), m.Name)
	return m, nil
}

func (s *service) UpdateStaff(ctx context.Context, session *auth.Session, id int64, req StaffRequest) (*Staff, error) {
	existing, err := s.repo.GetStaff(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireDisciplineManage(session, existing.DisciplineID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.NewValidation("staff name is required")
	}

	existing.Name = name
	existing.Role = strings.TrimSpace(req.Role)
	if err := s.repo.UpdateStaff(ctx, existing); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, session.UserID, audit.ActionUpdate, "staff",
		strconv.FormatInt(id, 10), existing.Name)
	return existing, nil
}

func (s *service) DeleteStaff(ctx context.Context, session *auth.Session, id int64) error {
	existing, err := s.repo.GetStaff(ctx, id)
	if err != nil {
		return err
	}
	if err := requireDisciplineManage(session, existing.DisciplineID); err != nil {
		return err
	}
	if err := s.repo.DeleteStaff(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, session.UserID, audit.ActionDelete, "staff",
		strconv.FormatInt(id, 10), existing.Name)
	return nil
}

// --- Manager assignments (admin only, gated at the route level) ---

func (s *service) ListManagers(ctx context.Context, disciplineID int64) ([]Manager, error) {
	out, err := s.repo.ListManagers(ctx, disciplineID)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing managers: %w", err))
	}
	return out, nil
}

func (s *service) AssignManager(ctx context.Context, session *auth.Session, disciplineID int64, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return apperror.NewValidation("user_id is required")
	}
	// The discipline must exist; a dangling assignment would silently grant nothing.
	if _, err := s.repo.GetDiscipline(ctx, disciplineID); err != nil {
		return err
	}
	if err := s.repo.AssignManager(ctx, userID, disciplineID); err != nil {
		return apperror.NewInternal(fmt.Errorf("assigning manager: %w", err))
	}

	slog.Info("manager assigned",
		slog.String("user_id", userID),
		slog.Int64("discipline_id", disciplineID),
	)
	s.audit.Record(ctx, session.UserID, audit.ActionCreate, "manager",
		userID, fmt.Sprintf("discipline %d", disciplineID))

	// Existing sessions keep their rights until re-login. Documented
	// behavior: permission changes apply on next login.
	return nil
}

func (s *service) RemoveManager(ctx context.Context, session *auth.Session, disciplineID int64, userID string) error {
	if err := s.repo.RemoveManager(ctx, userID, disciplineID); err != nil {
		return err
	}
	s.audit.Record(ctx, session.UserID, audit.ActionDelete, "manager",
		userID, fmt.Sprintf("discipline %d", disciplineID))
	return nil
}
