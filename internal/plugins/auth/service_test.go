package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/clubcasares/clubserver/internal/apperror"
)

// mockUserRepo is a test double with overridable function fields.
type mockUserRepo struct {
	createFn             func(ctx context.Context, user *User) error
	findByEmailFn        func(ctx context.Context, email string) (*User, error)
	findByIDFn           func(ctx context.Context, id string) (*User, error)
	emailExistsFn        func(ctx context.Context, email string) (bool, error)
	updateLastLoginFn    func(ctx context.Context, id string) error
	listFn               func(ctx context.Context) ([]User, error)
	deleteFn             func(ctx context.Context, id string) error
	listManagedFn        func(ctx context.Context, userID string) ([]int64, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user *User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, apperror.NewNotFound("user not found")
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, apperror.NewNotFound("user not found")
}

func (m *mockUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	if m.emailExistsFn != nil {
		return m.emailExistsFn(ctx, email)
	}
	return false, nil
}

func (m *mockUserRepo) UpdateLastLogin(ctx context.Context, id string) error {
	if m.updateLastLoginFn != nil {
		return m.updateLastLoginFn(ctx, id)
	}
	return nil
}

func (m *mockUserRepo) List(ctx context.Context) ([]User, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockUserRepo) ListManagedDisciplineIDs(ctx context.Context, userID string) ([]int64, error) {
	if m.listManagedFn != nil {
		return m.listManagedFn(ctx, userID)
	}
	return nil, nil
}

// newTestService creates an auth service backed by miniredis.
func newTestService(t *testing.T, repo UserRepository) (AuthService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewAuthService(repo, rdb, time.Hour), mr
}

// assertAppError fails the test unless err is an AppError with the given code.
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

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := hashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("hashPassword: %v", err)
	}

	if !verifyPassword("correct horse battery staple", hash) {
		t.Error("correct password did not verify")
	}
	if verifyPassword("wrong password", hash) {
		t.Error("wrong password verified")
	}

	// Two hashes of the same password must differ (random salt).
	hash2, _ := hashPassword("correct horse battery staple")
	if hash == hash2 {
		t.Error("expected distinct salts, got identical hashes")
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	for _, bad := range []string{"", "not-a-hash", "$argon2id$v=19$garbage"} {
		if verifyPassword("anything", bad) {
			t.Errorf("malformed hash %q verified", bad)
		}
	}
}

func TestCreateUserValidation(t *testing.T) {
	svc, _ := newTestService(t, &mockUserRepo{})

	_, err := svc.CreateUser(context.Background(), CreateUserInput{Email: "not-an-email", Password: "longenough"})
	assertAppError(t, err, http.StatusUnprocessableEntity)

	_, err = svc.CreateUser(context.Background(), CreateUserInput{Email: "ok@club.test", Password: "short"})
	assertAppError(t, err, http.StatusUnprocessableEntity)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	repo := &mockUserRepo{
		emailExistsFn: func(ctx context.Context, email string) (bool, error) { return true, nil },
	}
	svc, _ := newTestService(t, repo)

	_, err := svc.CreateUser(context.Background(), CreateUserInput{Email: "taken@club.test", Password: "longenough"})
	assertAppError(t, err, http.StatusConflict)
}

func TestCreateUserNormalizesEmail(t *testing.T) {
	var created *User
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *User) error {
			created = user
			return nil
		},
	}
	svc, _ := newTestService(t, repo)

	_, err := svc.CreateUser(context.Background(), CreateUserInput{
		Email:    "  Admin@Club.Test ",
		Password: "longenough",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if created.Email != "admin@club.test" {
		t.Errorf("expected normalized email, got %q", created.Email)
	}
	if created.ID == "" {
		t.Error("expected generated UUID")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	hash, _ := hashPassword("the-real-password")
	repo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*User, error) {
			return &User{ID: "u1", Email: email, PasswordHash: hash}, nil
		},
	}
	svc, _ := newTestService(t, repo)

	_, _, err := svc.Login(context.Background(), LoginInput{Email: "a@club.test", Password: "wrong"})
	assertAppError(t, err, http.StatusUnauthorized)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _ := newTestService(t, &mockUserRepo{})

	_, _, err := svc.Login(context.Background(), LoginInput{Email: "ghost@club.test", Password: "whatever"})
	assertAppError(t, err, http.StatusUnauthorized)
}

func TestLoginResolvesManagementRights(t *testing.T) {
	hash, _ := hashPassword("secret-pass")

	tests := []struct {
		name        string
		isAdmin     bool
		managed     []int64
		wantManage  bool
		wantManaged int
	}{
		{"admin gets unrestricted rights", true, nil, true, 0},
		{"admin keeps empty set even with rows", true, []int64{3}, true, 0},
		{"scoped manager gets listed disciplines", false, []int64{1, 4}, true, 2},
		{"plain user gets nothing", false, nil, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockUserRepo{
				findByEmailFn: func(ctx context.Context, email string) (*User, error) {
					return &User{ID: "u1", Email: email, PasswordHash: hash, IsAdmin: tt.isAdmin}, nil
				},
				listManagedFn: func(ctx context.Context, userID string) ([]int64, error) {
					return tt.managed, nil
				},
			}
			svc, _ := newTestService(t, repo)

			_, session, err := svc.Login(context.Background(), LoginInput{Email: "a@club.test", Password: "secret-pass"})
			if err != nil {
				t.Fatalf("Login: %v", err)
			}
			if session.CanManage != tt.wantManage {
				t.Errorf("CanManage = %v, want %v", session.CanManage, tt.wantManage)
			}
			if got := len(session.ManagedDisciplineIDs); got != tt.wantManaged {
				t.Errorf("len(ManagedDisciplineIDs) = %d, want %d", got, tt.wantManaged)
			}
		})
	}
}

func TestSessionLifecycle(t *testing.T) {
	hash, _ := hashPassword("secret-pass")
	repo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*User, error) {
			return &User{ID: "u1", Email: email, PasswordHash: hash}, nil
		},
	}
	svc, mr := newTestService(t, repo)
	ctx := context.Background()

	token, _, err := svc.Login(ctx, LoginInput{Email: "a@club.test", Password: "secret-pass"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	session, err := svc.ValidateSession(ctx, token)
	if err != nil {
		t.Fatalf("ValidateSession: %v", err)
	}
	if session.UserID != "u1" {
		t.Errorf("UserID = %q, want u1", session.UserID)
	}

	// Expired sessions are rejected.
	mr.FastForward(2 * time.Hour)
	_, err = svc.ValidateSession(ctx, token)
	assertAppError(t, err, http.StatusUnauthorized)
}

func TestDestroySession(t *testing.T) {
	hash, _ := hashPassword("secret-pass")
	repo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*User, error) {
			return &User{ID: "u1", Email: email, PasswordHash: hash}, nil
		},
	}
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	token, _, err := svc.Login(ctx, LoginInput{Email: "a@club.test", Password: "secret-pass"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if err := svc.DestroySession(ctx, token); err != nil {
		t.Fatalf("DestroySession: %v", err)
	}
	_, err = svc.ValidateSession(ctx, token)
	assertAppError(t, err, http.StatusUnauthorized)
}

func TestCanManageDiscipline(t *testing.T) {
	tests := []struct {
		name    string
		session Session
		id      int64
		want    bool
	}{
		{"no rights at all", Session{}, 1, false},
		{"unrestricted manager", Session{CanManage: true}, 7, true},
		{"scoped manager, own discipline", Session{CanManage: true, ManagedDisciplineIDs: []int64{2, 5}}, 5, true},
		{"scoped manager, other discipline", Session{CanManage: true, ManagedDisciplineIDs: []int64{2, 5}}, 3, false},
		{"managed list without flag is inert", Session{ManagedDisciplineIDs: []int64{1}}, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.session.CanManageDiscipline(tt.id); got != tt.want {
				t.Errorf("CanManageDiscipline(%d) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}
