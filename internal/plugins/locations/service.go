package locations

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/clubcasares/clubserver/internal/apperror"
	"github.com/clubcasares/clubserver/internal/plugins/audit"
	"github.com/clubcasares/clubserver/internal/plugins/auth"
)

// Service holds the locations business logic.
type Service interface {
	List(ctx context.Context) ([]Location, error)
	Create(ctx context.Context, session *auth.Session, req LocationRequest) (*Location, error)
	Update(ctx context.Context, session *auth.Session, id int64, req LocationRequest) (*Location, error)
	Delete(ctx context.Context, session *auth.Session, id int64) error
}

type service struct {
	repo  Repository
	audit audit.Recorder
}

// NewService creates the locations service.
func NewService(repo Repository, recorder audit.Recorder) Service {
	return &service{repo: repo, audit: recorder}
}

func (s *service) List(ctx context.Context) ([]Location, error) {
	out, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing locations: %w", err))
	}
	return out, nil
}

func validateLocation(req LocationRequest) (*Location, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.NewValidation("location name is required")
	}
	mapsURL := strings.TrimSpace(req.GoogleMapsURL)
	if mapsURL != "" {
		u, err := url.Parse(mapsURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return nil, apperror.NewValidation("google_maps_url must be an http(s) URL")
		}
	}
	return &Location{
		Name:          name,
		City:          strings.TrimSpace(req.City),
		GoogleMapsURL: mapsURL,
	}, nil
}

func (s *service) Create(ctx context.Context, session *auth.Session, req LocationRequest) (*Location, error) {
	l, err := validateLocation(req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, l); err != nil {
		return nil, apperror.NewInternal(err)
	}
	s.audit.Record(ctx, session.UserID, audit.ActionCreate, "location",
		strconv.FormatInt(l.ID, 10), l.Name)
	return l, nil
}

func (s *service) Update(ctx context.Context, session *auth.Session, id int64, req LocationRequest) (*Location, error) {
	l, err := validateLocation(req)
	if err != nil {
		return nil, err
	}
	l.ID = id
	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, session.UserID, audit.ActionUpdate, "location",
		strconv.FormatInt(id, 10), l.Name)
	return l, nil
}

func (s *service) Delete(ctx context.Context, session *auth.Session, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, session.UserID, audit.ActionDelete, "location",
		strconv.FormatInt(id, 10), "")
	return nil
}
