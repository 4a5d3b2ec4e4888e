package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/clubcasares/clubserver/internal/apperror"
)

// Recorder is the write side of the audit log. Other plugins depend on
// this narrow interface instead of the full Service.
type Recorder interface {
	// Record persists an audit entry. Failures are logged and swallowed:
	// an audit write must never fail the mutation it describes.
	Record(ctx context.Context, userID, action, targetType, targetID, detail string)
}

// Service provides audit log recording and admin reads.
type Service interface {
	Recorder
	List(ctx context.Context, limit, offset int) ([]Entry, error)
}

type service struct {
	repo Repository
}

// NewService creates the audit service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Record(ctx context.Context, userID, action, targetType, targetID, detail string) {
	e := &Entry{
		UserID:     userID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Detail:     detail,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, e); err != nil {
		slog.Warn("audit record failed",
			slog.String("action", action),
			slog.String("target_type", targetType),
			slog.String("target_id", targetID),
			slog.Any("error", err),
		)
	}
}

func (s *service) List(ctx context.Context, limit, offset int) ([]Entry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	entries, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing audit log: %w", err))
	}
	return entries, nil
}
