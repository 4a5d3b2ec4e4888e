package media

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/clubcasares/clubserver/internal/apperror"
	"github.com/clubcasares/clubserver/internal/plugins/audit"
	"github.com/clubcasares/clubserver/internal/plugins/auth"
)

// sniffLen is how many bytes http.DetectContentType needs.
const sniffLen = 512

// allowedMimeTypes restricts uploads to web images.
var allowedMimeTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Service handles media uploads and deletion.
type Service interface {
	Upload(ctx context.Context, session *auth.Session, fileName, mimeType string, size int64, src io.Reader) (*Media, error)
	List(ctx context.Context) ([]Media, error)
	Delete(ctx context.Context, session *auth.Session, id int64) error
}

type service struct {
	repo     Repository
	audit    audit.Recorder
	rootPath string
	maxSize  int64
}

// NewService creates the media service. rootPath is created if missing.
func NewService(repo Repository, recorder audit.Recorder, rootPath string, maxSize int64) (Service, error) {
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return nil, fmt.Errorf("creating media directory: %w", err)
	}
	return &service{repo: repo, audit: recorder, rootPath: rootPath, maxSize: maxSize}, nil
}

// Upload stores an image under a random name. The declared content type is
// ignored; the file's leading bytes decide, so a renamed script cannot
// sneak in as an image.
func (s *service) Upload(ctx context.Context, session *auth.Session, fileName, mimeType string, size int64, src io.Reader) (*Media, error) {
	if size > s.maxSize {
		return nil, apperror.NewValidation(
			fmt.Sprintf("file exceeds the %d MB upload limit", s.maxSize/(1024*1024)))
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(src, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, apperror.NewInternal(fmt.Errorf("reading upload: %w", err))
	}
	head = head[:n]

	detected := http.DetectContentType(head)
	if i := strings.Index(detected, ";"); i >= 0 {
		detected = detected[:i]
	}
	ext, ok := allowedMimeTypes[detected]
	if !ok {
		return nil, apperror.NewValidation("only JPEG, PNG, GIF, and WebP images are accepted")
	}

	name := randomName() + ext
	fullPath := filepath.Join(s.rootPath, name)

	dst, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("creating media file: %w", err))
	}
	defer dst.Close()

	written, err := io.Copy(dst, io.MultiReader(bytes.NewReader(head), io.LimitReader(src, s.maxSize)))
	if err != nil {
		os.Remove(fullPath)
		return nil, apperror.NewInternal(fmt.Errorf("writing media file: %w", err))
	}

	m := &Media{
		FileName:   filepath.Base(fileName),
		Path:       "/media/" + name,
		MimeType:   detected,
		SizeBytes:  written,
		UploadedBy: session.UserID,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, m); err != nil {
		os.Remove(fullPath)
		return nil, apperror.NewInternal(err)
	}

	slog.Info("media uploaded",
		slog.Int64("media_id", m.ID),
		slog.String("mime", m.MimeType),
		slog.Int64("bytes", m.SizeBytes),
	)
	s.audit.Record(ctx, session.UserID, audit.ActionCreate, "media",
		strconv.FormatInt(m.ID, 10), m.FileName)
	return m, nil
}

func (s *service) List(ctx context.Context) ([]Media, error) {
	out, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing media: %w", err))
	}
	return out, nil
}

// Delete removes the database row first, then the file. A file that
// lingers after a failed unlink is garbage, not a broken reference.
func (s *service) Delete(ctx context.Context, session *auth.Session, id int64) error {
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	fullPath := filepath.Join(s.rootPath, filepath.Base(m.Path))
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		slog.Warn("media file removal failed",
			slog.String("path", fullPath),
			slog.Any("error", err),
		)
	}

	s.audit.Record(ctx, session.UserID, audit.ActionDelete, "media",
		strconv.FormatInt(id, 10), m.FileName)
	return nil
}

// randomName generates a 16-byte hex file name.
func randomName() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
