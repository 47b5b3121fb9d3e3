package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"path"
	"strings"
	"time"

	"alcyxob/liftlog/internal/domain"
	"alcyxob/liftlog/internal/storage"

	"github.com/google/uuid"
)

// Export is a finished history export.
type Export struct {
	ObjectKey   string    `json:"objectKey"`
	DownloadURL string    `json:"downloadUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
	Workouts    int       `json:"workouts"`
}

// exportDocument is the file layout written to storage.
type exportDocument struct {
	UserID     string           `json:"userId"`
	ExportedAt time.Time        `json:"exportedAt"`
	Workouts   []domain.Workout `json:"workouts"`
}

type ExportService interface {
	ExportWorkouts(ctx context.Context) Result[*Export]
}

type exportService struct {
	base
	files     storage.FileStorage
	urlExpiry time.Duration
}

// NewExportService creates the export action. files may be nil when object
// storage is not configured; exports then fail with a storage failure.
func NewExportService(d Deps, files storage.FileStorage, urlExpiry time.Duration) ExportService {
	if urlExpiry <= 0 {
		urlExpiry = storage.DefaultPresignedURLExpiry
	}
	return &exportService{base: newBase(d), files: files, urlExpiry: urlExpiry}
}

// ExportWorkouts writes the caller's complete history as JSON and returns a
// temporary download link.
func (s *exportService) ExportWorkouts(ctx context.Context) Result[*Export] {
	userID, f := s.caller(ctx)
	if f != nil {
		return fail[*Export](f)
	}
	if s.files == nil {
		return fail[*Export](s.storageFailure(ctx, "export workouts", errExportsDisabled))
	}

	workouts, err := s.repos.Workouts.ListByUser(ctx, userID, nil, true)
	if err != nil {
		return fail[*Export](s.storageFailure(ctx, "list workouts", err))
	}
	now := s.now()
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(exportDocument{UserID: userID, ExportedAt: now, Workouts: workouts}); err != nil {
		return fail[*Export](s.storageFailure(ctx, "encode export", err))
	}

	key := path.Join("exports", keySegment(userID), now.Format("20060102T150405Z")+"-"+uuid.NewString()+".json")
	if err := s.files.PutObject(ctx, key, "application/json", &buf); err != nil {
		return fail[*Export](s.storageFailure(ctx, "put export", err))
	}
	link, err := s.files.GeneratePresignedDownloadURL(ctx, key, s.urlExpiry)
	if err != nil {
		return fail[*Export](s.storageFailure(ctx, "presign export", err))
	}
	return ok(&Export{
		ObjectKey:   key,
		DownloadURL: link,
		ExpiresAt:   now.Add(s.urlExpiry),
		Workouts:    len(workouts),
	})
}

// keySegment escapes userID into a single object key segment. "." and ".."
// are spelled out so path.Join cannot fold them away.
func keySegment(userID string) string {
	seg := url.PathEscape(userID)
	if seg == "." || seg == ".." {
		seg = strings.ReplaceAll(seg, ".", "%2E")
	}
	return seg
}
