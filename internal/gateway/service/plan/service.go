package plan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tripplanner/internal/export"
	artifactrepo "tripplanner/internal/gateway/repository/artifact"
	"tripplanner/internal/trip"
)

// File names stored for every archived plan.
const (
	FileMarkdown = "itinerary.md"
	FileDocx     = "itinerary.docx"
	FilePDF      = "itinerary.pdf"
	FileRecord   = "plan.json"
)

var (
	ErrNotFound   = artifactrepo.ErrNotFound
	ErrInvalidKey = artifactrepo.ErrInvalidKey
)

// Record is the JSON document stored alongside the exports.
type Record struct {
	ID        string          `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	Inputs    trip.TripInputs `json:"inputs"`
	Result    trip.TripResult `json:"result"`
}

// File is one archived file: inline content, or a URL to redirect to.
type File struct {
	Name        string
	ContentType string
	Content     []byte
	URL         string
}

// Service archives generated plans in an artifact store.
type Service struct {
	store artifactrepo.Store
	log   *zap.Logger
	now   func() time.Time
	newID func() string
}

func New(store artifactrepo.Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, log: log, now: time.Now, newID: uuid.NewString}
}

// Save stores the plan's markdown, Word, PDF and JSON record under a new
// plan ID. The record is written last: a plan without one is incomplete
// and List and Load report it as not found.
func (s *Service) Save(ctx context.Context, in trip.TripInputs, result trip.TripResult) (string, error) {
	if s == nil || s.store == nil {
		return "", fmt.Errorf("plan archive is not available")
	}
	id := s.newID()
	text := export.FullTripText(result)

	files := map[string]func() ([]byte, error){
		FileMarkdown: func() ([]byte, error) { return export.Render(export.FormatMarkdown, text) },
		FileDocx:     func() ([]byte, error) { return export.Render(export.FormatDocx, text) },
		FilePDF:      func() ([]byte, error) { return export.Render(export.FormatPDF, text) },
		FileRecord: func() ([]byte, error) {
			return json.MarshalIndent(Record{ID: id, CreatedAt: s.now().UTC(), Inputs: in, Result: result}, "", "  ")
		},
	}
	for _, name := range []string{FileMarkdown, FileDocx, FilePDF, FileRecord} {
		content, err := files[name]()
		if err != nil {
			return "", fmt.Errorf("render %s: %w", name, err)
		}
		if err := s.store.Put(ctx, id, name, content); err != nil {
			s.log.Warn("plan archive incomplete", zap.String("plan_id", id), zap.String("file", name), zap.Error(err))
			return "", fmt.Errorf("store %s: %w", name, err)
		}
	}
	s.log.Info("plan archived", zap.String("plan_id", id), zap.Int("sections", result.Len()))
	return id, nil
}

// Open returns a stored file. Backends that can serve downloads directly
// return a URL instead of the content.
func (s *Service) Open(ctx context.Context, planID, name string) (File, error) {
	if s == nil || s.store == nil {
		return File{}, fmt.Errorf("plan archive is not available")
	}
	f := File{Name: name, ContentType: artifactrepo.ContentType(name)}
	u, err := s.store.GetURL(ctx, planID, name)
	if err != nil {
		return File{}, err
	}
	if strings.TrimSpace(u) != "" {
		f.URL = u
		return f, nil
	}
	f.Content, err = s.store.Get(ctx, planID, name)
	if err != nil {
		return File{}, err
	}
	return f, nil
}

// List returns the stored file names for a complete plan, or ErrNotFound.
func (s *Service) List(ctx context.Context, planID string) ([]string, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("plan archive is not available")
	}
	names, err := s.store.List(ctx, planID)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(names, FileRecord) {
		return nil, ErrNotFound
	}
	return names, nil
}

// Load reads back a plan's JSON record.
func (s *Service) Load(ctx context.Context, planID string) (Record, error) {
	if s == nil || s.store == nil {
		return Record{}, fmt.Errorf("plan archive is not available")
	}
	raw, err := s.store.Get(ctx, planID, FileRecord)
	if err != nil {
		return Record{}, err
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Record{}, fmt.Errorf("decode plan %s: %w", planID, err)
	}
	return rec, nil
}

// IsNotFound reports whether err means the plan or file does not exist.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
