package artifact

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

// Store persists the files exported for each generated plan.
type Store interface {
	Put(ctx context.Context, planID, name string, content []byte) error
	Get(ctx context.Context, planID, name string) ([]byte, error)
	// GetURL returns a direct download URL, or "" when the backend cannot
	// serve one.
	GetURL(ctx context.Context, planID, name string) (string, error)
	List(ctx context.Context, planID string) ([]string, error)
}

var (
	ErrNotFound   = errors.New("artifact not found")
	ErrInvalidKey = errors.New("invalid artifact key")
)

// normalize trims and validates a plan file key. Names are flat file
// names; path separators and dot segments are rejected.
func normalize(planID, name string) (string, string, error) {
	planID = strings.TrimSpace(planID)
	name = strings.TrimSpace(name)
	if planID == "" {
		return "", "", fmt.Errorf("%w: plan_id is required", ErrInvalidKey)
	}
	if strings.ContainsAny(planID, "/\\") {
		return "", "", fmt.Errorf("%w: plan_id %q", ErrInvalidKey, planID)
	}
	if name == "" {
		return "", "", fmt.Errorf("%w: name is required", ErrInvalidKey)
	}
	if strings.ContainsAny(name, "/\\") || name == "." || name == ".." {
		return "", "", fmt.Errorf("%w: name %q", ErrInvalidKey, name)
	}
	return planID, name, nil
}

func objectKey(planID, name string) string {
	return planID + "/" + name
}

// ContentType guesses a MIME type from the file extension.
func ContentType(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".md":
		return "text/markdown; charset=utf-8"
	case ".json":
		return "application/json"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
