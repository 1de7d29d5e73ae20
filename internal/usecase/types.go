package usecase

import (
	"context"
	"errors"

	"portfolio-generator/internal/adapter/templatestore"
	"portfolio-generator/internal/domain"
	"portfolio-generator/internal/model"

	"github.com/google/uuid"
)

// DefaultTemplate is used when a request names no template.
const DefaultTemplate = "modern"

var (
	ErrTemplateNotFound = templatestore.ErrNotFound
	ErrProfileNotFound  = domain.ErrProfileNotFound
	// ErrConversion wraps every PDF converter failure.
	ErrConversion = errors.New("pdf conversion failed")
)

type Renderer interface {
	RenderHTMLToPDF(ctx context.Context, html string) ([]byte, error)
}

type ProfilesRepo interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Profile, error)
}

type ExportsRepo interface {
	Save(ctx context.Context, e *domain.Export) error
}

// Request selects a template and the profile to render into it. An inline
// Profile wins over ProfileID; with neither the empty profile is used.
type Request struct {
	Template  string
	Profile   *model.Profile
	ProfileID *uuid.UUID
}

// Artifact is a finished output ready to be served or written to disk.
type Artifact struct {
	ExportID    uuid.UUID
	Format      domain.Format
	ContentType string
	Filename    string
	Body        []byte
	PageCount   int
}

// Rendered is the result of filling a template with a profile.
type Rendered struct {
	Template string
	HTML     string
	CSS      string
	Profile  *model.Profile
}
