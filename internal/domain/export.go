package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Format string

const (
	FormatPreview Format = "preview"
	FormatZIP     Format = "zip"
	FormatPDF     Format = "pdf"
)

const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

var ErrProfileNotFound = errors.New("profile not found")

// Export records one download or PDF export.
type Export struct {
	ID        uuid.UUID              `json:"id"`
	ProfileID *uuid.UUID             `json:"profile_id,omitempty"`
	Template  string                 `json:"template"`
	Format    Format                 `json:"format"`
	Status    string                 `json:"status"`
	SizeBytes int                    `json:"size_bytes"`
	PageCount int                    `json:"page_count,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}
