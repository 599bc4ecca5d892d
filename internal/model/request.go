package model

import (
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// DefaultMaxImageBytes is the raw image size ceiling when no limit is
// configured (~22 MB, the service's inline payload bound).
const DefaultMaxImageBytes = 22 << 20

// allowedMediaTypes are the image formats the reasoning service accepts.
var allowedMediaTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// InvalidInputError indicates a request that fails validation before any
// stage runs. Never retried.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "invalid input: " + e.Reason
}

// AnalysisRequest is the immutable input to one pipeline run.
type AnalysisRequest struct {
	ID uuid.UUID `json:"id"`

	// Image is the raw image payload.
	Image []byte `json:"-"`

	// MediaType is the declared content type. Validate replaces it with the
	// sniffed type when the declaration is absent or wrong.
	MediaType string `json:"media_type"`

	// AskingPriceCents is the optional seller ask in minor currency units.
	AskingPriceCents *int64 `json:"asking_price_cents,omitempty"`

	// CallerID tags logs for analytics; empty for anonymous callers.
	CallerID string `json:"caller_id,omitempty"`
}

// NewAnalysisRequest builds a request with a fresh ID.
func NewAnalysisRequest(image []byte, mediaType string, askingPriceCents *int64) AnalysisRequest {
	return AnalysisRequest{
		ID:               uuid.New(),
		Image:            image,
		MediaType:        mediaType,
		AskingPriceCents: askingPriceCents,
	}
}

// Validate checks the image payload. It sniffs the actual content type and
// rejects empty, oversized, or non-image payloads. maxBytes <= 0 applies
// DefaultMaxImageBytes.
func (r *AnalysisRequest) Validate(maxBytes int) error {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	if len(r.Image) == 0 {
		return &InvalidInputError{Reason: "empty image payload"}
	}
	if len(r.Image) > maxBytes {
		return &InvalidInputError{Reason: fmt.Sprintf("image is %d bytes, limit %d", len(r.Image), maxBytes)}
	}

	detected := mimetype.Detect(r.Image).String()
	if !allowedMediaTypes[detected] {
		return &InvalidInputError{Reason: fmt.Sprintf("unsupported image format %q (want jpeg, png, gif, or webp)", detected)}
	}

	// Trust the sniffed type over the declared one.
	r.MediaType = detected

	if r.AskingPriceCents != nil && *r.AskingPriceCents < 0 {
		return &InvalidInputError{Reason: "asking price must not be negative"}
	}
	return nil
}
