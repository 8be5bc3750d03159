// Package diagnosis defines the uniform result shape returned to clients and
// the formatting rules that produce it from model output.
package diagnosis

import "errors"

// Result is a single diagnosis. Confidence reflects how much the producing
// strategy is trusted and is always in [0, 1].
type Result struct {
	DiseaseName string  `json:"disease_name"`
	Confidence  float64 `json:"confidence"`
	Description string  `json:"description"`
	Treatment   string  `json:"treatment"`
}

var (
	// ErrUnauthorized indicates no inference credential is configured. This is
	// the one failure that surfaces to clients as a hard error.
	ErrUnauthorized = errors.New("inference credential is not configured")

	// ErrInvalidImage indicates the upload did not decode as an image.
	ErrInvalidImage = errors.New("invalid or corrupted image file")

	// ErrAdapterUnavailable indicates a local model adapter could not reach
	// its backing server. Callers recover by moving to the next strategy.
	ErrAdapterUnavailable = errors.New("local model adapter unavailable")
)
