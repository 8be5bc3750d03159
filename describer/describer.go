// Package describer defines the capability interfaces for the local and
// remote vision models the diagnoser composes.
package describer

import "context"

// Score is one ranked zero-shot classification candidate.
type Score struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Captioner describes an image using a specific model backend.
type Captioner interface {
	// Name returns the name of the backing model, e.g. "llama" or "openai".
	Name() string

	// Caption returns a string containing an English description of the
	// provided image. The image data should be the full contents of an
	// encoded image file including the header. The provided ctx is used as a
	// parent context for the request to the model server.
	Caption(ctx context.Context, image []byte) (string, error)

	// IsHealthy returns whether the model server is ready.
	IsHealthy() bool
}

// Classifier scores an image against a caller-supplied candidate label set
// without per-label training.
type Classifier interface {
	// Name returns the name of the backing model, e.g. "clip".
	Name() string

	// Classify returns the candidate labels ranked best first.
	Classify(ctx context.Context, image []byte, labels []string) ([]Score, error)

	// IsHealthy returns whether the model server is ready.
	IsHealthy() bool
}
