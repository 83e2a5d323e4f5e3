// Package intent classifies captured text into a purpose category using a
// two-tier cascade: a learned model behind the ModelBackend capability
// interface, degrading to a deterministic keyword scorer when the model is
// unavailable or unsure.
package intent

import (
	"context"

	"suri/internal/types"
)

// ModelBackend is the capability interface for the primary classification
// tier. Implementations return a score per intent label.
type ModelBackend interface {
	// Name identifies the backend in logs and results.
	Name() string
	// Available reports whether the backend is loaded and ready.
	Available(ctx context.Context) bool
	// Predict scores the text per label. Scores must lie in [0,1].
	Predict(ctx context.Context, text string) (map[types.Intent]float64, error)
}
