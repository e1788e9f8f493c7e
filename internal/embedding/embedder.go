// Package embedding turns answer text into vectors and scores how close two
// vectors are.
package embedding

import "context"

// Embedder defines the interface contract for embedding generation services.
// Every vector returned by one Embedder has the same dimensionality.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	ModelName() string
}
