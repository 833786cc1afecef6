package embedding

import (
	"context"
	"fmt"
)

// EmbeddingProvider turns text into a fixed-length vector.
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string) ([]float32, error)
	// Dimensions is the length of every vector Generate returns.
	Dimensions() int
}

// CheckDimensions rejects a vector whose length differs from want.
func CheckDimensions(vec []float32, want int) error {
	if len(vec) != want {
		return fmt.Errorf("embedding has %d dimensions, expected %d", len(vec), want)
	}
	return nil
}
