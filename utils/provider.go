package utils

import (
	"context"

	"github.com/BinSight-Labs/binsight-go-sdk/models"
)

// VisionProvider turns a photographed item into a normalized ItemProfile.
// Implementations own all normalization (enum fallbacks, confidence
// clamping); the decision engine fails fast on anything out of range.
type VisionProvider interface {
	DetectItemProfile(ctx context.Context, imageData []byte, mimeType string) (models.ItemProfile, error)
}
