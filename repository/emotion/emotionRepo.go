package emotion

import (
	"context"

	"booklend/model"
)

// Provider classifies free text into named emotion scores in [0,1].
type Provider interface {
	Classify(ctx context.Context, text string) (model.EmotionScores, error)
}
