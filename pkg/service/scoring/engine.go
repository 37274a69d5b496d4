package scoring

import (
	"math"

	"github.com/m-mizutani/goerr/v2"
	"github.com/topicscout/topicscout/pkg/domain/model"
	"github.com/topicscout/topicscout/pkg/domain/model/config"
)

// Engine combines dimension scores into a total with fixed weights.
// It is side-effect free and safe for concurrent use.
type Engine struct {
	weights config.Weights
}

// New validates weights once so Score never has to fail.
func New(weights config.Weights) (*Engine, error) {
	if err := weights.Validate(); err != nil {
		return nil, goerr.Wrap(err, "failed to create scoring engine")
	}
	return &Engine{weights: weights}, nil
}

// Weights returns the weights in use
func (e *Engine) Weights() config.Weights {
	return e.weights
}

// Score returns the weighted sum of s clamped to 0..100.
func (e *Engine) Score(s model.DimensionScores) float64 {
	total := float64(s.Importance)*e.weights.Importance +
		float64(s.Watchability)*e.weights.Watchability +
		float64(s.Monetization)*e.weights.Monetization +
		float64(s.Popularity)*e.weights.Popularity +
		float64(s.Innovation)*e.weights.Innovation

	// drop float noise such as 80.75000000000001
	total = math.Round(total*1e6) / 1e6
	return math.Max(0, math.Min(100, total))
}

// Rank sorts topics best first. Ties on score go to the newer topic.
func Rank(topics []*model.Topic) {
	model.RankTopics(topics)
}
