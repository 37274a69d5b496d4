package config_test

import (
	"errors"
	"math"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/topicscout/topicscout/pkg/domain/model"
	"github.com/topicscout/topicscout/pkg/domain/model/config"
)

func TestDefaultResearchConfigIsValid(t *testing.T) {
	cfg := config.DefaultResearchConfig()
	gt.NoError(t, cfg.Validate())
	gt.Bool(t, math.Abs(cfg.Weights.Sum()-1.0) < 1e-9).True()
}

func TestWeightsValidate(t *testing.T) {
	tests := []struct {
		name    string
		weights config.Weights
		wantErr bool
	}{
		{
			name:    "default",
			weights: config.DefaultResearchConfig().Weights,
		},
		{
			name:    "all on one dimension",
			weights: config.Weights{Importance: 1},
		},
		{
			name:    "sum too high",
			weights: config.Weights{Importance: 0.5, Watchability: 0.5, Innovation: 0.5},
			wantErr: true,
		},
		{
			name:    "sum too low",
			weights: config.Weights{Importance: 0.1},
			wantErr: true,
		},
		{
			name:    "negative weight",
			weights: config.Weights{Importance: 1.2, Innovation: -0.2},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.weights.Validate()
			if tt.wantErr {
				gt.Error(t, err).Is(model.ErrInvalidWeights)
			} else {
				gt.NoError(t, err)
			}
		})
	}
}

func TestResearchConfigValidate(t *testing.T) {
	t.Run("threshold out of range", func(t *testing.T) {
		cfg := config.DefaultResearchConfig()
		cfg.MinTotalScore = 120
		gt.B(t, errors.Is(cfg.Validate(), model.ErrInvalidConfig)).True()
	})

	t.Run("concurrency above rate", func(t *testing.T) {
		cfg := config.DefaultResearchConfig()
		cfg.Evaluation.Concurrency = 10
		cfg.Evaluation.RequestsPerMinute = 5
		gt.B(t, errors.Is(cfg.Validate(), model.ErrInvalidConfig)).True()
	})

	t.Run("zero attempts", func(t *testing.T) {
		cfg := config.DefaultResearchConfig()
		cfg.Evaluation.MaxAttempts = 0
		gt.Error(t, cfg.Validate())
	})
}
