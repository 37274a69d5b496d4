package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/topicscout/topicscout/pkg/domain/types"
)

func TestParseCompetitionLevel(t *testing.T) {
	tests := []struct {
		input string
		want  types.CompetitionLevel
	}{
		{input: "Low", want: types.CompetitionLow},
		{input: "  HIGH ", want: types.CompetitionHigh},
		{input: "**medium**", want: types.CompetitionMedium},
		{input: "Low to Medium", want: types.CompetitionLow},
		{input: "unknown", want: types.CompetitionMedium},
		{input: "", want: types.CompetitionMedium},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			gt.Value(t, types.ParseCompetitionLevel(tt.input)).Equal(tt.want)
		})
	}
}

func TestParseSourceType(t *testing.T) {
	st, err := types.ParseSourceType("ai-generated")
	gt.NoError(t, err)
	gt.Value(t, st).Equal(types.SourceAIGenerated)

	_, err = types.ParseSourceType("rss")
	gt.Error(t, err)
}

func TestSessionStatus_IsFinal(t *testing.T) {
	gt.B(t, types.SessionRunning.IsFinal()).False()
	gt.B(t, types.SessionCompleted.IsFinal()).True()
	gt.B(t, types.SessionDegraded.IsFinal()).True()
	gt.B(t, types.SessionAborted.IsFinal()).True()
	gt.B(t, types.SessionStatus("").IsFinal()).False()

	_, err := types.ParseSessionStatus("paused")
	gt.Error(t, err)
}

func TestUploadConsistencyOf(t *testing.T) {
	tests := []struct {
		perWeek float64
		want    types.UploadConsistency
	}{
		{perWeek: 7, want: types.UploadDaily},
		{perWeek: 3.5, want: types.UploadFrequent},
		{perWeek: 1, want: types.UploadWeekly},
		{perWeek: 0.4, want: types.UploadOccasional},
		{perWeek: 0, want: types.UploadUnknown},
	}
	for _, tt := range tests {
		gt.Value(t, types.UploadConsistencyOf(tt.perWeek)).Equal(tt.want)
	}
}
