package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/topicscout/topicscout/pkg/domain/model"
)

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "case and outer spaces", input: "  ai tutorial  ", want: "ai tutorial"},
		{name: "already normal", input: "AI Tutorial", want: "ai tutorial"},
		{name: "punctuation", input: "Go: The Complete Guide!!", want: "go the complete guide"},
		{name: "inner whitespace", input: "Learn\tRust   in\n2025", want: "learn rust in 2025"},
		{name: "symbols", input: "C++ vs C# - which?", want: "c vs c which"},
		{name: "empty", input: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, model.NormalizeTitle(tt.input)).Equal(tt.want)
		})
	}
}

func TestDimensionScores_Validate(t *testing.T) {
	gt.NoError(t, model.DimensionScores{Importance: 0, Watchability: 100, Monetization: 50, Popularity: 1, Innovation: 99}.Validate())
	gt.Error(t, model.DimensionScores{Importance: 101}.Validate())
	gt.Error(t, model.DimensionScores{Innovation: -1}.Validate())
}

func TestTopic_Copy(t *testing.T) {
	orig := &model.Topic{Title: "x", Keywords: []string{"a", "b"}}
	c := orig.Copy()
	c.Keywords[0] = "changed"
	gt.Value(t, orig.Keywords[0]).Equal("a")

	var nilTopic *model.Topic
	gt.Value(t, nilTopic.Copy()).Nil()
}

func TestRankTopics(t *testing.T) {
	now := time.Now().UTC()
	topics := []*model.Topic{
		{Title: "low", TotalScore: 40, Timestamp: now},
		{Title: "high old", TotalScore: 80, Timestamp: now.Add(-time.Hour)},
		{Title: "high new", TotalScore: 80, Timestamp: now},
	}

	model.RankTopics(topics)

	gt.Value(t, topics[0].Title).Equal("high new")
	gt.Value(t, topics[1].Title).Equal("high old")
	gt.Value(t, topics[2].Title).Equal("low")
}
