package cli_test

import (
	"os"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/topicscout/topicscout/pkg/cli"
)

func TestResearchInputFlags(t *testing.T) {
	for _, key := range []string{"TOPICSCOUT_USE_TRENDING", "TOPICSCOUT_USE_AI_IDEAS", "TOPICSCOUT_KEYWORDS"} {
		t.Setenv(key, "")
		gt.NoError(t, os.Unsetenv(key))
	}

	t.Run("trending is off by default", func(t *testing.T) {
		input, err := cli.ParseResearchInputForTest(t.Context())
		gt.NoError(t, err).Required()
		gt.Bool(t, input.UseTrending).False()
		gt.Bool(t, input.UseAIGeneration).True()
		gt.Array(t, input.Keywords).Length(0)
	})

	t.Run("trending when requested", func(t *testing.T) {
		input, err := cli.ParseResearchInputForTest(t.Context(), "--trending", "--ai-ideas=false", "-k", "golang", "-k", "rust")
		gt.NoError(t, err).Required()
		gt.Bool(t, input.UseTrending).True()
		gt.Bool(t, input.UseAIGeneration).False()
		gt.Array(t, input.Keywords).Equal([]string{"golang", "rust"})
	})
}
