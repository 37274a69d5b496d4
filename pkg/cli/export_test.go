package cli

import (
	"context"

	"github.com/topicscout/topicscout/pkg/usecase"
	"github.com/urfave/cli/v3"
)

var (
	PrintTopics         = printTopics
	PrintAnalytics      = printAnalytics
	PrintResearchResult = printResearchResult
	PrintCompetitors    = printCompetitors
	GetIndexConfig      = getIndexConfig
	Truncate            = truncate
)

// ParseResearchInputForTest runs the research input flags against args
func ParseResearchInputForTest(ctx context.Context, args ...string) (usecase.ResearchInput, error) {
	var input researchInputConfig
	var got usecase.ResearchInput
	cmd := &cli.Command{
		Name:  "test",
		Flags: input.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			got = input.Input()
			return nil
		},
	}
	err := cmd.Run(ctx, append([]string{"test"}, args...))
	return got, err
}
