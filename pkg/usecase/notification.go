package usecase

import (
	"fmt"
	"strings"

	goslack "github.com/slack-go/slack"
)

// summaryTopTopics is how many persisted topics are listed in the summary
const summaryTopTopics = 5

// buildResearchSummaryBlocks constructs Block Kit blocks summarizing a run
func buildResearchSummaryBlocks(result *ResearchResult) []goslack.Block {
	session := result.Session

	blocks := []goslack.Block{
		goslack.NewHeaderBlock(
			goslack.NewTextBlockObject(goslack.PlainTextType, "Topic research finished", true, false),
		),
		goslack.NewSectionBlock(nil, []*goslack.TextBlockObject{
			goslack.NewTextBlockObject(goslack.MarkdownType, "*Status*\n"+session.Status.String(), false, false),
			goslack.NewTextBlockObject(goslack.MarkdownType, fmt.Sprintf("*Evaluated*\n%d", session.TopicsResearched), false, false),
			goslack.NewTextBlockObject(goslack.MarkdownType, fmt.Sprintf("*Saved*\n%d", len(result.Topics)), false, false),
			goslack.NewTextBlockObject(goslack.MarkdownType, fmt.Sprintf("*Skipped / Failed*\n%d / %d", result.Skipped, result.Failed), false, false),
		}, nil),
	}

	if len(result.Topics) > 0 {
		var lines []string
		for i, t := range result.Topics {
			if i == summaryTopTopics {
				break
			}
			lines = append(lines, fmt.Sprintf("%d. *%s* (%.1f, %s)", i+1, t.Title, t.TotalScore, t.Category))
		}
		blocks = append(blocks, goslack.NewSectionBlock(
			goslack.NewTextBlockObject(goslack.MarkdownType, strings.Join(lines, "\n"), false, false),
			nil, nil,
		))
	}

	blocks = append(blocks, goslack.NewContextBlock("",
		goslack.NewTextBlockObject(goslack.MarkdownType,
			fmt.Sprintf("Keywords: %s | %.0fs", keywordSummary(session.Keywords), session.DurationSeconds), false, false),
	))

	return blocks
}
