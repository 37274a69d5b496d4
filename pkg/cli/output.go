package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/topicscout/topicscout/pkg/domain/model"
	"github.com/topicscout/topicscout/pkg/usecase"
)

var (
	highScore = color.New(color.FgGreen, color.Bold)
	midScore  = color.New(color.FgYellow)
	lowScore  = color.New(color.FgRed)
	heading   = color.New(color.Bold)
)

// Score bands of the colored score column
const (
	highScoreBand = 80.0
	midScoreBand  = 60.0
)

func scoreText(score float64) string {
	s := fmt.Sprintf("%.2f", score)
	switch {
	case score >= highScoreBand:
		return highScore.Sprint(s)
	case score >= midScoreBand:
		return midScore.Sprint(s)
	default:
		return lowScore.Sprint(s)
	}
}

// printTopics renders a ranked table. The colored score is the last column
// so escape sequences do not disturb the alignment.
func printTopics(w io.Writer, topics []*model.Topic) {
	if len(topics) == 0 {
		fmt.Fprintln(w, "No topics found")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tID\tCATEGORY\tCOMPETITION\tFAV\tTITLE\tSCORE")
	for i, t := range topics {
		fav := ""
		if t.Favorited {
			fav = "*"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			i+1, t.ID, t.Category, t.CompetitionLevel, fav, truncate(t.Title, 60), scoreText(t.TotalScore))
	}
	_ = tw.Flush()
}

func printResearchResult(w io.Writer, result *usecase.ResearchResult) {
	s := result.Session
	if s != nil {
		fmt.Fprintf(w, "%s %s  status=%s  evaluated=%d  saved=%d  skipped=%d  failed=%d  duration=%.1fs\n",
			heading.Sprint("Session"), s.ID, s.Status, s.TopicsResearched, s.HighQualityCount,
			s.SkippedCount, s.FailedCount, s.DurationSeconds)
	}
	printTopics(w, result.Topics)
	if n := len(result.Rejected); n > 0 {
		fmt.Fprintf(w, "%d topic(s) scored below the threshold and were not saved\n", n)
	}
}

func printAnalytics(w io.Writer, a *model.Analytics) {
	window := "all time"
	if a.Days > 0 {
		window = fmt.Sprintf("last %d days", a.Days)
	}

	fmt.Fprintln(w, heading.Sprintf("Analytics (%s)", window))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Sessions\t%d\n", a.TotalSessions)
	fmt.Fprintf(tw, "Topics researched\t%d\n", a.TopicsResearched)
	fmt.Fprintf(tw, "High quality topics\t%d\n", a.HighQualityTopics)
	fmt.Fprintf(tw, "Average topics per session\t%.1f\n", a.AvgTopicsPerSession)
	fmt.Fprintf(tw, "Total duration\t%s\n", time.Duration(a.TotalDuration*float64(time.Second)).Round(time.Second))
	fmt.Fprintf(tw, "Favorites\t%d\n", a.FavoriteCount)
	fmt.Fprintf(tw, "Average score\t%s\n", scoreText(a.AvgScore))
	_ = tw.Flush()
}

func printSessions(w io.Writer, sessions []*model.ResearchSession) {
	if len(sessions) == 0 {
		return
	}

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tSTATUS\tEVALUATED\tSAVED\tSKIPPED\tFAILED\tKEYWORDS")
	for _, s := range sessions {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			s.StartedAt.Local().Format(time.DateTime), s.Status, s.TopicsResearched,
			s.HighQualityCount, s.SkippedCount, s.FailedCount, strings.Join(s.Keywords, ", "))
	}
	_ = tw.Flush()
}

// printCompetitors renders one row per analyzed channel followed by the leaders
func printCompetitors(w io.Writer, c *model.CompetitorComparison) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CHANNEL\tSUBSCRIBERS\tVIDEOS\tAVG VIEWS\tMEDIAN VIEWS\tENGAGEMENT\tUPLOADS/WEEK\tBEST FORMAT")
	for _, a := range c.Competitors {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.0f\t%.0f\t%.2f%%\t%.1f (%s)\t%s\n",
			truncate(a.ChannelTitle, 40), a.SubscriberCount, a.RecentVideos, a.AvgViews, a.MedianViews,
			a.AvgEngagementRate, a.UploadFrequency.VideosPerWeek, a.UploadFrequency.Consistency, a.BestFormat.Format)
	}
	_ = tw.Flush()

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\n", heading.Sprint("Most views"), c.MostViews)
	fmt.Fprintf(tw, "%s\t%s\n", heading.Sprint("Best engagement"), c.BestEngagement)
	fmt.Fprintf(tw, "%s\t%s\n", heading.Sprint("Most frequent"), c.MostFrequent)
	fmt.Fprintf(tw, "%s\t%.0f\n", heading.Sprint("Average subscribers"), c.AvgSubscriberCount)
	if len(c.CommonThemes) > 0 {
		fmt.Fprintf(tw, "%s\t%s\n", heading.Sprint("Common themes"), strings.Join(c.CommonThemes, ", "))
	}
	_ = tw.Flush()

	if len(c.Failed) > 0 {
		fmt.Fprintf(w, "Could not analyze: %s\n", strings.Join(c.Failed, ", "))
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
