package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/topicscout/topicscout/pkg/domain/model"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Topics"

// Columns is the header row shared by every export format
var Columns = []string{
	"id",
	"title",
	"total_score",
	"importance",
	"watchability",
	"monetization",
	"popularity",
	"innovation",
	"category",
	"keywords",
	"recommended_angle",
	"competition_level",
	"source",
	"favorited",
	"timestamp",
}

// Row renders a topic in column order
func Row(t *model.Topic) []string {
	return []string{
		t.ID.String(),
		t.Title,
		strconv.FormatFloat(t.TotalScore, 'f', -1, 64),
		strconv.Itoa(t.Scores.Importance),
		strconv.Itoa(t.Scores.Watchability),
		strconv.Itoa(t.Scores.Monetization),
		strconv.Itoa(t.Scores.Popularity),
		strconv.Itoa(t.Scores.Innovation),
		t.Category,
		strings.Join(t.Keywords, "|"),
		t.RecommendedAngle,
		t.CompetitionLevel.String(),
		t.Source.String(),
		strconv.FormatBool(t.Favorited),
		t.Timestamp.UTC().Format(time.RFC3339),
	}
}

// Write encodes topics in format to w
func Write(w io.Writer, format Format, topics []*model.Topic) error {
	switch format {
	case FormatXLSX:
		return WriteXLSX(w, topics)
	case FormatCSV, "":
		return WriteCSV(w, topics)
	default:
		return goerr.Wrap(model.ErrInvalidConfig, "unsupported export format", goerr.V("format", format))
	}
}

func WriteCSV(w io.Writer, topics []*model.Topic) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return goerr.Wrap(err, "failed to write CSV header")
	}
	for _, t := range topics {
		if err := cw.Write(Row(t)); err != nil {
			return goerr.Wrap(err, "failed to write CSV row", goerr.V(model.TopicIDKey, t.ID))
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return goerr.Wrap(err, "failed to flush CSV")
	}
	return nil
}

// WriteXLSX writes a single-sheet workbook. Score columns are stored as
// numbers so they can be sorted in a spreadsheet.
func WriteXLSX(w io.Writer, topics []*model.Topic) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return goerr.Wrap(err, "failed to rename sheet")
	}

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return goerr.Wrap(err, "failed to write header row")
	}

	for i, t := range topics {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return goerr.Wrap(err, "failed to compute cell name", goerr.V("row", i+2))
		}
		row := []any{
			t.ID.String(),
			t.Title,
			t.TotalScore,
			t.Scores.Importance,
			t.Scores.Watchability,
			t.Scores.Monetization,
			t.Scores.Popularity,
			t.Scores.Innovation,
			t.Category,
			strings.Join(t.Keywords, "|"),
			t.RecommendedAngle,
			t.CompetitionLevel.String(),
			t.Source.String(),
			t.Favorited,
			t.Timestamp.UTC().Format(time.RFC3339),
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return goerr.Wrap(err, "failed to write topic row", goerr.V(model.TopicIDKey, t.ID))
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return goerr.Wrap(err, "failed to write workbook")
	}
	return nil
}
