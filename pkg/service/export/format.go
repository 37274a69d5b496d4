package export

import (
	"path"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/topicscout/topicscout/pkg/domain/model"
)

// Format is an export file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat parses a format name. An empty name is inferred from the
// destination's extension, falling back to CSV.
func ParseFormat(name, dest string) (Format, error) {
	if name == "" {
		name = strings.TrimPrefix(strings.ToLower(path.Ext(dest)), ".")
		if name == "" {
			return FormatCSV, nil
		}
	}

	switch f := Format(strings.ToLower(name)); f {
	case FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", goerr.Wrap(model.ErrInvalidConfig, "unsupported export format", goerr.V("format", name))
	}
}

// ContentType returns the MIME type used when uploading the format
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}
