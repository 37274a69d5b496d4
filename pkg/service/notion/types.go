package notion

import (
	"context"

	"github.com/topicscout/topicscout/pkg/domain/model"
)

// Service publishes researched topics to a Notion content calendar database
type Service interface {
	// PublishTopic creates one page for the topic and returns its URL
	PublishTopic(ctx context.Context, databaseID string, topic *model.Topic) (string, error)
}

// Database property names. The target database must define them with the
// listed types.
const (
	PropertyTitle       = "Name"        // title
	PropertyScore       = "Score"       // number
	PropertyCategory    = "Category"    // select
	PropertyCompetition = "Competition" // select
	PropertyKeywords    = "Keywords"    // multi_select
	PropertyAngle       = "Angle"       // rich_text
	PropertySource      = "Source"      // select
)
