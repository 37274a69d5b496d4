package interfaces

import (
	"context"

	"github.com/topicscout/topicscout/pkg/domain/model"
)

// VideoSource is the video platform the discovery aggregator reads from.
// Failures are reported wrapping model.ErrSourceUnavailable.
type VideoSource interface {
	Search(ctx context.Context, query string, maxResults int, order string) ([]model.VideoSummary, error)
	Trending(ctx context.Context, regionCode, categoryID string, maxResults int) ([]model.VideoSummary, error)
	ChannelVideos(ctx context.Context, channelID string, maxResults, sinceDays int) ([]model.VideoSummary, error)
	ChannelInfo(ctx context.Context, channelID string) (*model.ChannelInfo, error)
}

// TrendSource provides current headlines used as trend context for evaluation
type TrendSource interface {
	Headlines(ctx context.Context, limit int) ([]string, error)
}
