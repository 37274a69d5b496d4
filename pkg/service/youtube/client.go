package youtube

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/topicscout/topicscout/pkg/domain/interfaces"
	"github.com/topicscout/topicscout/pkg/domain/model"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// maxPageSize is the largest page the Data API returns for list calls
const maxPageSize = 50

// Client reads videos and channels from the YouTube Data API v3
type Client struct {
	svc *youtube.Service
}

var _ interfaces.VideoSource = (*Client)(nil)

// New creates a client authenticated with an API key. Extra client options
// are appended, which lets tests point the client at a local endpoint.
func New(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, goerr.New("YouTube API key is required")
	}

	svc, err := youtube.NewService(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create YouTube service")
	}
	return &Client{svc: svc}, nil
}

// Search runs a keyword search and returns the matching videos with their
// statistics and tags.
func (c *Client) Search(ctx context.Context, query string, maxResults int, order string) ([]model.VideoSummary, error) {
	call := c.svc.Search.List([]string{"id"}).
		Q(query).
		Type("video").
		MaxResults(pageSize(maxResults)).
		Context(ctx)
	if order != "" {
		call = call.Order(order)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, wrapError(err, "failed to search videos", goerr.V("query", query))
	}

	ids := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id != nil && item.Id.VideoId != "" {
			ids = append(ids, item.Id.VideoId)
		}
	}
	return c.videos(ctx, ids)
}

// Trending returns the most popular videos of a region, optionally limited
// to one video category.
func (c *Client) Trending(ctx context.Context, regionCode, categoryID string, maxResults int) ([]model.VideoSummary, error) {
	call := c.svc.Videos.List([]string{"snippet", "statistics"}).
		Chart("mostPopular").
		MaxResults(pageSize(maxResults)).
		Context(ctx)
	if regionCode != "" {
		call = call.RegionCode(regionCode)
	}
	if categoryID != "" {
		call = call.VideoCategoryId(categoryID)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, wrapError(err, "failed to get trending videos", goerr.V("region", regionCode))
	}

	out := make([]model.VideoSummary, 0, len(resp.Items))
	for _, v := range resp.Items {
		out = append(out, toSummary(v))
	}
	return out, nil
}

// ChannelVideos returns the channel's uploads published within sinceDays,
// newest first. sinceDays <= 0 disables the window.
func (c *Client) ChannelVideos(ctx context.Context, channelID string, maxResults, sinceDays int) ([]model.VideoSummary, error) {
	info, err := c.ChannelInfo(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if info.UploadsPlaylistID == "" {
		return nil, nil
	}

	resp, err := c.svc.PlaylistItems.List([]string{"contentDetails"}).
		PlaylistId(info.UploadsPlaylistID).
		MaxResults(pageSize(maxResults)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, wrapError(err, "failed to list channel uploads", goerr.V("channel_id", channelID))
	}

	var cutoff time.Time
	if sinceDays > 0 {
		cutoff = time.Now().UTC().AddDate(0, 0, -sinceDays)
	}

	ids := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.ContentDetails == nil || item.ContentDetails.VideoId == "" {
			continue
		}
		if !cutoff.IsZero() {
			published, err := time.Parse(time.RFC3339, item.ContentDetails.VideoPublishedAt)
			if err == nil && published.Before(cutoff) {
				continue
			}
		}
		ids = append(ids, item.ContentDetails.VideoId)
	}
	return c.videos(ctx, ids)
}

// ChannelInfo returns the channel's title, statistics and uploads playlist.
func (c *Client) ChannelInfo(ctx context.Context, channelID string) (*model.ChannelInfo, error) {
	resp, err := c.svc.Channels.List([]string{"snippet", "statistics", "contentDetails"}).
		Id(channelID).
		Context(ctx).
		Do()
	if err != nil {
		return nil, wrapError(err, "failed to get channel", goerr.V("channel_id", channelID))
	}
	if len(resp.Items) == 0 {
		return nil, goerr.Wrap(model.ErrSourceUnavailable, "channel not found", goerr.V("channel_id", channelID))
	}

	ch := resp.Items[0]
	info := &model.ChannelInfo{ID: ch.Id}
	if ch.Snippet != nil {
		info.Title = ch.Snippet.Title
	}
	if ch.Statistics != nil {
		info.SubscriberCount = ch.Statistics.SubscriberCount
		info.VideoCount = ch.Statistics.VideoCount
		info.ViewCount = ch.Statistics.ViewCount
	}
	if ch.ContentDetails != nil && ch.ContentDetails.RelatedPlaylists != nil {
		info.UploadsPlaylistID = ch.ContentDetails.RelatedPlaylists.Uploads
	}
	return info, nil
}

// videos fetches details for ids, keeping the order of ids.
func (c *Client) videos(ctx context.Context, ids []string) ([]model.VideoSummary, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	resp, err := c.svc.Videos.List([]string{"snippet", "statistics"}).
		Id(ids...).
		Context(ctx).
		Do()
	if err != nil {
		return nil, wrapError(err, "failed to get video details", goerr.V("count", len(ids)))
	}

	byID := make(map[string]*youtube.Video, len(resp.Items))
	for _, v := range resp.Items {
		byID[v.Id] = v
	}

	out := make([]model.VideoSummary, 0, len(ids))
	for _, id := range ids {
		if v, ok := byID[id]; ok {
			out = append(out, toSummary(v))
		}
	}
	return out, nil
}

func toSummary(v *youtube.Video) model.VideoSummary {
	s := model.VideoSummary{ID: v.Id}
	if v.Snippet != nil {
		s.Title = v.Snippet.Title
		s.Description = v.Snippet.Description
		s.ChannelID = v.Snippet.ChannelId
		s.ChannelTitle = v.Snippet.ChannelTitle
		s.Tags = v.Snippet.Tags
		if t, err := time.Parse(time.RFC3339, v.Snippet.PublishedAt); err == nil {
			s.PublishedAt = t.UTC()
		}
	}
	if v.Statistics != nil {
		s.ViewCount = v.Statistics.ViewCount
		s.LikeCount = v.Statistics.LikeCount
		s.CommentCount = v.Statistics.CommentCount
	}
	return s
}

func pageSize(n int) int64 {
	if n <= 0 || n > maxPageSize {
		return maxPageSize
	}
	return int64(n)
}

// wrapError marks every API failure as ErrSourceUnavailable and keeps the
// HTTP status for logging.
func wrapError(err error, msg string, opts ...goerr.Option) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		opts = append(opts, goerr.V("status", apiErr.Code))
		if apiErr.Code == http.StatusForbidden || apiErr.Code == http.StatusTooManyRequests {
			opts = append(opts, goerr.V("quota", true))
		}
	}
	opts = append(opts, goerr.V("cause", err.Error()))
	return goerr.Wrap(model.ErrSourceUnavailable, msg, opts...)
}
