package model

import "time"

// VideoSummary is a read-only view of a video returned by the video platform
type VideoSummary struct {
	ID           string
	Title        string
	Description  string
	ChannelID    string
	ChannelTitle string
	ViewCount    uint64
	LikeCount    uint64
	CommentCount uint64
	PublishedAt  time.Time
	Tags         []string
}

// ChannelInfo describes a channel on the video platform
type ChannelInfo struct {
	ID                string
	Title             string
	SubscriberCount   uint64
	VideoCount        uint64
	ViewCount         uint64
	UploadsPlaylistID string
}

// ChannelContext describes the target channel that topics are evaluated for
type ChannelContext struct {
	ChannelID       string
	Title           string
	SubscriberCount uint64
	AvgViews        float64
	Niche           string
	RecentThemes    []string
	RegionCode      string
	CategoryID      string
	VideosAnalyzed  int
}

// EngagementRate is likes plus comments per hundred views, 0 without views
func (v VideoSummary) EngagementRate() float64 {
	if v.ViewCount == 0 {
		return 0
	}
	return float64(v.LikeCount+v.CommentCount) / float64(v.ViewCount) * 100
}
