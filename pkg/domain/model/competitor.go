package model

import "github.com/topicscout/topicscout/pkg/domain/types"

// UploadFrequency is how often a channel published within the analyzed window
type UploadFrequency struct {
	VideosPerWeek float64                 `json:"videos_per_week"`
	Consistency   types.UploadConsistency `json:"consistency"`
}

// FormatPerformance is the average reach of one title format
type FormatPerformance struct {
	Format   string  `json:"format"`
	AvgViews float64 `json:"avg_views"`
	Count    int     `json:"count"`
}

// TopVideo is one of a competitor's best performing recent uploads
type TopVideo struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	ViewCount      uint64  `json:"view_count"`
	EngagementRate float64 `json:"engagement_rate"`
}

// CompetitorAnalysis summarizes a competitor channel's recent uploads
type CompetitorAnalysis struct {
	ChannelID         string            `json:"channel_id"`
	ChannelTitle      string            `json:"channel_title"`
	SubscriberCount   uint64            `json:"subscriber_count"`
	VideoCount        uint64            `json:"video_count"`
	ViewCount         uint64            `json:"view_count"`
	RecentVideos      int               `json:"recent_videos"`
	AvgViews          float64           `json:"avg_views"`
	MedianViews       float64           `json:"median_views"`
	AvgEngagementRate float64           `json:"avg_engagement_rate"`
	TopVideos         []TopVideo        `json:"top_videos"`
	Themes            []string          `json:"content_themes"`
	UploadFrequency   UploadFrequency   `json:"upload_frequency"`
	BestFormat        FormatPerformance `json:"best_performing_format"`
}

// CompetitorComparison ranks several competitor channels against each other.
// The leader fields hold channel titles.
type CompetitorComparison struct {
	Competitors        []*CompetitorAnalysis `json:"competitors"`
	BestEngagement     string                `json:"best_engagement"`
	MostViews          string                `json:"most_views"`
	MostFrequent       string                `json:"most_frequent"`
	AvgSubscriberCount float64               `json:"avg_subscriber_count"`
	CommonThemes       []string              `json:"common_themes"`
	Failed             []string              `json:"failed_channel_ids,omitempty"`
}
