package model

// Analytics aggregates sessions and topics over a time window
type Analytics struct {
	Days                int     `json:"days"`
	TotalSessions       int     `json:"total_sessions"`
	TopicsResearched    int     `json:"topics_researched"`
	HighQualityTopics   int     `json:"high_quality_topics"`
	AvgScore            float64 `json:"avg_score"`
	TotalDuration       float64 `json:"total_duration"`
	AvgTopicsPerSession float64 `json:"avg_topics_per_session"`
	FavoriteCount       int     `json:"favorite_count"`
}
