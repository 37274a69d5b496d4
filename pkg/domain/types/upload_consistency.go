package types

// UploadConsistency buckets how often a channel publishes
type UploadConsistency string

const (
	UploadDaily      UploadConsistency = "daily"
	UploadFrequent   UploadConsistency = "frequent"
	UploadWeekly     UploadConsistency = "weekly"
	UploadOccasional UploadConsistency = "occasional"
	UploadUnknown    UploadConsistency = "unknown"
)

// UploadConsistencyOf buckets a videos-per-week rate. Daily starts at 7,
// frequent at 3 and weekly at 1.
func UploadConsistencyOf(videosPerWeek float64) UploadConsistency {
	switch {
	case videosPerWeek >= 7:
		return UploadDaily
	case videosPerWeek >= 3:
		return UploadFrequent
	case videosPerWeek >= 1:
		return UploadWeekly
	case videosPerWeek > 0:
		return UploadOccasional
	default:
		return UploadUnknown
	}
}

func (c UploadConsistency) String() string {
	return string(c)
}
