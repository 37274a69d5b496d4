package youtube_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/topicscout/topicscout/pkg/domain/model"
	"github.com/topicscout/topicscout/pkg/service/youtube"
	"google.golang.org/api/option"
)

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	gt.NoError(t, json.NewEncoder(w).Encode(v))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *youtube.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := youtube.New(context.Background(), "test-key", option.WithEndpoint(srv.URL+"/"))
	gt.NoError(t, err).Required()
	return client
}

var videoDetails = map[string]any{
	"items": []any{
		map[string]any{
			"id": "v2",
			"snippet": map[string]any{
				"title":        "Second video",
				"channelId":    "UC1",
				"channelTitle": "Gopher Lab",
				"publishedAt":  "2025-01-02T03:04:05Z",
				"tags":         []string{"go"},
			},
			"statistics": map[string]any{"viewCount": "200", "likeCount": "15", "commentCount": "5"},
		},
		map[string]any{
			"id":         "v1",
			"snippet":    map[string]any{"title": "First video"},
			"statistics": map[string]any{"viewCount": "100"},
		},
	},
}

func TestSearch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.URL.Query().Get("key")).Equal("test-key")
		switch {
		case strings.HasSuffix(r.URL.Path, "/search"):
			gt.Value(t, r.URL.Query().Get("q")).Equal("golang")
			gt.Value(t, r.URL.Query().Get("order")).Equal("relevance")
			gt.Value(t, r.URL.Query().Get("maxResults")).Equal("10")
			writeJSON(t, w, map[string]any{
				"items": []any{
					map[string]any{"id": map[string]any{"kind": "youtube#video", "videoId": "v1"}},
					map[string]any{"id": map[string]any{"kind": "youtube#video", "videoId": "v2"}},
				},
			})
		case strings.HasSuffix(r.URL.Path, "/videos"):
			writeJSON(t, w, videoDetails)
		default:
			http.NotFound(w, r)
		}
	})

	videos, err := client.Search(context.Background(), "golang", 10, "relevance")
	gt.NoError(t, err).Required()
	gt.Array(t, videos).Length(2).Required()
	gt.Value(t, videos[0].ID).Equal("v1")
	gt.Value(t, videos[0].ViewCount).Equal(uint64(100))
	gt.Value(t, videos[1].Title).Equal("Second video")
	gt.Value(t, videos[1].Tags).Equal([]string{"go"})
	gt.Value(t, videos[1].LikeCount).Equal(uint64(15))
	gt.Value(t, videos[1].CommentCount).Equal(uint64(5))
	gt.Value(t, videos[1].EngagementRate()).Equal(10.0)
	gt.Value(t, videos[1].PublishedAt).Equal(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
}

func TestTrending(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.URL.Query().Get("chart")).Equal("mostPopular")
		gt.Value(t, r.URL.Query().Get("regionCode")).Equal("JP")
		gt.Value(t, r.URL.Query().Get("videoCategoryId")).Equal("28")
		writeJSON(t, w, videoDetails)
	})

	videos, err := client.Trending(context.Background(), "JP", "28", 20)
	gt.NoError(t, err).Required()
	gt.Array(t, videos).Length(2)
}

func TestChannelVideos(t *testing.T) {
	recent := time.Now().UTC().Add(-24 * time.Hour).Format(time.RFC3339)
	old := time.Now().UTC().AddDate(0, 0, -200).Format(time.RFC3339)

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/channels"):
			writeJSON(t, w, map[string]any{
				"items": []any{map[string]any{
					"id":             "UC1",
					"snippet":        map[string]any{"title": "Gopher Lab"},
					"statistics":     map[string]any{"subscriberCount": "1500", "videoCount": "42", "viewCount": "98000"},
					"contentDetails": map[string]any{"relatedPlaylists": map[string]any{"uploads": "UU1"}},
				}},
			})
		case strings.HasSuffix(r.URL.Path, "/playlistItems"):
			gt.Value(t, r.URL.Query().Get("playlistId")).Equal("UU1")
			writeJSON(t, w, map[string]any{
				"items": []any{
					map[string]any{"contentDetails": map[string]any{"videoId": "v2", "videoPublishedAt": recent}},
					map[string]any{"contentDetails": map[string]any{"videoId": "v1", "videoPublishedAt": old}},
				},
			})
		case strings.HasSuffix(r.URL.Path, "/videos"):
			gt.Value(t, r.URL.Query().Get("id")).Equal("v2")
			writeJSON(t, w, videoDetails)
		default:
			http.NotFound(w, r)
		}
	})

	info, err := client.ChannelInfo(context.Background(), "UC1")
	gt.NoError(t, err).Required()
	gt.Value(t, info.Title).Equal("Gopher Lab")
	gt.Value(t, info.SubscriberCount).Equal(uint64(1500))
	gt.Value(t, info.VideoCount).Equal(uint64(42))
	gt.Value(t, info.ViewCount).Equal(uint64(98000))
	gt.Value(t, info.UploadsPlaylistID).Equal("UU1")

	videos, err := client.ChannelVideos(context.Background(), "UC1", 20, 90)
	gt.NoError(t, err).Required()
	gt.Array(t, videos).Length(1).Required()
	gt.Value(t, videos[0].ID).Equal("v2")
}

func TestAPIErrorIsSourceUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"quota exceeded","errors":[{"reason":"quotaExceeded"}]}}`))
	})

	_, err := client.Search(context.Background(), "golang", 5, "")
	gt.Error(t, err).Is(model.ErrSourceUnavailable)

	_, err = client.ChannelInfo(context.Background(), "UC1")
	gt.Error(t, err).Is(model.ErrSourceUnavailable)
}

func TestUnknownChannel(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"items": []any{}})
	})

	_, err := client.ChannelInfo(context.Background(), "missing")
	gt.Error(t, err).Is(model.ErrSourceUnavailable)
}

func TestNewRequiresKey(t *testing.T) {
	_, err := youtube.New(context.Background(), "")
	gt.Error(t, err)
}
