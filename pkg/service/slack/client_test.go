package slack_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/topicscout/topicscout/pkg/service/slack"

	goslack "github.com/slack-go/slack"
)

func TestNew(t *testing.T) {
	t.Run("returns error when token is empty", func(t *testing.T) {
		_, err := slack.New("")
		gt.Value(t, err).NotNil()
	})

	t.Run("creates service when token is provided", func(t *testing.T) {
		svc, err := slack.New("test-token")
		gt.NoError(t, err).Required()
		gt.Value(t, svc).NotNil()
	})
}

func TestPostMessage(t *testing.T) {
	var (
		gotChannel string
		gotText    string
		gotBlocks  string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.NoError(t, r.ParseForm())
		gotChannel = r.FormValue("channel")
		gotText = r.FormValue("text")
		gotBlocks = r.FormValue("blocks")

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "channel": gotChannel, "ts": "1700000000.000100"})
	}))
	defer srv.Close()

	svc, err := slack.New("test-token", slack.WithAPIURL(srv.URL+"/"))
	gt.NoError(t, err).Required()

	blocks := []goslack.Block{
		goslack.NewSectionBlock(goslack.NewTextBlockObject(goslack.MarkdownType, "*hello*", false, false), nil, nil),
	}
	ts, err := svc.PostMessage(context.Background(), "C123", blocks, "hello")
	gt.NoError(t, err).Required()
	gt.Value(t, ts).Equal("1700000000.000100")
	gt.Value(t, gotChannel).Equal("C123")
	gt.Value(t, gotText).Equal("hello")
	gt.String(t, gotBlocks).Contains("*hello*")
}

func TestPostMessageError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":false,"error":"channel_not_found"}`))
	}))
	defer srv.Close()

	svc, err := slack.New("test-token", slack.WithAPIURL(srv.URL+"/"))
	gt.NoError(t, err).Required()

	_, err = svc.PostMessage(context.Background(), "C404", nil, "hello")
	gt.Error(t, err)
}

func TestIntegration(t *testing.T) {
	token := os.Getenv("TEST_SLACK_BOT_TOKEN")
	channelID := os.Getenv("TEST_SLACK_CHANNEL_ID")
	if token == "" || channelID == "" {
		t.Skip("TEST_SLACK_BOT_TOKEN or TEST_SLACK_CHANNEL_ID is not set")
	}

	svc, err := slack.New(token)
	gt.NoError(t, err).Required()

	ts, err := svc.PostMessage(context.Background(), channelID, nil, "topicscout integration test")
	gt.NoError(t, err).Required()
	gt.String(t, ts).NotEqual("")
}
