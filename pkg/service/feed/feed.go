package feed

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/m-mizutani/goerr/v2"
	"github.com/mmcdole/gofeed"
	"github.com/topicscout/topicscout/pkg/domain/interfaces"
	"github.com/topicscout/topicscout/pkg/domain/model"
	"github.com/topicscout/topicscout/pkg/utils/logging"
	"github.com/topicscout/topicscout/pkg/utils/safe"
)

// DefaultTimeout bounds a single feed download
const DefaultTimeout = 15 * time.Second

// Reader collects headlines from RSS and Atom feeds
type Reader struct {
	client *http.Client
	feeds  []string
}

var _ interfaces.TrendSource = (*Reader)(nil)

// Option is a functional option for Reader configuration
type Option func(*Reader)

// WithHTTPClient replaces the HTTP client used to download feeds
func WithHTTPClient(client *http.Client) Option {
	return func(r *Reader) {
		r.client = client
	}
}

func New(feeds []string, opts ...Option) *Reader {
	r := &Reader{
		client: &http.Client{Timeout: DefaultTimeout},
		feeds:  feeds,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Headlines returns up to limit unique headlines, walking the feeds in the
// configured order. Feeds that fail are skipped; the call fails only when
// every feed failed.
func (r *Reader) Headlines(ctx context.Context, limit int) ([]string, error) {
	if len(r.feeds) == 0 || limit <= 0 {
		return nil, nil
	}

	logger := logging.From(ctx)
	parser := gofeed.NewParser()
	seen := map[string]struct{}{}
	var (
		out     []string
		lastErr error
		failed  int
	)

	for _, url := range r.feeds {
		if len(out) >= limit {
			break
		}

		feed, err := r.fetch(ctx, parser, url)
		if err != nil {
			failed++
			lastErr = err
			logger.Warn("failed to read feed", "url", url, "error", err)
			continue
		}

		for _, item := range feed.Items {
			if len(out) >= limit {
				break
			}
			title := plainText(item.Title)
			key := model.NormalizeTitle(title)
			if key == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, title)
		}
	}

	if failed == len(r.feeds) {
		return nil, goerr.Wrap(model.ErrSourceUnavailable, "all feeds failed",
			goerr.V("feeds", len(r.feeds)), goerr.V("cause", lastErr.Error()))
	}
	return out, nil
}

func (r *Reader) fetch(ctx context.Context, parser *gofeed.Parser, url string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build feed request", goerr.V("url", url))
	}
	req.Header.Set("User-Agent", "topicscout/1.0")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to download feed", goerr.V("url", url))
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("unexpected feed status", goerr.V("url", url), goerr.V("status", resp.StatusCode))
	}

	feed, err := parser.Parse(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse feed", goerr.V("url", url))
	}
	return feed, nil
}

// plainText strips markup that some feeds leave in titles.
func plainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
