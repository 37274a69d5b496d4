package export

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/topicscout/topicscout/pkg/domain/model"
	"github.com/topicscout/topicscout/pkg/utils/safe"
)

const gcsScheme = "gs://"

// Sink stores an encoded export at a destination: "-" for stdout, a
// gs://bucket/object URL, or a local file path.
type Sink struct {
	stdout io.Writer
	gcs    *storage.Client
}

// SinkOption is a functional option for Sink configuration
type SinkOption func(*Sink)

// WithStdout replaces the writer used for the "-" destination
func WithStdout(w io.Writer) SinkOption {
	return func(s *Sink) {
		s.stdout = w
	}
}

// WithStorageClient sets the Cloud Storage client used for gs:// URLs.
// Without it a client is created on first use with default credentials.
func WithStorageClient(client *storage.Client) SinkOption {
	return func(s *Sink) {
		s.gcs = client
	}
}

func NewSink(opts ...SinkOption) *Sink {
	s := &Sink{stdout: os.Stdout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save encodes topics and writes them to dest
func (s *Sink) Save(ctx context.Context, dest string, format Format, topics []*model.Topic) error {
	var buf bytes.Buffer
	if err := Write(&buf, format, topics); err != nil {
		return err
	}

	switch {
	case dest == "-":
		if _, err := s.stdout.Write(buf.Bytes()); err != nil {
			return goerr.Wrap(err, "failed to write export to stdout")
		}
		return nil

	case strings.HasPrefix(dest, gcsScheme):
		return s.upload(ctx, dest, format, buf.Bytes())

	default:
		return writeFile(dest, buf.Bytes())
	}
}

func (s *Sink) upload(ctx context.Context, dest string, format Format, data []byte) error {
	bucket, object, err := ParseGCSURL(dest)
	if err != nil {
		return err
	}

	client := s.gcs
	if client == nil {
		client, err = storage.NewClient(ctx)
		if err != nil {
			return goerr.Wrap(err, "failed to create storage client")
		}
		defer safe.Close(ctx, client)
	}

	w := client.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = format.ContentType()
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to upload export", goerr.V(model.PathKey, dest))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finish export upload", goerr.V(model.PathKey, dest))
	}
	return nil
}

// ParseGCSURL splits gs://bucket/object into its parts
func ParseGCSURL(url string) (string, string, error) {
	rest, ok := strings.CutPrefix(url, gcsScheme)
	if !ok {
		return "", "", goerr.Wrap(model.ErrInvalidConfig, "not a gs:// URL", goerr.V(model.PathKey, url))
	}
	bucket, object, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", goerr.Wrap(model.ErrInvalidConfig, "gs:// URL needs a bucket and an object", goerr.V(model.PathKey, url))
	}
	return bucket, object, nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return goerr.Wrap(err, "failed to create export directory", goerr.V(model.PathKey, dir))
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return goerr.Wrap(err, "failed to write export file", goerr.V(model.PathKey, path))
	}
	return nil
}
