package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"
	"github.com/topicscout/topicscout/pkg/domain/interfaces"
	"github.com/topicscout/topicscout/pkg/domain/model"
	"github.com/topicscout/topicscout/pkg/utils/safe"
)

const (
	collectionTopics   = "topics"
	collectionSessions = "sessions"
)

// document is the on-disk layout: one JSON object per collection, keyed by record id
type document struct {
	Topics   map[string]*topicRecord   `json:"topics"`
	Sessions map[string]*sessionRecord `json:"sessions"`
}

// Store is a single-file JSON document store. All writes are serialized and
// replace the file atomically; reads run concurrently.
type Store struct {
	mu   sync.RWMutex
	path string
	doc  *document

	topic   *topicRepository
	session *sessionRepository
}

var _ interfaces.Repository = &Store{}

// New opens the store at path, creating an empty one when the file does not
// exist. Content that is not a valid document fails with
// model.ErrStorageCorruption.
func New(ctx context.Context, path string) (*Store, error) {
	doc, err := load(path)
	if err != nil {
		return nil, err
	}

	s := &Store{path: path, doc: doc}
	s.topic = &topicRepository{store: s}
	s.session = &sessionRepository{store: s}
	return s, nil
}

func (s *Store) Topic() interfaces.TopicRepository {
	return s.topic
}

func (s *Store) Session() interfaces.SessionRepository {
	return s.session
}

func (s *Store) Close() error {
	return nil
}

func load(path string) (*document, error) {
	doc := &document{
		Topics:   map[string]*topicRecord{},
		Sessions: map[string]*sessionRecord{},
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read store file", goerr.V(model.PathKey, path))
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return doc, nil
	}

	if !utf8.Valid(raw) {
		return nil, goerr.Wrap(model.ErrStorageCorruption, "store file is not valid UTF-8",
			goerr.V(model.PathKey, path))
	}

	var collections map[string]json.RawMessage
	if err := json.Unmarshal(raw, &collections); err != nil {
		opts := []goerr.Option{goerr.V(model.PathKey, path), goerr.V("cause", err.Error())}
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			opts = append(opts, goerr.V("offset", syntaxErr.Offset))
		}
		return nil, goerr.Wrap(model.ErrStorageCorruption, "store file is not a JSON object", opts...)
	}

	if err := decodeCollection(path, collections, collectionTopics, &doc.Topics); err != nil {
		return nil, err
	}
	if err := decodeCollection(path, collections, collectionSessions, &doc.Sessions); err != nil {
		return nil, err
	}

	for id, rec := range doc.Topics {
		if rec == nil {
			return nil, goerr.Wrap(model.ErrStorageCorruption, "null topic record",
				goerr.V(model.PathKey, path), goerr.V(model.TopicIDKey, id))
		}
		rec.ID = id
	}
	for id, rec := range doc.Sessions {
		if rec == nil {
			return nil, goerr.Wrap(model.ErrStorageCorruption, "null session record",
				goerr.V(model.PathKey, path), goerr.V(model.SessionIDKey, id))
		}
		rec.ID = id
	}

	return doc, nil
}

// decodeCollection requires the collection to be an id-keyed object.
func decodeCollection[T any](path string, collections map[string]json.RawMessage, name string, dst *map[string]*T) error {
	raw, ok := collections[name]
	if !ok {
		return nil
	}
	trimmed := bytes.TrimSpace(raw)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return goerr.Wrap(model.ErrStorageCorruption, "collection must be an object keyed by record id",
			goerr.V(model.PathKey, path), goerr.V(model.CollectionKey, name))
	}

	records := map[string]*T{}
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return goerr.Wrap(model.ErrStorageCorruption, "malformed record in collection",
			goerr.V(model.PathKey, path), goerr.V(model.CollectionKey, name), goerr.V("cause", err.Error()))
	}
	*dst = records
	return nil
}

// update applies fn under the write lock and persists the result. The
// in-memory document is left untouched when fn or the write fails.
func (s *Store) update(ctx context.Context, fn func(doc *document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.doc.clone()
	if err := fn(next); err != nil {
		return err
	}
	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.doc = next
	return nil
}

func (s *Store) view(fn func(doc *document)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.doc)
}

func (s *Store) persist(ctx context.Context, doc *document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to encode store document")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return goerr.Wrap(err, "failed to create store directory", goerr.V(model.PathKey, dir))
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return goerr.Wrap(err, "failed to create temp file", goerr.V(model.PathKey, s.path))
	}
	tmpPath := tmp.Name()
	defer safe.Remove(ctx, tmpPath)

	if _, err := tmp.Write(data); err != nil {
		safe.Close(ctx, tmp)
		return goerr.Wrap(err, "failed to write temp file", goerr.V(model.PathKey, tmpPath))
	}
	if err := tmp.Sync(); err != nil {
		safe.Close(ctx, tmp)
		return goerr.Wrap(err, "failed to sync temp file", goerr.V(model.PathKey, tmpPath))
	}
	if err := tmp.Close(); err != nil {
		return goerr.Wrap(err, "failed to close temp file", goerr.V(model.PathKey, tmpPath))
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return goerr.Wrap(err, "failed to replace store file", goerr.V(model.PathKey, s.path))
	}
	return nil
}

// clone copies the maps only. Update functions replace records, never mutate them.
func (d *document) clone() *document {
	c := &document{
		Topics:   make(map[string]*topicRecord, len(d.Topics)),
		Sessions: make(map[string]*sessionRecord, len(d.Sessions)),
	}
	for id, rec := range d.Topics {
		c.Topics[id] = rec
	}
	for id, rec := range d.Sessions {
		c.Sessions[id] = rec
	}
	return c
}
