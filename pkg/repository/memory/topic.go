package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/topicscout/topicscout/pkg/domain/interfaces"
	"github.com/topicscout/topicscout/pkg/domain/model"
)

type topicRepository struct {
	mu     sync.RWMutex
	topics map[model.TopicID]*model.Topic
}

func newTopicRepository() *topicRepository {
	return &topicRepository{
		topics: make(map[model.TopicID]*model.Topic),
	}
}

func (r *topicRepository) Create(ctx context.Context, topic *model.Topic) (*model.Topic, error) {
	if err := topic.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid topic")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	created := topic.Copy()
	if created.ID == "" {
		created.ID = model.NewTopicID()
	}
	if created.Timestamp.IsZero() {
		created.Timestamp = time.Now()
	}
	created.Timestamp = created.Timestamp.UTC()

	r.topics[created.ID] = created
	return created.Copy(), nil
}

func (r *topicRepository) Get(ctx context.Context, id model.TopicID) (*model.Topic, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	topic, exists := r.topics[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "topic not found", goerr.V(model.TopicIDKey, id))
	}
	return topic.Copy(), nil
}

func (r *topicRepository) List(ctx context.Context, opts ...interfaces.ListTopicOption) ([]*model.Topic, error) {
	cfg := interfaces.BuildListTopicConfig(opts...)

	r.mu.RLock()
	result := make([]*model.Topic, 0, len(r.topics))
	for _, t := range r.topics {
		if cfg.Match(t) {
			result = append(result, t.Copy())
		}
	}
	r.mu.RUnlock()

	return cfg.Apply(result), nil
}

func (r *topicRepository) ToggleFavorite(ctx context.Context, id model.TopicID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	topic, exists := r.topics[id]
	if !exists {
		return false, goerr.Wrap(model.ErrNotFound, "topic not found", goerr.V(model.TopicIDKey, id))
	}
	topic.Favorited = !topic.Favorited
	return topic.Favorited, nil
}

func (r *topicRepository) CountFavorites(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, t := range r.topics {
		if t.Favorited {
			count++
		}
	}
	return count, nil
}
