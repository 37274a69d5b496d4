package file

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/topicscout/topicscout/pkg/domain/interfaces"
	"github.com/topicscout/topicscout/pkg/domain/model"
)

type topicRepository struct {
	store *Store
}

func (r *topicRepository) Create(ctx context.Context, topic *model.Topic) (*model.Topic, error) {
	if err := topic.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid topic")
	}

	created := topic.Copy()
	if created.ID == "" {
		created.ID = model.NewTopicID()
	}
	if created.Timestamp.IsZero() {
		created.Timestamp = time.Now()
	}
	created.Timestamp = created.Timestamp.UTC()

	if err := r.store.update(ctx, func(doc *document) error {
		doc.Topics[string(created.ID)] = toTopicRecord(created)
		return nil
	}); err != nil {
		return nil, goerr.Wrap(err, "failed to save topic", goerr.V(model.TopicIDKey, created.ID))
	}

	return created, nil
}

func (r *topicRepository) Get(ctx context.Context, id model.TopicID) (*model.Topic, error) {
	var found *model.Topic
	r.store.view(func(doc *document) {
		if rec, ok := doc.Topics[string(id)]; ok {
			found = rec.toModel()
		}
	})
	if found == nil {
		return nil, goerr.Wrap(model.ErrNotFound, "topic not found", goerr.V(model.TopicIDKey, id))
	}
	return found, nil
}

func (r *topicRepository) List(ctx context.Context, opts ...interfaces.ListTopicOption) ([]*model.Topic, error) {
	cfg := interfaces.BuildListTopicConfig(opts...)

	var result []*model.Topic
	r.store.view(func(doc *document) {
		for _, rec := range doc.Topics {
			t := rec.toModel()
			if cfg.Match(t) {
				result = append(result, t)
			}
		}
	})
	return cfg.Apply(result), nil
}

func (r *topicRepository) ToggleFavorite(ctx context.Context, id model.TopicID) (bool, error) {
	var favorited bool
	err := r.store.update(ctx, func(doc *document) error {
		rec, ok := doc.Topics[string(id)]
		if !ok {
			return goerr.Wrap(model.ErrNotFound, "topic not found", goerr.V(model.TopicIDKey, id))
		}
		next := *rec
		next.Favorited = !rec.Favorited
		doc.Topics[string(id)] = &next
		favorited = next.Favorited
		return nil
	})
	if err != nil {
		return false, err
	}
	return favorited, nil
}

func (r *topicRepository) CountFavorites(ctx context.Context) (int, error) {
	count := 0
	r.store.view(func(doc *document) {
		for _, rec := range doc.Topics {
			if rec.Favorited {
				count++
			}
		}
	})
	return count, nil
}
