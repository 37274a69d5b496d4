package interfaces

import (
	"context"
	"time"

	"github.com/topicscout/topicscout/pkg/domain/model"
)

// Repository is the research store: topics and sessions behind one backend
type Repository interface {
	Topic() TopicRepository
	Session() SessionRepository
	Close() error
}

// TopicRepository persists evaluated topics
type TopicRepository interface {
	// Create stores topic. ID and Timestamp are assigned when empty.
	Create(ctx context.Context, topic *model.Topic) (*model.Topic, error)
	Get(ctx context.Context, id model.TopicID) (*model.Topic, error)
	// List returns topics ordered by total score then timestamp, both descending.
	List(ctx context.Context, opts ...ListTopicOption) ([]*model.Topic, error)
	// ToggleFavorite flips the favorite flag and returns the new value.
	ToggleFavorite(ctx context.Context, id model.TopicID) (bool, error)
	CountFavorites(ctx context.Context) (int, error)
}

// SessionRepository persists research sessions
type SessionRepository interface {
	Create(ctx context.Context, session *model.ResearchSession) (*model.ResearchSession, error)
	Get(ctx context.Context, id model.SessionID) (*model.ResearchSession, error)
	// Finalize writes the final state of a running session. A session that is
	// already final is rejected with model.ErrSessionFinalized.
	Finalize(ctx context.Context, session *model.ResearchSession) error
	// List returns sessions started at or after since, newest first.
	List(ctx context.Context, since time.Time) ([]*model.ResearchSession, error)
}
