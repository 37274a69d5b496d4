package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/topicscout/topicscout/pkg/domain/model"
	"github.com/topicscout/topicscout/pkg/domain/types"
)

type sessionRepository struct {
	mu       sync.RWMutex
	sessions map[model.SessionID]*model.ResearchSession
}

func newSessionRepository() *sessionRepository {
	return &sessionRepository{
		sessions: make(map[model.SessionID]*model.ResearchSession),
	}
}

func (r *sessionRepository) Create(ctx context.Context, session *model.ResearchSession) (*model.ResearchSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := session.Copy()
	if created.ID == "" {
		created.ID = model.NewSessionID()
	}
	if created.StartedAt.IsZero() {
		created.StartedAt = time.Now()
	}
	created.StartedAt = created.StartedAt.UTC()
	if created.Status == "" {
		created.Status = types.SessionRunning
	}

	r.sessions[created.ID] = created
	return created.Copy(), nil
}

func (r *sessionRepository) Get(ctx context.Context, id model.SessionID) (*model.ResearchSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, exists := r.sessions[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "session not found", goerr.V(model.SessionIDKey, id))
	}
	return session.Copy(), nil
}

func (r *sessionRepository) Finalize(ctx context.Context, session *model.ResearchSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.sessions[session.ID]
	if !exists {
		return goerr.Wrap(model.ErrNotFound, "session not found", goerr.V(model.SessionIDKey, session.ID))
	}
	if existing.Status.IsFinal() {
		return goerr.Wrap(model.ErrSessionFinalized, "session already finalized", goerr.V(model.SessionIDKey, session.ID))
	}

	final := session.Copy()
	final.StartedAt = existing.StartedAt
	final.CompletedAt = final.CompletedAt.UTC()
	r.sessions[final.ID] = final
	return nil
}

func (r *sessionRepository) List(ctx context.Context, since time.Time) ([]*model.ResearchSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.ResearchSession
	for _, s := range r.sessions {
		if since.IsZero() || !s.StartedAt.Before(since) {
			result = append(result, s.Copy())
		}
	}
	slices.SortFunc(result, func(a, b *model.ResearchSession) int {
		return b.StartedAt.Compare(a.StartedAt)
	})
	return result, nil
}
