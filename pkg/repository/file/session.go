package file

import (
	"context"
	"slices"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/topicscout/topicscout/pkg/domain/model"
	"github.com/topicscout/topicscout/pkg/domain/types"
)

type sessionRepository struct {
	store *Store
}

func (r *sessionRepository) Create(ctx context.Context, session *model.ResearchSession) (*model.ResearchSession, error) {
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

	if err := r.store.update(ctx, func(doc *document) error {
		doc.Sessions[string(created.ID)] = toSessionRecord(created)
		return nil
	}); err != nil {
		return nil, goerr.Wrap(err, "failed to save session", goerr.V(model.SessionIDKey, created.ID))
	}
	return created, nil
}

func (r *sessionRepository) Get(ctx context.Context, id model.SessionID) (*model.ResearchSession, error) {
	var found *model.ResearchSession
	r.store.view(func(doc *document) {
		if rec, ok := doc.Sessions[string(id)]; ok {
			found = rec.toModel()
		}
	})
	if found == nil {
		return nil, goerr.Wrap(model.ErrNotFound, "session not found", goerr.V(model.SessionIDKey, id))
	}
	return found, nil
}

func (r *sessionRepository) Finalize(ctx context.Context, session *model.ResearchSession) error {
	return r.store.update(ctx, func(doc *document) error {
		existing, ok := doc.Sessions[string(session.ID)]
		if !ok {
			return goerr.Wrap(model.ErrNotFound, "session not found", goerr.V(model.SessionIDKey, session.ID))
		}
		if types.SessionStatus(existing.Status).IsFinal() {
			return goerr.Wrap(model.ErrSessionFinalized, "session already finalized", goerr.V(model.SessionIDKey, session.ID))
		}

		rec := toSessionRecord(session)
		rec.StartedAt = existing.StartedAt
		doc.Sessions[rec.ID] = rec
		return nil
	})
}

func (r *sessionRepository) List(ctx context.Context, since time.Time) ([]*model.ResearchSession, error) {
	var result []*model.ResearchSession
	r.store.view(func(doc *document) {
		for _, rec := range doc.Sessions {
			if since.IsZero() || !rec.StartedAt.Before(since) {
				result = append(result, rec.toModel())
			}
		}
	})
	slices.SortFunc(result, func(a, b *model.ResearchSession) int {
		return b.StartedAt.Compare(a.StartedAt)
	})
	return result, nil
}
