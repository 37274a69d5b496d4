package firestore

import (
	"context"
	"slices"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/topicscout/topicscout/pkg/domain/model"
	"github.com/topicscout/topicscout/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type sessionDoc struct {
	ID                 string    `firestore:"ID"`
	Status             string    `firestore:"Status"`
	Keywords           []string  `firestore:"Keywords"`
	StartedAt          time.Time `firestore:"StartedAt"`
	CompletedAt        time.Time `firestore:"CompletedAt"`
	TopicsResearched   int       `firestore:"TopicsResearched"`
	HighQualityCount   int       `firestore:"HighQualityCount"`
	SkippedCount       int       `firestore:"SkippedCount"`
	FailedCount        int       `firestore:"FailedCount"`
	VideosAnalyzed     int       `firestore:"VideosAnalyzed"`
	CompetitorsChecked int       `firestore:"CompetitorsChecked"`
	DurationSeconds    float64   `firestore:"DurationSeconds"`
	Error              string    `firestore:"Error"`
}

func toSessionDoc(s *model.ResearchSession) *sessionDoc {
	return &sessionDoc{
		ID:                 string(s.ID),
		Status:             string(s.Status),
		Keywords:           slices.Clone(s.Keywords),
		StartedAt:          s.StartedAt.UTC(),
		CompletedAt:        s.CompletedAt.UTC(),
		TopicsResearched:   s.TopicsResearched,
		HighQualityCount:   s.HighQualityCount,
		SkippedCount:       s.SkippedCount,
		FailedCount:        s.FailedCount,
		VideosAnalyzed:     s.VideosAnalyzed,
		CompetitorsChecked: s.CompetitorsChecked,
		DurationSeconds:    s.DurationSeconds,
		Error:              s.Error,
	}
}

func docToSession(doc *firestore.DocumentSnapshot) (*model.ResearchSession, error) {
	var d sessionDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}
	return &model.ResearchSession{
		ID:                 model.SessionID(d.ID),
		Status:             types.SessionStatus(d.Status),
		Keywords:           d.Keywords,
		StartedAt:          d.StartedAt.UTC(),
		CompletedAt:        d.CompletedAt.UTC(),
		TopicsResearched:   d.TopicsResearched,
		HighQualityCount:   d.HighQualityCount,
		SkippedCount:       d.SkippedCount,
		FailedCount:        d.FailedCount,
		VideosAnalyzed:     d.VideosAnalyzed,
		CompetitorsChecked: d.CompetitorsChecked,
		DurationSeconds:    d.DurationSeconds,
		Error:              d.Error,
	}, nil
}

type sessionRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newSessionRepository(client *firestore.Client) *sessionRepository {
	return &sessionRepository{client: client}
}

func (r *sessionRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + collectionSessions)
}

func (r *sessionRepository) Create(ctx context.Context, session *model.ResearchSession) (*model.ResearchSession, error) {
	created := session.Copy()
	if created.ID == "" {
		created.ID = model.NewSessionID()
	}
	if created.StartedAt.IsZero() {
		created.StartedAt = time.Now()
	}
	// Firestore keeps microsecond precision
	created.StartedAt = created.StartedAt.UTC().Truncate(time.Microsecond)
	if created.Status == "" {
		created.Status = types.SessionRunning
	}

	if _, err := r.collection().Doc(string(created.ID)).Create(ctx, toSessionDoc(created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create session", goerr.V(model.SessionIDKey, created.ID))
	}
	return created, nil
}

func (r *sessionRepository) Get(ctx context.Context, id model.SessionID) (*model.ResearchSession, error) {
	doc, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrNotFound, "session not found", goerr.V(model.SessionIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get session", goerr.V(model.SessionIDKey, id))
	}

	s, err := docToSession(doc)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal session", goerr.V(model.SessionIDKey, id))
	}
	return s, nil
}

func (r *sessionRepository) Finalize(ctx context.Context, session *model.ResearchSession) error {
	ref := r.collection().Doc(string(session.ID))

	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(model.ErrNotFound, "session not found", goerr.V(model.SessionIDKey, session.ID))
			}
			return goerr.Wrap(err, "failed to get session", goerr.V(model.SessionIDKey, session.ID))
		}

		existing, err := docToSession(doc)
		if err != nil {
			return goerr.Wrap(err, "failed to unmarshal session", goerr.V(model.SessionIDKey, session.ID))
		}
		if existing.Status.IsFinal() {
			return goerr.Wrap(model.ErrSessionFinalized, "session already finalized", goerr.V(model.SessionIDKey, session.ID))
		}

		d := toSessionDoc(session)
		d.StartedAt = existing.StartedAt
		return tx.Set(ref, d)
	})
}

func (r *sessionRepository) List(ctx context.Context, since time.Time) ([]*model.ResearchSession, error) {
	q := r.collection().OrderBy("StartedAt", firestore.Desc)
	if !since.IsZero() {
		q = q.Where("StartedAt", ">=", since.UTC())
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var sessions []*model.ResearchSession
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate sessions")
		}

		s, err := docToSession(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal session", goerr.V(model.SessionIDKey, doc.Ref.ID))
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}
