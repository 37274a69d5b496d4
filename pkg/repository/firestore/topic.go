package firestore

import (
	"context"
	"slices"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/topicscout/topicscout/pkg/domain/interfaces"
	"github.com/topicscout/topicscout/pkg/domain/model"
	"github.com/topicscout/topicscout/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// topicDoc is the Firestore document representation of model.Topic
type topicDoc struct {
	ID               string    `firestore:"ID"`
	Title            string    `firestore:"Title"`
	Importance       int       `firestore:"Importance"`
	Watchability     int       `firestore:"Watchability"`
	Monetization     int       `firestore:"Monetization"`
	Popularity       int       `firestore:"Popularity"`
	Innovation       int       `firestore:"Innovation"`
	TotalScore       float64   `firestore:"TotalScore"`
	Category         string    `firestore:"Category"`
	Keywords         []string  `firestore:"Keywords"`
	RecommendedAngle string    `firestore:"RecommendedAngle"`
	CompetitionLevel string    `firestore:"CompetitionLevel"`
	Notes            string    `firestore:"Notes"`
	AIAnalysis       string    `firestore:"AIAnalysis"`
	Source           string    `firestore:"Source"`
	SessionID        string    `firestore:"SessionID"`
	Timestamp        time.Time `firestore:"Timestamp"`
	Favorited        bool      `firestore:"Favorited"`
}

func toTopicDoc(t *model.Topic) *topicDoc {
	return &topicDoc{
		ID:               string(t.ID),
		Title:            t.Title,
		Importance:       t.Scores.Importance,
		Watchability:     t.Scores.Watchability,
		Monetization:     t.Scores.Monetization,
		Popularity:       t.Scores.Popularity,
		Innovation:       t.Scores.Innovation,
		TotalScore:       t.TotalScore,
		Category:         t.Category,
		Keywords:         slices.Clone(t.Keywords),
		RecommendedAngle: t.RecommendedAngle,
		CompetitionLevel: string(t.CompetitionLevel),
		Notes:            t.Notes,
		AIAnalysis:       t.AIAnalysis,
		Source:           string(t.Source),
		SessionID:        string(t.SessionID),
		Timestamp:        t.Timestamp.UTC(),
		Favorited:        t.Favorited,
	}
}

func fromTopicDoc(d *topicDoc) *model.Topic {
	return &model.Topic{
		ID:    model.TopicID(d.ID),
		Title: d.Title,
		Scores: model.DimensionScores{
			Importance:   d.Importance,
			Watchability: d.Watchability,
			Monetization: d.Monetization,
			Popularity:   d.Popularity,
			Innovation:   d.Innovation,
		},
		TotalScore:       d.TotalScore,
		Category:         d.Category,
		Keywords:         d.Keywords,
		RecommendedAngle: d.RecommendedAngle,
		CompetitionLevel: types.ParseCompetitionLevel(d.CompetitionLevel),
		Notes:            d.Notes,
		AIAnalysis:       d.AIAnalysis,
		Source:           types.SourceType(d.Source),
		SessionID:        model.SessionID(d.SessionID),
		Timestamp:        d.Timestamp.UTC(),
		Favorited:        d.Favorited,
	}
}

func docToTopic(doc *firestore.DocumentSnapshot) (*model.Topic, error) {
	var d topicDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}
	return fromTopicDoc(&d), nil
}

type topicRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newTopicRepository(client *firestore.Client) *topicRepository {
	return &topicRepository{client: client}
}

func (r *topicRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + collectionTopics)
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
	// Firestore keeps microsecond precision
	created.Timestamp = created.Timestamp.UTC().Truncate(time.Microsecond)

	if _, err := r.collection().Doc(string(created.ID)).Create(ctx, toTopicDoc(created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create topic", goerr.V(model.TopicIDKey, created.ID))
	}
	return created, nil
}

func (r *topicRepository) Get(ctx context.Context, id model.TopicID) (*model.Topic, error) {
	doc, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrNotFound, "topic not found", goerr.V(model.TopicIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get topic", goerr.V(model.TopicIDKey, id))
	}

	t, err := docToTopic(doc)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal topic", goerr.V(model.TopicIDKey, id))
	}
	return t, nil
}

// List pushes the equality and time filters to Firestore. Score filtering,
// ranking and the limit are applied afterwards because Firestore cannot order
// by TotalScore while range-filtering on Timestamp.
func (r *topicRepository) List(ctx context.Context, opts ...interfaces.ListTopicOption) ([]*model.Topic, error) {
	cfg := interfaces.BuildListTopicConfig(opts...)

	q := r.collection().Query
	if cat := cfg.Category(); cat != "" {
		q = q.Where("Category", "==", cat)
	}
	if cfg.FavoritedOnly() {
		q = q.Where("Favorited", "==", true)
	}
	if since := cfg.Since(); !since.IsZero() {
		q = q.Where("Timestamp", ">=", since)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var topics []*model.Topic
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate topics")
		}

		t, err := docToTopic(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal topic", goerr.V(model.TopicIDKey, doc.Ref.ID))
		}
		topics = append(topics, t)
	}

	return cfg.Apply(topics), nil
}

func (r *topicRepository) ToggleFavorite(ctx context.Context, id model.TopicID) (bool, error) {
	ref := r.collection().Doc(string(id))

	var favorited bool
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(model.ErrNotFound, "topic not found", goerr.V(model.TopicIDKey, id))
			}
			return goerr.Wrap(err, "failed to get topic", goerr.V(model.TopicIDKey, id))
		}

		t, err := docToTopic(doc)
		if err != nil {
			return goerr.Wrap(err, "failed to unmarshal topic", goerr.V(model.TopicIDKey, id))
		}

		favorited = !t.Favorited
		return tx.Update(ref, []firestore.Update{{Path: "Favorited", Value: favorited}})
	})
	if err != nil {
		return false, goerr.Wrap(err, "failed to toggle favorite", goerr.V(model.TopicIDKey, id))
	}
	return favorited, nil
}

func (r *topicRepository) CountFavorites(ctx context.Context) (int, error) {
	iter := r.collection().Where("Favorited", "==", true).Select().Documents(ctx)
	defer iter.Stop()

	count := 0
	for {
		_, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, goerr.Wrap(err, "failed to count favorites")
		}
		count++
	}
	return count, nil
}
