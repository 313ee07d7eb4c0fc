package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// distanceField receives the cosine distance computed by FindNearest
const distanceField = "vector_distance"

// precedentDoc is the Firestore document representation of model.Precedent.
// Embedding is stored as firestore.Vector32 for FindNearest vector search.
type precedentDoc struct {
	ID            model.PrecedentID  `firestore:"ID"`
	Title         string             `firestore:"Title"`
	ExceptionCode string             `firestore:"ExceptionCode"`
	Text          string             `firestore:"Text"`
	Citation      string             `firestore:"Citation"`
	Metadata      map[string]string  `firestore:"Metadata,omitempty"`
	Embedding     firestore.Vector32 `firestore:"Embedding,omitempty"`
	CreatedAt     time.Time          `firestore:"CreatedAt"`
}

func toPrecedentDoc(p *model.Precedent) *precedentDoc {
	doc := &precedentDoc{
		ID:            p.ID,
		Title:         p.Title,
		ExceptionCode: p.ExceptionCode,
		Text:          p.Text,
		Citation:      p.Citation,
		Metadata:      p.Metadata,
		CreatedAt:     p.CreatedAt,
	}
	if len(p.Embedding) > 0 {
		doc.Embedding = firestore.Vector32(p.Embedding)
	}
	return doc
}

func fromPrecedentDoc(d *precedentDoc) *model.Precedent {
	p := &model.Precedent{
		ID:            d.ID,
		Title:         d.Title,
		ExceptionCode: d.ExceptionCode,
		Text:          d.Text,
		Citation:      d.Citation,
		Metadata:      d.Metadata,
		CreatedAt:     d.CreatedAt,
	}
	if len(d.Embedding) > 0 {
		p.Embedding = []float32(d.Embedding)
	}
	return p
}

type precedentRepository struct {
	client     *firestore.Client
	collection string
}

func newPrecedentRepository(client *firestore.Client) *precedentRepository {
	return &precedentRepository{client: client, collection: precedentCollection}
}

func (r *precedentRepository) Put(ctx context.Context, precedent *model.Precedent) (*model.Precedent, error) {
	if precedent == nil {
		return nil, goerr.New("precedent is nil")
	}

	stored := *precedent
	if stored.ID == "" {
		stored.ID = model.NewPrecedentID()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	docRef := r.client.Collection(r.collection).Doc(string(stored.ID))
	if _, err := docRef.Set(ctx, toPrecedentDoc(&stored)); err != nil {
		return nil, goerr.Wrap(err, "failed to put precedent", goerr.V(model.PrecedentIDKey, stored.ID))
	}

	return &stored, nil
}

func (r *precedentRepository) Get(ctx context.Context, id model.PrecedentID) (*model.Precedent, error) {
	doc, err := r.client.Collection(r.collection).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrNotFound, "precedent not found", goerr.V(model.PrecedentIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get precedent", goerr.V(model.PrecedentIDKey, id))
	}

	var d precedentDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal precedent", goerr.V(model.PrecedentIDKey, id))
	}

	return fromPrecedentDoc(&d), nil
}

func (r *precedentRepository) Search(ctx context.Context, embedding []float32, topK int) ([]*model.PrecedentMatch, error) {
	if topK <= 0 {
		return []*model.PrecedentMatch{}, nil
	}

	vq := r.client.Collection(r.collection).
		FindNearest("Embedding", firestore.Vector32(embedding), topK, firestore.DistanceMeasureCosine,
			&firestore.FindNearestOptions{DistanceResultField: distanceField})

	iter := vq.Documents(ctx)
	defer iter.Stop()

	matches := make([]*model.PrecedentMatch, 0, topK)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate precedent vector search results")
		}

		var d precedentDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal precedent from vector search")
		}

		matches = append(matches, &model.PrecedentMatch{
			ID:       d.ID,
			Score:    1 - distanceOf(doc.Data()),
			Metadata: fromPrecedentDoc(&d).Attributes(),
		})
	}

	return matches, nil
}

func distanceOf(data map[string]interface{}) float64 {
	switch v := data[distanceField].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	default:
		return 1
	}
}
