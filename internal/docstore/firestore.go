package docstore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/bedtime/internal/models"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreRepository stores stories as documents of one Firestore collection.
type FirestoreRepository struct {
	client     *firestore.Client
	collection string
}

// NewFirebaseClient initializes a Firebase app from a service-account key file and
// returns its Firestore client. projectID may be empty when the key file carries it.
func NewFirebaseClient(ctx context.Context, credentialsPath, projectID string) (*firestore.Client, error) {
	if credentialsPath == "" {
		return nil, errors.New("firebase credentials path is empty")
	}

	var fbConfig *firebase.Config
	if projectID != "" {
		fbConfig = &firebase.Config{ProjectID: projectID}
	}

	app, err := firebase.NewApp(ctx, fbConfig, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app from %q: %w", credentialsPath, err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get firestore client: %w", err)
	}

	log.Info().Str("credentials_path", credentialsPath).Msg("Firestore client initialized")
	return client, nil
}

// NewFirestoreRepository creates a FirestoreRepository over the named collection.
func NewFirestoreRepository(client *firestore.Client, collection string) *FirestoreRepository {
	return &FirestoreRepository{client: client, collection: collection}
}

// List streams the whole collection and drops generated records.
func (r *FirestoreRepository) List(ctx context.Context) ([]*models.Story, error) {
	iter := r.client.Collection(r.collection).Documents(ctx)
	defer iter.Stop()

	var stories []*models.Story
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list stories: %w", err)
		}

		story, err := decodeStory(doc)
		if err != nil {
			log.Warn().Err(err).Str("story_id", doc.Ref.ID).Msg("Skipping malformed story document")
			continue
		}
		if story.Type.IsGenerated() {
			continue
		}
		stories = append(stories, story)
	}
	return stories, nil
}

// Get returns the document with the given id or models.ErrNotFound.
func (r *FirestoreRepository) Get(ctx context.Context, id string) (*models.Story, error) {
	doc, err := r.client.Collection(r.collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get story %s: %w", id, err)
	}
	return decodeStory(doc)
}

// ExistsByTitle queries for a document whose title equals title.
func (r *FirestoreRepository) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	docs, err := r.client.Collection(r.collection).
		Where("title", "==", title).
		Limit(1).
		Documents(ctx).
		GetAll()
	if err != nil {
		return false, fmt.Errorf("failed to query story by title: %w", err)
	}
	return len(docs) > 0, nil
}

// Insert adds story as a new document and returns the generated document id.
func (r *FirestoreRepository) Insert(ctx context.Context, story *models.Story) (string, error) {
	ref, _, err := r.client.Collection(r.collection).Add(ctx, story)
	if err != nil {
		return "", fmt.Errorf("failed to insert story: %w", err)
	}
	return ref.ID, nil
}

// Count returns the number of documents in the collection.
func (r *FirestoreRepository) Count(ctx context.Context) (int, error) {
	refs, err := r.client.Collection(r.collection).DocumentRefs(ctx).GetAll()
	if err != nil {
		return 0, fmt.Errorf("failed to count stories: %w", err)
	}
	return len(refs), nil
}

// Close releases the underlying Firestore client.
func (r *FirestoreRepository) Close() error {
	return r.client.Close()
}

// decodeStory converts a snapshot into a Story. Documents without a type predate
// the type field and are read as classics.
func decodeStory(doc *firestore.DocumentSnapshot) (*models.Story, error) {
	var story models.Story
	if err := doc.DataTo(&story); err != nil {
		return nil, fmt.Errorf("decode story %s: %w", doc.Ref.ID, err)
	}
	story.ID = doc.Ref.ID

	if story.Type == "" {
		story.Type = models.StoryTypeClassic
		return &story, nil
	}
	t, err := models.ParseStoryType(string(story.Type))
	if err != nil {
		return nil, err
	}
	story.Type = t
	return &story, nil
}
