package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/custodia-labs/tgindex/internal/core/domain"
	"github.com/custodia-labs/tgindex/internal/core/ports/driven"
)

const (
	sourcesCollection   = "sources"
	documentsCollection = "documents"

	connectTimeout = 10 * time.Second
)

// Store owns the client and the two collections.
type Store struct {
	client    *mongo.Client
	sources   *mongo.Collection
	documents *mongo.Collection
}

// NewStore connects to uri, pings the server and ensures indexes on
// database.
func NewStore(ctx context.Context, uri, database string) (*Store, error) {
	if uri == "" || database == "" {
		return nil, errors.New("mongo uri and database are required")
	}

	opts := options.Client().ApplyURI(uri).SetConnectTimeout(connectTimeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongo: %w", err)
	}

	db := client.Database(database)
	s := &Store{
		client:    client,
		sources:   db.Collection(sourcesCollection),
		documents: db.Collection(documentsCollection),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("creating indexes: %w", err)
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	if _, err := s.documents.Indexes().CreateMany(ctx, documentIndexes()); err != nil {
		return err
	}
	_, err := s.sources.Indexes().CreateMany(ctx, sourceIndexes())
	return err
}

func documentIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "file_hash", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("user_file_hash_unique"),
		},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: -1}}},
		{Keys: bson.D{{Key: "source_id", Value: 1}}},
	}
}

func sourceIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "peer_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("user_peer_unique"),
		},
		{Keys: bson.D{{Key: "peer_id", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "identifier", Value: 1}}},
	}
}

// Close disconnects the client.
func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}

// Ping checks the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// SourceStore returns a SourceStore backed by the sources collection.
func (s *Store) SourceStore() driven.SourceStore {
	return &sourceStore{coll: s.sources}
}

// DocumentStore returns a DocumentStore backed by the documents collection.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{coll: s.documents}
}

// classify maps driver errors onto the domain taxonomy.
func classify(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return domain.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return domain.ErrAlreadyExists
	default:
		return domain.Persistence(op, err)
	}
}

// ==================== Source Store ====================

type sourceStore struct {
	coll *mongo.Collection
}

var _ driven.SourceStore = (*sourceStore)(nil)

func (s *sourceStore) findOne(ctx context.Context, filter bson.D) (*domain.Source, error) {
	var rec sourceRecord
	if err := s.coll.FindOne(ctx, filter).Decode(&rec); err != nil {
		return nil, classify("finding source", err)
	}
	source := rec.toDomain()
	return &source, nil
}

// FindByPeer retrieves a user's source by platform id.
func (s *sourceStore) FindByPeer(ctx context.Context, userID, peerID int64) (*domain.Source, error) {
	return s.findOne(ctx, bson.D{{Key: "user_id", Value: userID}, {Key: "peer_id", Value: peerID}})
}

// FindByIdentifier retrieves a user's source by normalised identifier.
func (s *sourceStore) FindByIdentifier(ctx context.Context, userID int64, identifier string) (*domain.Source, error) {
	return s.findOne(ctx, bson.D{{Key: "user_id", Value: userID}, {Key: "identifier", Value: exactFold(identifier)}})
}

// Insert stores a new source.
func (s *sourceStore) Insert(ctx context.Context, source *domain.Source) error {
	if source.CreatedAt.IsZero() {
		source.CreatedAt = time.Now().UTC()
	}
	_, err := s.coll.InsertOne(ctx, toSourceRecord(source))
	return classify("inserting source", err)
}

// UpdateWatermark sets the last indexed message id and time.
func (s *sourceStore) UpdateWatermark(ctx context.Context, userID, peerID int64, messageID int, at time.Time) error {
	result, err := s.coll.UpdateOne(ctx,
		bson.D{{Key: "user_id", Value: userID}, {Key: "peer_id", Value: peerID}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "last_message_id", Value: messageID},
			{Key: "last_indexed_at", Value: at.UTC()},
		}}})
	if err != nil {
		return classify("updating watermark", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List returns all sources of a user, oldest first.
func (s *sourceStore) List(ctx context.Context, userID int64) ([]domain.Source, error) {
	return s.find(ctx, bson.D{{Key: "user_id", Value: userID}})
}

// ListByPeer returns every user's source for a platform id.
func (s *sourceStore) ListByPeer(ctx context.Context, peerID int64) ([]domain.Source, error) {
	return s.find(ctx, bson.D{{Key: "peer_id", Value: peerID}})
}

// Delete removes a user's source. Indexed documents are kept.
func (s *sourceStore) Delete(ctx context.Context, userID, peerID int64) error {
	_, err := s.coll.DeleteOne(ctx, bson.D{{Key: "user_id", Value: userID}, {Key: "peer_id", Value: peerID}})
	return classify("deleting source", err)
}

func (s *sourceStore) find(ctx context.Context, filter bson.D) ([]domain.Source, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date_added", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, classify("listing sources", err)
	}
	var records []sourceRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, classify("reading sources", err)
	}

	sources := make([]domain.Source, 0, len(records))
	for _, rec := range records {
		sources = append(sources, rec.toDomain())
	}
	return sources, nil
}

// ==================== Document Store ====================

type documentStore struct {
	coll *mongo.Collection
}

var _ driven.DocumentStore = (*documentStore)(nil)

// FindByHash retrieves a user's document by dedup key.
func (s *documentStore) FindByHash(ctx context.Context, userID int64, hash string) (*domain.Document, error) {
	return s.findOne(ctx, bson.D{{Key: "user_id", Value: userID}, {Key: "file_hash", Value: hash}})
}

// Insert stores a new document.
func (s *documentStore) Insert(ctx context.Context, doc *domain.Document) error {
	if doc.IndexedAt.IsZero() {
		doc.IndexedAt = time.Now().UTC()
	}
	_, err := s.coll.InsertOne(ctx, toDocumentRecord(doc))
	return classify("inserting document", err)
}

// Find returns a user's documents matching the query.
func (s *documentStore) Find(ctx context.Context, userID int64, q domain.DocumentQuery) ([]domain.Document, error) {
	opts := options.Find().
		SetSort(documentSort(q.Sort)).
		SetSkip(int64(q.Offset)).
		SetLimit(int64(q.EffectiveLimit()))

	cursor, err := s.coll.Find(ctx, documentFilter(userID, q), opts)
	if err != nil {
		return nil, classify("searching documents", err)
	}
	var records []documentRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, classify("reading documents", err)
	}

	docs := make([]domain.Document, 0, len(records))
	for _, rec := range records {
		docs = append(docs, rec.toDomain())
	}
	return docs, nil
}

// Get retrieves a document by ID, scoped to its owner.
func (s *documentStore) Get(ctx context.Context, userID int64, id string) (*domain.Document, error) {
	return s.findOne(ctx, bson.D{{Key: "_id", Value: id}, {Key: "user_id", Value: userID}})
}

// Count returns the number of documents a user has.
func (s *documentStore) Count(ctx context.Context, userID int64) (int, error) {
	n, err := s.coll.CountDocuments(ctx, bson.D{{Key: "user_id", Value: userID}})
	if err != nil {
		return 0, classify("counting documents", err)
	}
	return int(n), nil
}

func (s *documentStore) findOne(ctx context.Context, filter bson.D) (*domain.Document, error) {
	var rec documentRecord
	if err := s.coll.FindOne(ctx, filter).Decode(&rec); err != nil {
		return nil, classify("finding document", err)
	}
	doc := rec.toDomain()
	return &doc, nil
}
