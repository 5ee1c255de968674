package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kalakrut/portal/internal/core/domain"
	"github.com/kalakrut/portal/internal/core/ports"
)

const usersCollection = "portal_users"

// DirectoryStore keeps one document per directory record.
type DirectoryStore struct {
	db   *mongo.Database
	coll *mongo.Collection
}

var (
	_ ports.DirectoryStore = (*DirectoryStore)(nil)
	_ ports.Pinger         = (*DirectoryStore)(nil)
)

func NewDirectoryStore(db *mongo.Database) *DirectoryStore {
	return &DirectoryStore{db: db, coll: db.Collection(usersCollection)}
}

// EnsureIndexes creates the unique email index. Emails are stored as
// registered, so uniqueness here is exact; the directory enforces the
// case-insensitive rule.
func (s *DirectoryStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"email": bson.M{"$type": "string"}}),
	})
	if err != nil {
		return fmt.Errorf("create email index: %w", err)
	}
	return nil
}

func (s *DirectoryStore) Load(ctx context.Context) ([]domain.UserRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer cur.Close(ctx)

	var recs []domain.UserRecord
	if err := cur.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return recs, nil
}

// Save upserts every record and deletes documents no longer in the snapshot.
func (s *DirectoryStore) Save(ctx context.Context, records []domain.UserRecord) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	ids := make([]string, 0, len(records))
	models := make([]mongo.WriteModel, 0, len(records)+1)
	for _, rec := range records {
		ids = append(ids, rec.ID)
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": rec.ID}).
			SetReplacement(rec).
			SetUpsert(true))
	}
	models = append(models, mongo.NewDeleteManyModel().
		SetFilter(bson.M{"_id": bson.M{"$nin": ids}}))

	if _, err := s.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true)); err != nil {
		return fmt.Errorf("save users: %w", writeErr(err))
	}
	return nil
}

func writeErr(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrRegistrationConflict
	}
	return err
}

func (s *DirectoryStore) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, nil)
}
