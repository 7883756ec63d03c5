package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/adammck/lrucache/pkg/api"
	"github.com/jonboulle/clockwork"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collection = "entries"
	kId        = "_id"
	kValue     = "value"
	kUpdated   = "updated"
)

// Store keeps one document per key, with the key as the _id.
type Store struct {
	db    *mongo.Database
	clock clockwork.Clock
}

var _ api.Store = (*Store)(nil)

func New(db *mongo.Database, clock clockwork.Clock) *Store {
	return &Store{
		db:    db,
		clock: clock,
	}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var result struct {
		Value []byte `bson:"value"`
	}

	err := s.db.Collection(collection).FindOne(ctx, bson.M{kId: key}).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &api.NotFound{Key: key}
		}
		return nil, fmt.Errorf("FindOne: %w", err)
	}

	return result.Value, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if value == nil {
		// store an empty binary rather than null, so Get round-trips.
		value = []byte{}
	}

	opts := options.Update().SetUpsert(true)
	_, err := s.db.Collection(collection).UpdateOne(
		ctx,
		bson.M{kId: key},
		bson.M{"$set": bson.M{
			kValue:   value,
			kUpdated: s.clock.Now(),
		}},
		opts,
	)
	if err != nil {
		return fmt.Errorf("UpdateOne: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{kId: key})
	if err != nil {
		return fmt.Errorf("DeleteOne: %w", err)
	}
	return nil
}

func (s *Store) Keys(ctx context.Context) ([]string, error) {
	cursor, err := s.db.Collection(collection).Find(
		ctx,
		bson.M{},
		options.Find().SetProjection(bson.M{kId: 1}),
	)
	if err != nil {
		return nil, fmt.Errorf("Find: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("cursor.All: %w", err)
	}

	keys := make([]string, len(docs))
	for i, d := range docs {
		keys[i] = d.ID
	}

	return keys, nil
}
