package subscription

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// usersCollection holds one subscription document per user, keyed by
// the numeric user ID.
const usersCollection = "users"

// MongoStore implements Store on a MongoDB collection. All counter
// mutations go through `$inc` so concurrent requests for the same user
// never lose updates.
type MongoStore struct {
	col *mongo.Collection
}

// NewMongoStore returns a Store backed by the users collection of the
// given database.
func NewMongoStore(db *mongo.Database) *MongoStore {
	if db == nil {
		panic("subscription: mongo database cannot be nil")
	}
	return &MongoStore{col: db.Collection(usersCollection)}
}

func (s *MongoStore) Get(ctx context.Context, userID int64) (Record, error) {
	var rec Record
	err := s.col.FindOne(ctx, bson.M{"_id": userID}).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Record{}, ErrNotFound
		}
		return Record{}, errors.Join(ErrPersistence, err)
	}
	return rec, nil
}

func (s *MongoStore) Ensure(ctx context.Context, rec Record) error {
	// $setOnInsert keeps an existing document untouched, which makes
	// concurrent first touches converge on a single record.
	doc, err := toDocument(rec)
	if err != nil {
		return errors.Join(ErrPersistence, err)
	}
	delete(doc, "_id")

	_, err = s.col.UpdateOne(ctx,
		bson.M{"_id": rec.UserID},
		bson.M{"$setOnInsert": doc},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return errors.Join(ErrPersistence, err)
	}
	return nil
}

func (s *MongoStore) Set(ctx context.Context, userID int64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	set := bson.M{}
	unset := bson.M{}
	for k, v := range fields {
		// Nil means the field is being cleared (e.g. expiry after a
		// downgrade); store that as a removal, not a stored null.
		if v == nil {
			unset[k] = ""
			continue
		}
		set[k] = v
	}
	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	if _, err := s.col.UpdateOne(ctx, bson.M{"_id": userID}, update); err != nil {
		return errors.Join(ErrPersistence, err)
	}
	return nil
}

func (s *MongoStore) Increment(ctx context.Context, userID int64, deltas map[string]int64) error {
	if len(deltas) == 0 {
		return nil
	}
	inc := bson.M{}
	for k, v := range deltas {
		inc[k] = v
	}
	if _, err := s.col.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$inc": inc}); err != nil {
		return errors.Join(ErrPersistence, err)
	}
	return nil
}

func toDocument(rec Record) (bson.M, error) {
	raw, err := bson.Marshal(rec)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
