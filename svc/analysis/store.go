package analysis

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Store persists analysis entries.
type Store interface {
	Save(ctx context.Context, entry Entry) (Entry, error)
	// ListByDate returns a user's entries for one calendar day.
	ListByDate(ctx context.Context, userID int64, date string) ([]Entry, error)
	// ListBetween returns a user's entries with from <= timestamp < to,
	// oldest first.
	ListBetween(ctx context.Context, userID int64, from, to time.Time) ([]Entry, error)
}

const analysesCollection = "analyses"

// MongoStore keeps entries in a flat analyses collection indexed by
// user and date.
type MongoStore struct {
	col *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	if db == nil {
		panic("analysis: mongo database cannot be nil")
	}
	return &MongoStore{col: db.Collection(analysesCollection)}
}

func (s *MongoStore) Save(ctx context.Context, entry Entry) (Entry, error) {
	if entry.ID.IsZero() {
		entry.ID = bson.NewObjectID()
	}
	_, err := s.col.InsertOne(ctx, entry)
	if err != nil {
		return Entry{}, errors.Join(ErrPersistence, err)
	}
	return entry, nil
}

func (s *MongoStore) ListByDate(ctx context.Context, userID int64, date string) ([]Entry, error) {
	return s.list(ctx, bson.M{"user_id": userID, "date": date})
}

func (s *MongoStore) ListBetween(ctx context.Context, userID int64, from, to time.Time) ([]Entry, error) {
	return s.list(ctx, bson.M{
		"user_id":   userID,
		"timestamp": bson.M{"$gte": from, "$lt": to},
	})
}

func (s *MongoStore) list(ctx context.Context, filter bson.M) ([]Entry, error) {
	cursor, err := s.col.Find(ctx, filter, options.Find().SetSort(bson.M{"timestamp": 1}))
	if err != nil {
		return nil, errors.Join(ErrPersistence, err)
	}
	defer cursor.Close(ctx)

	var entries []Entry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, errors.Join(ErrPersistence, err)
	}
	return entries, nil
}

// MemoryStore is an in-memory Store for tests.
type MemoryStore struct {
	mu      sync.Mutex
	entries []Entry
	nextID  int

	// FailWith makes every call return this error when set.
	FailWith error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(_ context.Context, entry Entry) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return Entry{}, s.FailWith
	}
	if entry.ID.IsZero() {
		entry.ID = bson.NewObjectID()
	}
	s.entries = append(s.entries, entry)
	return entry, nil
}

func (s *MemoryStore) ListByDate(_ context.Context, userID int64, date string) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	var out []Entry
	for _, e := range s.entries {
		if e.UserID == userID && e.Date == date {
			out = append(out, e)
		}
	}
	sortByTimestamp(out)
	return out, nil
}

func (s *MemoryStore) ListBetween(_ context.Context, userID int64, from, to time.Time) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	var out []Entry
	for _, e := range s.entries {
		if e.UserID == userID && !e.Timestamp.Before(from) && e.Timestamp.Before(to) {
			out = append(out, e)
		}
	}
	sortByTimestamp(out)
	return out, nil
}

func sortByTimestamp(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})
}
