package goals

import (
	"context"
	"errors"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Store persists one personal goal per user.
type Store interface {
	// Get returns the user's goal, or ErrNotSet when none exists.
	Get(ctx context.Context, userID int64) (Goal, error)
	// Set stores the goal, replacing any previous one.
	Set(ctx context.Context, userID int64, goal Goal) error
}

// goalField is the subdocument of the user record that holds the goal.
const goalField = "personal_goal"

// MongoStore keeps goals on the same users collection the subscription
// ledger uses, as a personal_goal subdocument.
type MongoStore struct {
	col *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	if db == nil {
		panic("goals: mongo database cannot be nil")
	}
	return &MongoStore{col: db.Collection("users")}
}

func (s *MongoStore) Get(ctx context.Context, userID int64) (Goal, error) {
	var doc struct {
		Goal *Goal `bson:"personal_goal"`
	}
	err := s.col.FindOne(ctx,
		bson.M{"_id": userID},
		options.FindOne().SetProjection(bson.M{goalField: 1}),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Goal{}, ErrNotSet
		}
		return Goal{}, errors.Join(ErrPersistence, err)
	}
	if doc.Goal == nil {
		return Goal{}, ErrNotSet
	}
	return *doc.Goal, nil
}

func (s *MongoStore) Set(ctx context.Context, userID int64, goal Goal) error {
	_, err := s.col.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{goalField: goal}},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return errors.Join(ErrPersistence, err)
	}
	return nil
}

// MemoryStore is an in-memory Store for tests.
type MemoryStore struct {
	mu    sync.Mutex
	goals map[int64]Goal

	// FailWith makes every call return this error when set.
	FailWith error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{goals: make(map[int64]Goal)}
}

func (s *MemoryStore) Get(_ context.Context, userID int64) (Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return Goal{}, s.FailWith
	}
	goal, ok := s.goals[userID]
	if !ok {
		return Goal{}, ErrNotSet
	}
	return goal, nil
}

func (s *MemoryStore) Set(_ context.Context, userID int64, goal Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	s.goals[userID] = goal
	return nil
}
