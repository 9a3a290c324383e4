package calendar

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"golang.org/x/oauth2"
)

// TokenStore persists one OAuth token per user.
type TokenStore interface {
	Save(ctx context.Context, userID int64, tok *oauth2.Token) error
	// Get returns the stored token, or ErrNotConnected when absent.
	Get(ctx context.Context, userID int64) (*oauth2.Token, error)
	Delete(ctx context.Context, userID int64) error
}

// tokenField is the subdocument of the user record holding the token.
const tokenField = "calendar_token"

type storedToken struct {
	AccessToken  string    `bson:"access_token"`
	TokenType    string    `bson:"token_type,omitempty"`
	RefreshToken string    `bson:"refresh_token,omitempty"`
	Expiry       time.Time `bson:"expiry,omitempty"`
}

// MongoTokenStore keeps tokens on the users collection.
type MongoTokenStore struct {
	col *mongo.Collection
}

func NewMongoTokenStore(db *mongo.Database) *MongoTokenStore {
	if db == nil {
		panic("calendar: mongo database cannot be nil")
	}
	return &MongoTokenStore{col: db.Collection("users")}
}

func (s *MongoTokenStore) Save(ctx context.Context, userID int64, tok *oauth2.Token) error {
	doc := storedToken{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}
	_, err := s.col.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{tokenField: doc}},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return errors.Join(ErrPersistence, err)
	}
	return nil
}

func (s *MongoTokenStore) Get(ctx context.Context, userID int64) (*oauth2.Token, error) {
	var doc struct {
		Token *storedToken `bson:"calendar_token"`
	}
	err := s.col.FindOne(ctx,
		bson.M{"_id": userID},
		options.FindOne().SetProjection(bson.M{tokenField: 1}),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotConnected
		}
		return nil, errors.Join(ErrPersistence, err)
	}
	if doc.Token == nil {
		return nil, ErrNotConnected
	}
	return &oauth2.Token{
		AccessToken:  doc.Token.AccessToken,
		TokenType:    doc.Token.TokenType,
		RefreshToken: doc.Token.RefreshToken,
		Expiry:       doc.Token.Expiry,
	}, nil
}

func (s *MongoTokenStore) Delete(ctx context.Context, userID int64) error {
	_, err := s.col.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$unset": bson.M{tokenField: ""}},
	)
	if err != nil {
		return errors.Join(ErrPersistence, err)
	}
	return nil
}

// MemoryTokenStore is an in-memory TokenStore for tests.
type MemoryTokenStore struct {
	mu     sync.Mutex
	tokens map[int64]*oauth2.Token
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: make(map[int64]*oauth2.Token)}
}

func (s *MemoryTokenStore) Save(_ context.Context, userID int64, tok *oauth2.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *tok
	s.tokens[userID] = &copied
	return nil
}

func (s *MemoryTokenStore) Get(_ context.Context, userID int64) (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tok, ok := s.tokens[userID]
	if !ok {
		return nil, ErrNotConnected
	}
	copied := *tok
	return &copied, nil
}

func (s *MemoryTokenStore) Delete(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, userID)
	return nil
}
