package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"skillswap-server/models"
)

const (
	usersCollection = "users"
	swapsCollection = "swap_requests"
)

// ConnectMongo dials uri and checks the connection before returning the client.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

type MongoUserStore struct {
	collection *mongo.Collection
}

func NewMongoUserStore(db *mongo.Database) *MongoUserStore {
	return &MongoUserStore{collection: db.Collection(usersCollection)}
}

// EnsureIndexes creates the secondary indexes backing the directory filters.
func (s *MongoUserStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "public_profile", Value: 1}}},
		{Keys: bson.D{{Key: "name", Value: 1}}},
		{Keys: bson.D{{Key: "skills_offered", Value: 1}}},
		{Keys: bson.D{{Key: "skills_wanted", Value: 1}}},
		{Keys: bson.D{{Key: "availability", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}

func (s *MongoUserStore) Insert(ctx context.Context, user *models.User) error {
	if _, err := s.collection.InsertOne(ctx, user); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *MongoUserStore) Replace(ctx context.Context, user *models.User) error {
	res, err := s.collection.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		return fmt.Errorf("replace user: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNoRecord
	}
	return nil
}

func (s *MongoUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoRecord
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

func (s *MongoUserStore) Exists(ctx context.Context, id string) (bool, error) {
	n, err := s.collection.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count user: %w", err)
	}
	return n > 0, nil
}

func (s *MongoUserStore) Find(ctx context.Context, q UserQuery) ([]models.User, error) {
	cursor, err := s.collection.Find(ctx, userFilter(q))
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

func (s *MongoUserStore) Delete(ctx context.Context, id string) error {
	if _, err := s.collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// userFilter translates q into a Mongo filter. Equality on an array field
// matches documents whose array contains the value.
func userFilter(q UserQuery) bson.M {
	filter := bson.M{}
	if q.PublicProfile != nil {
		filter["public_profile"] = *q.PublicProfile
	}
	if q.SkillOffered != nil {
		filter["skills_offered"] = *q.SkillOffered
	}
	if q.SkillWanted != nil {
		filter["skills_wanted"] = *q.SkillWanted
	}
	if q.Availability != nil {
		filter["availability"] = *q.Availability
	}
	name := bson.M{}
	if q.NameFrom != "" {
		name["$gte"] = q.NameFrom
	}
	if q.NameBefore != "" {
		name["$lt"] = q.NameBefore
	}
	if len(name) > 0 {
		filter["name"] = name
	}
	return filter
}

type MongoSwapStore struct {
	collection *mongo.Collection
}

func NewMongoSwapStore(db *mongo.Database) *MongoSwapStore {
	return &MongoSwapStore{collection: db.Collection(swapsCollection)}
}

func (s *MongoSwapStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "from_user_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "to_user_id", Value: 1}, {Key: "status", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create swap request indexes: %w", err)
	}
	return nil
}

func (s *MongoSwapStore) Insert(ctx context.Context, swap *models.SwapRequest) error {
	if _, err := s.collection.InsertOne(ctx, swap); err != nil {
		return fmt.Errorf("insert swap request: %w", err)
	}
	return nil
}

func (s *MongoSwapStore) FindByID(ctx context.Context, id string) (*models.SwapRequest, error) {
	var swap models.SwapRequest
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&swap)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoRecord
	}
	if err != nil {
		return nil, fmt.Errorf("find swap request: %w", err)
	}
	return &swap, nil
}

func (s *MongoSwapStore) Find(ctx context.Context, q SwapQuery) ([]models.SwapRequest, error) {
	cursor, err := s.collection.Find(ctx, swapFilter(q))
	if err != nil {
		return nil, fmt.Errorf("find swap requests: %w", err)
	}
	defer cursor.Close(ctx)

	swaps := []models.SwapRequest{}
	if err := cursor.All(ctx, &swaps); err != nil {
		return nil, fmt.Errorf("decode swap requests: %w", err)
	}
	return swaps, nil
}

func (s *MongoSwapStore) UpdateIfStatus(ctx context.Context, swap *models.SwapRequest, expected models.SwapStatus) error {
	res, err := s.collection.ReplaceOne(ctx, bson.M{"_id": swap.ID, "status": expected}, swap)
	if err != nil {
		return fmt.Errorf("replace swap request: %w", err)
	}
	if res.MatchedCount == 0 {
		return s.missOutcome(ctx, swap.ID)
	}
	return nil
}

func (s *MongoSwapStore) DeleteIfStatus(ctx context.Context, id string, expected models.SwapStatus) error {
	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": id, "status": expected})
	if err != nil {
		return fmt.Errorf("delete swap request: %w", err)
	}
	if res.DeletedCount == 0 {
		return s.missOutcome(ctx, id)
	}
	return nil
}

// missOutcome tells apart a vanished document from one whose status moved on.
func (s *MongoSwapStore) missOutcome(ctx context.Context, id string) error {
	n, err := s.collection.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("count swap request: %w", err)
	}
	if n == 0 {
		return ErrNoRecord
	}
	return ErrStatusChanged
}

func swapFilter(q SwapQuery) bson.M {
	filter := bson.M{}
	if q.FromUserID != "" {
		filter["from_user_id"] = q.FromUserID
	}
	if q.ToUserID != "" {
		filter["to_user_id"] = q.ToUserID
	}
	if q.Status != "" {
		filter["status"] = q.Status
	}
	return filter
}
