package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/tech-arch1tect/sparkauth/services/logging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const CollectionName = "users"

type MongoStore struct {
	coll   *mongo.Collection
	hasher hasher
	logger *logging.Service
}

func NewMongoStore(db *mongo.Database, bcryptCost int, logger *logging.Service) *MongoStore {
	return &MongoStore{
		coll:   db.Collection(CollectionName),
		hasher: newHasher(bcryptCost),
		logger: logger,
	}
}

// EnsureIndexes creates the unique email index. It is idempotent.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("failed to create users email index: %w", err)
	}
	return nil
}

func (s *MongoStore) Create(ctx context.Context, user *User) error {
	if err := s.hasher.prepare(user, true); err != nil {
		return err
	}

	if _, err := s.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrEmailTaken
		}
		s.logger.Error("failed to insert user", zap.Error(err), zap.String("email", user.Email))
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *MongoStore) FindByID(ctx context.Context, id string) (*User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *MongoStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.findOne(ctx, bson.M{"email": NormalizeEmail(email)})
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M) (*User, error) {
	var user User
	if err := s.coll.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

func (s *MongoStore) Save(ctx context.Context, user *User) error {
	if err := s.hasher.prepare(user, false); err != nil {
		return err
	}

	result, err := s.coll.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": bson.M{
		"name":       user.Name,
		"email":      user.Email,
		"password":   user.Password,
		"role":       user.Role,
		"photo":      user.Photo,
		"bio":        user.Bio,
		"isVerified": user.IsVerified,
		"updatedAt":  user.UpdatedAt,
	}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrEmailTaken
		}
		s.logger.Error("failed to update user", zap.Error(err), zap.String("user_id", user.ID))
		return fmt.Errorf("failed to save user: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		s.logger.Error("failed to delete user", zap.Error(err), zap.String("user_id", id))
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context) ([]User, error) {
	cursor, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	all := make([]User, 0)
	if err := cursor.All(ctx, &all); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return all, nil
}
