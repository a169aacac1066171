package db

import (
	"context"
	"errors"
	"time"

	"github.com/ukydev/carbvium/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrUserNotFound is returned when no user matches the lookup.
var ErrUserNotFound = errors.New("user not found")

// ErrDuplicateUser is returned when the email is already registered.
var ErrDuplicateUser = errors.New("user already exists")

// UserCollection defines the interface for user database operations
type UserCollection interface {
	InsertUser(ctx context.Context, user models.User) error
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id string) error
}

// TokenRevocations stores logged-out access tokens
type TokenRevocations interface {
	RevokeToken(ctx context.Context, token models.RevokedToken) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// MongoUserCollection implements UserCollection for MongoDB
type MongoUserCollection struct {
	Collection *mongo.Collection
}

// InsertUser inserts a new user into the database
func (c *MongoUserCollection) InsertUser(ctx context.Context, user models.User) error {
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := c.Collection.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateUser
	}
	return err
}

// FindUserByID finds a user by their ID
func (c *MongoUserCollection) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	return c.findOne(ctx, bson.M{"_id": objectID})
}

// FindUserByEmail finds a user by their email
func (c *MongoUserCollection) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return c.findOne(ctx, bson.M{"email": email})
}

func (c *MongoUserCollection) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := c.Collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &user, nil
}

// UpdateLastLogin updates the last login time for a user
func (c *MongoUserCollection) UpdateLastLogin(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	now := time.Now()
	_, err = c.Collection.UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"last_login": now, "updated_at": now}},
	)
	return err
}

// MongoTokenRevocations implements TokenRevocations for MongoDB
type MongoTokenRevocations struct {
	Collection *mongo.Collection
}

// RevokeToken records a token id as logged out. Revoking twice is not an error.
func (c *MongoTokenRevocations) RevokeToken(ctx context.Context, token models.RevokedToken) error {
	if token.RevokedAt.IsZero() {
		token.RevokedAt = time.Now()
	}
	_, err := c.Collection.InsertOne(ctx, token)
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}

// IsRevoked reports whether the token id has been logged out
func (c *MongoTokenRevocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	count, err := c.Collection.CountDocuments(ctx, bson.M{"_id": tokenID})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
