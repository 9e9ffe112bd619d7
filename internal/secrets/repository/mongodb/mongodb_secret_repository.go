// Package mongodb stores secret documents and the activation record in MongoDB.
package mongodb

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	cryptoDomain "github.com/allisson/bluegreen/internal/crypto/domain"
	"github.com/allisson/bluegreen/internal/database"
	apperrors "github.com/allisson/bluegreen/internal/errors"
	secretsDomain "github.com/allisson/bluegreen/internal/secrets/domain"
)

// BSON binary subtypes of the secret field.
const (
	genericBinarySubtype   byte = 0x00
	encryptedBinarySubtype byte = 0x06
)

type secretDocument struct {
	ID     string      `bson:"_id"`
	Secret bson.Binary `bson:"secret"`
}

func newSecretDocument(secret *secretsDomain.Secret) secretDocument {
	return secretDocument{
		ID:     secret.ID,
		Secret: bson.Binary{Subtype: genericBinarySubtype, Data: secret.Ciphertext},
	}
}

// toSecret rejects subtype 6 values, written by MongoDB client-side field
// level encryption, whose layout this store does not read.
func (d secretDocument) toSecret() (*secretsDomain.Secret, error) {
	if d.Secret.Subtype == encryptedBinarySubtype {
		return nil, apperrors.Wrapf(
			cryptoDomain.ErrInvalidCiphertext,
			"secret %s holds a client-side field level encryption payload",
			d.ID,
		)
	}
	return &secretsDomain.Secret{ID: d.ID, Ciphertext: d.Secret.Data}, nil
}

// MongoSecretRepository keeps each color in the collection secrets_<color>.
type MongoSecretRepository struct {
	db *mongo.Database
}

func (r *MongoSecretRepository) collection(color secretsDomain.Color) *mongo.Collection {
	return r.db.Collection(secretsDomain.SecretsCollection(color))
}

func (r *MongoSecretRepository) Upsert(ctx context.Context, color secretsDomain.Color, secret *secretsDomain.Secret) error {
	_, err := r.collection(color).ReplaceOne(
		ctx,
		bson.D{{Key: "_id", Value: secret.ID}},
		newSecretDocument(secret),
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return database.Classify(err, "failed to upsert secret")
	}
	return nil
}

func (r *MongoSecretRepository) Create(ctx context.Context, color secretsDomain.Color, secret *secretsDomain.Secret) error {
	_, err := r.collection(color).InsertOne(ctx, newSecretDocument(secret))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return secretsDomain.ErrSecretExists
		}
		return database.Classify(err, "failed to create secret")
	}
	return nil
}

func (r *MongoSecretRepository) Get(ctx context.Context, color secretsDomain.Color, id string) (*secretsDomain.Secret, error) {
	var doc secretDocument
	if err := r.collection(color).FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, secretsDomain.ErrSecretNotFound
		}
		return nil, database.Classify(err, "failed to get secret")
	}
	return doc.toSecret()
}

// Iterate streams the collection through a cursor in natural order.
func (r *MongoSecretRepository) Iterate(
	ctx context.Context,
	color secretsDomain.Color,
	fn func(*secretsDomain.Secret) error,
) (err error) {
	cursor, err := r.collection(color).Find(ctx, bson.D{})
	if err != nil {
		return database.Classify(err, "failed to list secrets")
	}
	defer func() {
		if closeErr := cursor.Close(context.Background()); closeErr != nil && err == nil {
			err = database.Classify(closeErr, "failed to close secrets cursor")
		}
	}()

	for cursor.Next(ctx) {
		var doc secretDocument
		if err := cursor.Decode(&doc); err != nil {
			return apperrors.Wrap(err, "failed to decode secret")
		}
		secret, err := doc.toSecret()
		if err != nil {
			return err
		}
		if err := fn(secret); err != nil {
			return err
		}
	}
	if err := cursor.Err(); err != nil {
		return database.Classify(err, "failed to iterate secrets")
	}
	return nil
}

func (r *MongoSecretRepository) Count(ctx context.Context, color secretsDomain.Color) (int64, error) {
	count, err := r.collection(color).CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, database.Classify(err, "failed to count secrets")
	}
	return count, nil
}

// Drop drops the collection. MongoDB treats a missing collection as success.
func (r *MongoSecretRepository) Drop(ctx context.Context, color secretsDomain.Color) error {
	if err := r.collection(color).Drop(ctx); err != nil {
		return database.Classify(err, "failed to drop secrets")
	}
	return nil
}

// NewMongoSecretRepository creates a secret repository over db.
func NewMongoSecretRepository(db *mongo.Database) *MongoSecretRepository {
	return &MongoSecretRepository{db: db}
}
