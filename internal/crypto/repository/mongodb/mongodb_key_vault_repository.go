// Package mongodb implements the key vault on MongoDB. Documents borrow the
// field names of the client-side field level encryption key document, but the
// key material is wrapped by the local key manager and cannot be opened by the
// drivers' own CSFLE tooling.
package mongodb

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	cryptoDomain "github.com/allisson/bluegreen/internal/crypto/domain"
	"github.com/allisson/bluegreen/internal/database"
	apperrors "github.com/allisson/bluegreen/internal/errors"
)

const binarySubtypeUUID = 0x04

type masterKeyDocument struct {
	Provider string `bson:"provider"`
}

type dataKeyDocument struct {
	ID           bson.Binary       `bson:"_id"`
	KeyMaterial  []byte            `bson:"keyMaterial"`
	KeyAltNames  []string          `bson:"keyAltNames,omitempty"`
	MasterKey    masterKeyDocument `bson:"masterKey"`
	Status       int32             `bson:"status"`
	CreationDate time.Time         `bson:"creationDate"`
	UpdateDate   time.Time         `bson:"updateDate"`
}

func toDocument(dataKey *cryptoDomain.DataKey) dataKeyDocument {
	return dataKeyDocument{
		ID:           uuidBinary(dataKey.ID),
		KeyMaterial:  dataKey.KeyMaterial,
		KeyAltNames:  dataKey.KeyAltNames,
		MasterKey:    masterKeyDocument{Provider: dataKey.Provider},
		Status:       int32(dataKey.Status), //nolint:gosec // status is 0 or 1
		CreationDate: dataKey.CreatedAt,
		UpdateDate:   dataKey.UpdatedAt,
	}
}

func (d dataKeyDocument) toDomain() (*cryptoDomain.DataKey, error) {
	id, err := uuid.FromBytes(d.ID.Data)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to decode data key id")
	}
	return &cryptoDomain.DataKey{
		ID:          id,
		KeyMaterial: d.KeyMaterial,
		KeyAltNames: d.KeyAltNames,
		Provider:    d.MasterKey.Provider,
		Status:      int(d.Status),
		CreatedAt:   d.CreationDate.UTC(),
		UpdatedAt:   d.UpdateDate.UTC(),
	}, nil
}

func uuidBinary(id uuid.UUID) bson.Binary {
	return bson.Binary{Subtype: binarySubtypeUUID, Data: id[:]}
}

// MongoKeyVaultRepository implements KeyVaultRepository for MongoDB. The
// namespace selects both database and collection.
type MongoKeyVaultRepository struct {
	client *mongo.Client
}

func (r *MongoKeyVaultRepository) collection(ns cryptoDomain.Namespace) *mongo.Collection {
	return r.client.Database(ns.Database).Collection(ns.Collection)
}

// Drop removes the whole key vault collection, including its indexes.
func (r *MongoKeyVaultRepository) Drop(ctx context.Context, ns cryptoDomain.Namespace) error {
	if err := r.collection(ns).Drop(ctx); err != nil {
		return database.Classify(err, "failed to drop key vault "+ns.String())
	}
	return nil
}

// EnsureAltNameIndex creates the unique keyAltNames index, partial on the
// field existing, so a data key lookup by alternate name is unambiguous.
func (r *MongoKeyVaultRepository) EnsureAltNameIndex(ctx context.Context, ns cryptoDomain.Namespace) error {
	model := mongo.IndexModel{
		Keys: bson.D{{Key: "keyAltNames", Value: 1}},
		Options: options.Index().
			SetName("keyAltNames_1").
			SetUnique(true).
			SetPartialFilterExpression(bson.D{{Key: "keyAltNames", Value: bson.D{{Key: "$exists", Value: true}}}}),
	}

	if _, err := r.collection(ns).Indexes().CreateOne(ctx, model); err != nil {
		return database.Classify(err, "failed to create key alt name index on "+ns.String())
	}
	return nil
}

func (r *MongoKeyVaultRepository) Create(
	ctx context.Context,
	ns cryptoDomain.Namespace,
	dataKey *cryptoDomain.DataKey,
) error {
	if _, err := r.collection(ns).InsertOne(ctx, toDocument(dataKey)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			if strings.Contains(err.Error(), "keyAltNames") {
				return cryptoDomain.ErrDataKeyAltNameTaken
			}
			return cryptoDomain.ErrDataKeyExists
		}
		return database.Classify(err, "failed to create data key")
	}
	return nil
}

func (r *MongoKeyVaultRepository) Get(
	ctx context.Context,
	ns cryptoDomain.Namespace,
	id uuid.UUID,
) (*cryptoDomain.DataKey, error) {
	return r.findOne(ctx, ns, bson.D{{Key: "_id", Value: uuidBinary(id)}})
}

func (r *MongoKeyVaultRepository) GetByAltName(
	ctx context.Context,
	ns cryptoDomain.Namespace,
	altName string,
) (*cryptoDomain.DataKey, error) {
	return r.findOne(ctx, ns, bson.D{{Key: "keyAltNames", Value: altName}})
}

func (r *MongoKeyVaultRepository) Count(ctx context.Context, ns cryptoDomain.Namespace) (int64, error) {
	count, err := r.collection(ns).CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, database.Classify(err, "failed to count data keys")
	}
	return count, nil
}

func (r *MongoKeyVaultRepository) findOne(
	ctx context.Context,
	ns cryptoDomain.Namespace,
	filter bson.D,
) (*cryptoDomain.DataKey, error) {
	var doc dataKeyDocument
	if err := r.collection(ns).FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cryptoDomain.ErrDataKeyNotFound
		}
		return nil, database.Classify(err, "failed to get data key")
	}
	return doc.toDomain()
}

// NewMongoKeyVaultRepository creates a new MongoDB key vault repository.
func NewMongoKeyVaultRepository(client *mongo.Client) *MongoKeyVaultRepository {
	return &MongoKeyVaultRepository{client: client}
}
