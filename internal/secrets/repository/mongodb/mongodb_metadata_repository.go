package mongodb

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/allisson/bluegreen/internal/database"
	apperrors "github.com/allisson/bluegreen/internal/errors"
	secretsDomain "github.com/allisson/bluegreen/internal/secrets/domain"
)

type metadataDocument struct {
	ID     string `bson:"_id"`
	Active string `bson:"active"`
}

// MongoMetadataRepository keeps the activation record in the metadata
// collection of the key vault database.
type MongoMetadataRepository struct {
	collection *mongo.Collection
}

func (r *MongoMetadataRepository) GetActive(ctx context.Context) (secretsDomain.Color, error) {
	var doc metadataDocument
	err := r.collection.FindOne(ctx, bson.D{{Key: "_id", Value: secretsDomain.ActivationRecordID}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", secretsDomain.ErrMetadataMissing
		}
		return "", database.Classify(err, "failed to get activation record")
	}

	color, err := secretsDomain.ParseColor(doc.Active)
	if err != nil {
		return "", apperrors.Wrapf(err, "activation record holds %q", doc.Active)
	}
	return color, nil
}

func (r *MongoMetadataRepository) SetActive(ctx context.Context, color secretsDomain.Color) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.D{{Key: "_id", Value: secretsDomain.ActivationRecordID}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "active", Value: color.String()}}}},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return database.Classify(err, "failed to set activation record")
	}
	return nil
}

// NewMongoMetadataRepository creates a metadata repository over keyVaultDB.
func NewMongoMetadataRepository(keyVaultDB *mongo.Database) *MongoMetadataRepository {
	return &MongoMetadataRepository{collection: keyVaultDB.Collection(secretsDomain.MetadataCollection)}
}
