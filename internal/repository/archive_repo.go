package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"moonhollow/internal/model"
)

// ArchiveRepo stores finished-game records. Write-only from the game's point
// of view; the history endpoint reads it.
type ArchiveRepo interface {
	SaveRecord(ctx context.Context, rec *model.GameRecord) error
	ListRecent(ctx context.Context, limit int64) ([]model.GameRecord, error)
}

type archiveRepo struct {
	collection *mongo.Collection
}

// NewArchiveRepo creates a new archive repository
func NewArchiveRepo(db *mongo.Database) ArchiveRepo {
	return &archiveRepo{
		collection: db.Collection("games"),
	}
}

func (r *archiveRepo) SaveRecord(ctx context.Context, rec *model.GameRecord) error {
	_, err := r.collection.InsertOne(ctx, rec)
	return err
}

func (r *archiveRepo) ListRecent(ctx context.Context, limit int64) ([]model.GameRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "endedAt", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []model.GameRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}
