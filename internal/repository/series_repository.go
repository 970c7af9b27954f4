package repository

import (
	"context"

	"exam-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type SeriesRepository struct {
	Col *mongo.Collection
}

func NewSeriesRepository(db *mongo.Database) *SeriesRepository {
	return &SeriesRepository{Col: db.Collection("series")}
}

func (r *SeriesRepository) FindAll(ctx context.Context) ([]models.TestSeries, error) {
	cur, err := r.Col.Find(ctx, bson.M{"status": bson.M{"$ne": "deleted"}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var series []models.TestSeries
	for cur.Next(ctx) {
		var s models.TestSeries
		if err := cur.Decode(&s); err != nil {
			return nil, err
		}
		series = append(series, s)
	}
	return series, nil
}

func (r *SeriesRepository) FindByID(ctx context.Context, id string) (*models.TestSeries, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err // invalid id format
	}
	var series models.TestSeries
	err = r.Col.FindOne(ctx, bson.M{"_id": objID}).Decode(&series)
	if err != nil {
		return nil, err
	}
	return &series, nil
}
