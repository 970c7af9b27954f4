package repository

import (
	"context"
	"time"

	"exam-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CounterRepository maintains one attempt counter per (student, series)
// pair. Increments are compare-and-swap updates so two racing starts can
// never both consume the same attempt slot.
type CounterRepository struct {
	Col *mongo.Collection
}

func NewCounterRepository(db *mongo.Database) *CounterRepository {
	return &CounterRepository{Col: db.Collection("attempt_counters")}
}

// Find returns the counter for the pair, or nil when the student has never
// started this series.
func (r *CounterRepository) Find(ctx context.Context, studentID, seriesID string) (*models.AttemptCounter, error) {
	var counter models.AttemptCounter
	err := r.Col.FindOne(ctx, bson.M{
		"student_id": studentID,
		"series_id":  seriesID,
	}).Decode(&counter)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &counter, nil
}

// Increment bumps the counter only if it still holds expectedCount, and
// upserts the first record when expectedCount is zero. Returns false when
// another start won the race.
func (r *CounterRepository) Increment(ctx context.Context, studentID, seriesID string, expectedCount int, at time.Time) (bool, error) {
	filter := bson.M{
		"student_id":    studentID,
		"series_id":     seriesID,
		"attempt_count": expectedCount,
	}
	update := bson.M{
		"$inc": bson.M{"attempt_count": 1},
		"$set": bson.M{"last_attempt_at": at},
	}
	res, err := r.Col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(expectedCount == 0))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Upsert raced another first attempt.
			return false, nil
		}
		return false, err
	}
	return res.MatchedCount > 0 || res.UpsertedCount > 0, nil
}

// Decrement is the compensating step when attempt creation fails after the
// counter was already incremented; the student must not lose a slot.
func (r *CounterRepository) Decrement(ctx context.Context, studentID, seriesID string) error {
	_, err := r.Col.UpdateOne(ctx,
		bson.M{
			"student_id":    studentID,
			"series_id":     seriesID,
			"attempt_count": bson.M{"$gt": 0},
		},
		bson.M{"$inc": bson.M{"attempt_count": -1}},
	)
	return err
}
