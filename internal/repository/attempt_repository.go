package repository

import (
	"context"
	"time"

	"exam-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type AttemptRepository struct {
	Col *mongo.Collection
}

func NewAttemptRepository(db *mongo.Database) *AttemptRepository {
	return &AttemptRepository{Col: db.Collection("attempts")}
}

func (r *AttemptRepository) FindByID(ctx context.Context, id string) (*models.Attempt, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	var attempt models.Attempt
	err = r.Col.FindOne(ctx, bson.M{"_id": objID}).Decode(&attempt)
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

// FindInProgress returns the student's single in-progress attempt for a
// series, or mongo.ErrNoDocuments.
func (r *AttemptRepository) FindInProgress(ctx context.Context, studentID, seriesID string) (*models.Attempt, error) {
	var attempt models.Attempt
	err := r.Col.FindOne(ctx, bson.M{
		"student_id": studentID,
		"series_id":  seriesID,
		"status":     models.AttemptInProgress,
	}).Decode(&attempt)
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *AttemptRepository) Create(ctx context.Context, attempt *models.Attempt) error {
	res, err := r.Col.InsertOne(ctx, attempt)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		attempt.ID = oid.Hex()
	}
	return nil
}

// SaveProgress overwrites the full response set on an unsubmitted attempt.
// A very-late save on an already-expired attempt still lands; the status
// filter only rejects a save racing a submit, so a completed attempt can
// never be reopened. Returns (matched, error).
func (r *AttemptRepository) SaveProgress(ctx context.Context, id string, responses []models.Response, remainingHint int, at time.Time) (bool, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, err
	}
	res, err := r.Col.UpdateOne(ctx,
		bson.M{"_id": objID, "status": bson.M{"$ne": models.AttemptCompleted}},
		bson.M{"$set": bson.M{
			"responses":      responses,
			"remaining_hint": remainingHint,
			"last_saved_at":  at,
		}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// Complete freezes a scored attempt. Expired-but-unsubmitted attempts may
// still complete (the student submits what was last saved); a duplicate
// submit matches nothing and can never overwrite stored scores.
// Returns (matched, error).
func (r *AttemptRepository) Complete(ctx context.Context, attempt *models.Attempt) (bool, error) {
	objID, err := primitive.ObjectIDFromHex(attempt.ID)
	if err != nil {
		return false, err
	}
	res, err := r.Col.UpdateOne(ctx,
		bson.M{"_id": objID, "status": bson.M{"$ne": models.AttemptCompleted}},
		bson.M{"$set": bson.M{
			"status":       models.AttemptCompleted,
			"responses":    attempt.Responses,
			"submitted_at": attempt.SubmittedAt,
			"score":        attempt.Score,
			"max_score":    attempt.MaxScore,
			"percentage":   attempt.Percentage,
		}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// MarkExpired transitions an in-progress attempt to expired. Lazy expiry
// side effect of read paths; a no-op when a submit won the race.
func (r *AttemptRepository) MarkExpired(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Col.UpdateOne(ctx,
		bson.M{"_id": objID, "status": models.AttemptInProgress},
		bson.M{"$set": bson.M{"status": models.AttemptExpired}},
	)
	return err
}

func (r *AttemptRepository) FindCompletedBySeries(ctx context.Context, seriesID string) ([]models.Attempt, error) {
	cur, err := r.Col.Find(ctx, bson.M{
		"series_id": seriesID,
		"status":    models.AttemptCompleted,
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var attempts []models.Attempt
	for cur.Next(ctx) {
		var a models.Attempt
		if err := cur.Decode(&a); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, nil
}

func (r *AttemptRepository) FindCompletedByStudent(ctx context.Context, studentID string) ([]models.Attempt, error) {
	cur, err := r.Col.Find(ctx, bson.M{
		"student_id": studentID,
		"status":     models.AttemptCompleted,
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var attempts []models.Attempt
	for cur.Next(ctx) {
		var a models.Attempt
		if err := cur.Decode(&a); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, nil
}
