package service

import (
	"context"
	"time"

	"exam-service/internal/models"
)

// Narrow store interfaces implemented by the Mongo repositories. Services
// depend on these so tests can run against in-memory fakes. Lookups report
// missing documents with mongo.ErrNoDocuments.

type SeriesStore interface {
	FindByID(ctx context.Context, id string) (*models.TestSeries, error)
	FindAll(ctx context.Context) ([]models.TestSeries, error)
}

// QuestionBank is the read-only contract against the question bank,
// used exclusively at snapshot-build time.
type QuestionBank interface {
	FindByIDs(ctx context.Context, ids []string) ([]models.Question, error)
}

type AttemptStore interface {
	FindByID(ctx context.Context, id string) (*models.Attempt, error)
	FindInProgress(ctx context.Context, studentID, seriesID string) (*models.Attempt, error)
	Create(ctx context.Context, attempt *models.Attempt) error
	SaveProgress(ctx context.Context, id string, responses []models.Response, remainingHint int, at time.Time) (bool, error)
	Complete(ctx context.Context, attempt *models.Attempt) (bool, error)
	MarkExpired(ctx context.Context, id string) error
	FindCompletedBySeries(ctx context.Context, seriesID string) ([]models.Attempt, error)
	FindCompletedByStudent(ctx context.Context, studentID string) ([]models.Attempt, error)
}

type CounterStore interface {
	Find(ctx context.Context, studentID, seriesID string) (*models.AttemptCounter, error)
	Increment(ctx context.Context, studentID, seriesID string, expectedCount int, at time.Time) (bool, error)
	Decrement(ctx context.Context, studentID, seriesID string) error
}
