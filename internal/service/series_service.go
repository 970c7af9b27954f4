package service

import (
	"context"
	"errors"

	"exam-service/internal/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// SeriesService is the read-side view of test series definitions.
// Authoring happens in the admin service.
type SeriesService struct {
	Series SeriesStore
}

func NewSeriesService(series SeriesStore) *SeriesService {
	return &SeriesService{Series: series}
}

func (s *SeriesService) GetSeries(ctx context.Context, id string) (*models.TestSeries, error) {
	series, err := s.Series.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSeriesNotFound
		}
		return nil, err
	}
	return series, nil
}

func (s *SeriesService) ListSeries(ctx context.Context) ([]models.TestSeries, error) {
	return s.Series.FindAll(ctx)
}
