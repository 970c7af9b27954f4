package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"exam-service/internal/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// In-memory store fakes backing the service tests. They mirror the Mongo
// repositories' conditional-update semantics, including the status filters
// on save/complete and the CAS counter increment.

type memSeriesStore struct {
	series map[string]*models.TestSeries
}

func newMemSeriesStore(series ...*models.TestSeries) *memSeriesStore {
	s := &memSeriesStore{series: map[string]*models.TestSeries{}}
	for _, sr := range series {
		s.series[sr.ID] = sr
	}
	return s
}

func (s *memSeriesStore) FindByID(_ context.Context, id string) (*models.TestSeries, error) {
	sr, ok := s.series[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *sr
	return &cp, nil
}

func (s *memSeriesStore) FindAll(_ context.Context) ([]models.TestSeries, error) {
	var out []models.TestSeries
	for _, sr := range s.series {
		out = append(out, *sr)
	}
	return out, nil
}

type memQuestionBank struct {
	questions map[string]models.Question
}

func newMemQuestionBank(questions ...models.Question) *memQuestionBank {
	b := &memQuestionBank{questions: map[string]models.Question{}}
	for _, q := range questions {
		b.questions[q.ID] = q
	}
	return b
}

func (b *memQuestionBank) FindByIDs(_ context.Context, ids []string) ([]models.Question, error) {
	var out []models.Question
	for _, id := range ids {
		if q, ok := b.questions[id]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

type memAttemptStore struct {
	mu         sync.Mutex
	attempts   map[string]*models.Attempt
	nextID     int
	failCreate bool
}

func newMemAttemptStore() *memAttemptStore {
	return &memAttemptStore{attempts: map[string]*models.Attempt{}}
}

func (s *memAttemptStore) FindByID(_ context.Context, id string) (*models.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attempts[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *a
	return &cp, nil
}

func (s *memAttemptStore) FindInProgress(_ context.Context, studentID, seriesID string) (*models.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.attempts {
		if a.StudentID == studentID && a.SeriesID == seriesID && a.Status == models.AttemptInProgress {
			cp := *a
			return &cp, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (s *memAttemptStore) Create(_ context.Context, attempt *models.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreate {
		return errors.New("simulated insert failure")
	}
	s.nextID++
	attempt.ID = fmt.Sprintf("attempt-%d", s.nextID)
	cp := *attempt
	s.attempts[attempt.ID] = &cp
	return nil
}

func (s *memAttemptStore) SaveProgress(_ context.Context, id string, responses []models.Response, remainingHint int, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attempts[id]
	if !ok || a.Status == models.AttemptCompleted {
		return false, nil
	}
	a.Responses = responses
	a.RemainingHint = remainingHint
	a.LastSavedAt = at
	return true, nil
}

func (s *memAttemptStore) Complete(_ context.Context, attempt *models.Attempt) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attempts[attempt.ID]
	if !ok || a.Status == models.AttemptCompleted {
		return false, nil
	}
	a.Status = models.AttemptCompleted
	a.Responses = attempt.Responses
	a.SubmittedAt = attempt.SubmittedAt
	a.Score = attempt.Score
	a.MaxScore = attempt.MaxScore
	a.Percentage = attempt.Percentage
	return true, nil
}

func (s *memAttemptStore) MarkExpired(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.attempts[id]; ok && a.Status == models.AttemptInProgress {
		a.Status = models.AttemptExpired
	}
	return nil
}

func (s *memAttemptStore) FindCompletedBySeries(_ context.Context, seriesID string) ([]models.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Attempt
	for _, a := range s.attempts {
		if a.SeriesID == seriesID && a.Status == models.AttemptCompleted {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *memAttemptStore) FindCompletedByStudent(_ context.Context, studentID string) ([]models.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Attempt
	for _, a := range s.attempts {
		if a.StudentID == studentID && a.Status == models.AttemptCompleted {
			out = append(out, *a)
		}
	}
	return out, nil
}

// put stores an attempt directly, for arranging test state.
func (s *memAttemptStore) put(attempt *models.Attempt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if attempt.ID == "" {
		s.nextID++
		attempt.ID = fmt.Sprintf("attempt-%d", s.nextID)
	}
	cp := *attempt
	s.attempts[attempt.ID] = &cp
}

type memCounterStore struct {
	mu       sync.Mutex
	counters map[string]*models.AttemptCounter
}

func newMemCounterStore() *memCounterStore {
	return &memCounterStore{counters: map[string]*models.AttemptCounter{}}
}

func counterKey(studentID, seriesID string) string {
	return studentID + "|" + seriesID
}

func (s *memCounterStore) Find(_ context.Context, studentID, seriesID string) (*models.AttemptCounter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.counters[counterKey(studentID, seriesID)]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (s *memCounterStore) Increment(_ context.Context, studentID, seriesID string, expectedCount int, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := counterKey(studentID, seriesID)
	c, ok := s.counters[key]
	if !ok {
		if expectedCount != 0 {
			return false, nil
		}
		s.counters[key] = &models.AttemptCounter{
			StudentID:     studentID,
			SeriesID:      seriesID,
			AttemptCount:  1,
			LastAttemptAt: at,
		}
		return true, nil
	}
	if c.AttemptCount != expectedCount {
		return false, nil
	}
	c.AttemptCount++
	c.LastAttemptAt = at
	return true, nil
}

func (s *memCounterStore) Decrement(_ context.Context, studentID, seriesID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.counters[counterKey(studentID, seriesID)]; ok && c.AttemptCount > 0 {
		c.AttemptCount--
	}
	return nil
}
