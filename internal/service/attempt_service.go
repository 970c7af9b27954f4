package service

import (
	"context"
	"errors"
	"time"

	"exam-service/internal/models"
	"exam-service/internal/scoring"
	"exam-service/internal/variant"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// AttemptService owns the attempt lifecycle: the in-progress → completed /
// expired state machine, time accounting, progress persistence and the
// attempt-count/cooldown guard. Expiry is evaluated lazily on every entry
// point from the stored expires_at; there is no background sweep.
type AttemptService struct {
	Attempts  AttemptStore
	Counters  CounterStore
	Series    SeriesStore
	Questions QuestionBank

	// OnExpire, when set, is notified after an attempt transitions to
	// expired via lazy expiry.
	OnExpire func(attemptID string)

	selector *variant.Selector
	now      func() time.Time
}

func NewAttemptService(attempts AttemptStore, counters CounterStore, series SeriesStore, questions QuestionBank) *AttemptService {
	return &AttemptService{
		Attempts:  attempts,
		Counters:  counters,
		Series:    series,
		Questions: questions,
		selector:  variant.NewSelector(),
		now:       time.Now,
	}
}

// Guard is the outcome of the attempt-count/cooldown check.
type Guard struct {
	AttemptCount      int
	RemainingAttempts int
}

// CanStart applies the guard rules without consuming a slot: attempt limit
// first, then cooldown (live series only; practice series have none).
func (s *AttemptService) CanStart(ctx context.Context, studentID string, series *models.TestSeries, now time.Time) (*Guard, error) {
	counter, err := s.Counters.Find(ctx, studentID, series.ID)
	if err != nil {
		return nil, err
	}

	count := 0
	if counter != nil {
		count = counter.AttemptCount
	}
	guard := &Guard{AttemptCount: count}
	if series.MaxAttempts > 0 {
		guard.RemainingAttempts = series.MaxAttempts - count
		if guard.RemainingAttempts <= 0 {
			guard.RemainingAttempts = 0
			return guard, ErrAttemptLimitExceeded
		}
	}

	if cd := series.CooldownDuration(); cd > 0 && counter != nil {
		if now.Sub(counter.LastAttemptAt) < cd {
			return guard, ErrCooldownActive
		}
	}

	return guard, nil
}

// Start creates a new attempt: guard check, variant selection, snapshot
// build, then counter increment + attempt insert. The increment is a CAS
// on the count observed by the guard, and a failed insert is compensated
// by a decrement, so the pair lands together or not at all.
func (s *AttemptService) Start(ctx context.Context, studentID, seriesID, variantCode string) (*models.Attempt, error) {
	series, err := s.Series.FindByID(ctx, seriesID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSeriesNotFound
		}
		return nil, err
	}

	now := s.now()
	if !series.IsAvailableAt(now) {
		return nil, ErrSeriesNotAvailable
	}

	// Exactly one in-progress attempt per (student, series). A stale one
	// past its expiry is lazily expired and no longer blocks.
	if existing, err := s.Attempts.FindInProgress(ctx, studentID, seriesID); err == nil {
		if !existing.IsExpired(now) {
			return nil, ErrAttemptInProgress
		}
		if err := s.Attempts.MarkExpired(ctx, existing.ID); err != nil {
			return nil, err
		}
		s.notifyExpired(existing.ID)
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	guard, err := s.CanStart(ctx, studentID, series, now)
	if err != nil {
		return nil, err
	}

	// Pool draws fail fast on misconfiguration, before any slot is spent.
	code, resolved, err := s.selector.Select(series, variantCode)
	if err != nil {
		return nil, err
	}

	sections, maxScore, err := s.buildSnapshot(ctx, resolved)
	if err != nil {
		return nil, err
	}

	ok, err := s.Counters.Increment(ctx, studentID, seriesID, guard.AttemptCount, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrStartConflict
	}

	attempt := &models.Attempt{
		SeriesID:      seriesID,
		StudentID:     studentID,
		VariantCode:   code,
		SequenceNum:   guard.AttemptCount + 1,
		SessionToken:  uuid.NewString(),
		Sections:      sections,
		Responses:     emptyResponses(sections),
		Status:        models.AttemptInProgress,
		MarkingPolicy: series.MultipleMarkingPolicy,
		StartedAt:     now,
		ExpiresAt:     now.Add(time.Duration(series.DurationSeconds) * time.Second),
		MaxScore:      maxScore,
	}

	if err := s.Attempts.Create(ctx, attempt); err != nil {
		// Give the slot back; the student must not lose an attempt to a
		// storage failure.
		_ = s.Counters.Decrement(ctx, studentID, seriesID)
		return nil, err
	}

	return attempt, nil
}

// buildSnapshot denormalizes the resolved arrangement into the attempt:
// full question content and answer specification, copied at start time so
// later bank edits never reach this attempt.
func (s *AttemptService) buildSnapshot(ctx context.Context, resolved []variant.ResolvedSection) ([]models.SnapshotSection, float64, error) {
	var ids []string
	for _, sec := range resolved {
		for _, q := range sec.Questions {
			ids = append(ids, q.QuestionID)
		}
	}

	bank, err := s.Questions.FindByIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	byID := make(map[string]models.Question, len(bank))
	for _, q := range bank {
		byID[q.ID] = q
	}

	var sections []models.SnapshotSection
	maxScore := 0.0
	for _, sec := range resolved {
		snap := models.SnapshotSection{Name: sec.Name}
		for _, ref := range sec.Questions {
			q, ok := byID[ref.QuestionID]
			if !ok {
				return nil, 0, &variant.ConfigError{Msg: "question " + ref.QuestionID + " missing from bank"}
			}
			primary := q.PrimaryTranslation()
			snap.Questions = append(snap.Questions, models.SnapshotQuestion{
				QuestionID:       q.ID,
				Type:             q.Type,
				Marks:            ref.Marks,
				NegativeMarks:    ref.NegativeMarks,
				Text:             primary.Text,
				Options:          primary.Options,
				Translations:     q.Translations,
				CorrectOptionIDs: q.CorrectOptionIDs,
				NumericalAnswer:  q.NumericalAnswer,
				MatrixAnswer:     q.MatrixAnswer,
			})
			maxScore += ref.Marks
		}
		sections = append(sections, snap)
	}
	return sections, maxScore, nil
}

func emptyResponses(sections []models.SnapshotSection) []models.Response {
	var responses []models.Response
	for _, sec := range sections {
		for _, q := range sec.Questions {
			responses = append(responses, models.Response{QuestionID: q.QuestionID})
		}
	}
	return responses
}

// Resume returns the student's live attempt with recomputed remaining
// time. An attempt found past its expiry is transitioned to expired as a
// side effect and reported as no active attempt.
func (s *AttemptService) Resume(ctx context.Context, studentID, seriesID string) (*models.Attempt, int, error) {
	attempt, err := s.Attempts.FindInProgress(ctx, studentID, seriesID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, 0, ErrNoActiveAttempt
		}
		return nil, 0, err
	}

	now := s.now()
	if attempt.IsExpired(now) {
		if err := s.Attempts.MarkExpired(ctx, attempt.ID); err != nil {
			return nil, 0, err
		}
		s.notifyExpired(attempt.ID)
		return nil, 0, ErrNoActiveAttempt
	}

	return attempt, attempt.RemainingSeconds(now), nil
}

// Get returns any attempt by id, applying lazy expiry first.
func (s *AttemptService) Get(ctx context.Context, attemptID string) (*models.Attempt, error) {
	attempt, err := s.Attempts.FindByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrAttemptNotFound
		}
		return nil, err
	}

	if attempt.Status == models.AttemptInProgress && attempt.IsExpired(s.now()) {
		if err := s.Attempts.MarkExpired(ctx, attempt.ID); err != nil {
			return nil, err
		}
		s.notifyExpired(attempt.ID)
		attempt.Status = models.AttemptExpired
	}
	return attempt, nil
}

func (s *AttemptService) notifyExpired(attemptID string) {
	if s.OnExpire != nil {
		s.OnExpire(attemptID)
	}
}

// SaveProgress overwrites the full response set, last-write-wins. The
// remaining-seconds figure is advisory client telemetry and never feeds
// expiry; a save at or past the boundary still lands, and only a
// completed attempt rejects it.
func (s *AttemptService) SaveProgress(ctx context.Context, attemptID string, responses []models.Response, remainingSeconds int) error {
	attempt, err := s.Attempts.FindByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrAttemptNotFound
		}
		return err
	}
	if attempt.Status == models.AttemptCompleted {
		return ErrAttemptAlreadyCompleted
	}

	merged := mergeResponses(attempt.Responses, responses, s.now())
	matched, err := s.Attempts.SaveProgress(ctx, attemptID, merged, remainingSeconds, s.now())
	if err != nil {
		return err
	}
	if !matched {
		// A submit completed the attempt between our read and this write.
		return ErrAttemptAlreadyCompleted
	}
	return nil
}

// Submit freezes the attempt: merges the final responses into the stored
// set by question identity, scores the snapshot, and transitions to
// completed. A submit arriving after the expiry moment but before any
// other interaction still wins; a duplicate submit is rejected without
// touching stored scores.
func (s *AttemptService) Submit(ctx context.Context, attemptID string, responses []models.Response) (*models.Attempt, error) {
	attempt, err := s.Attempts.FindByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrAttemptNotFound
		}
		return nil, err
	}
	if attempt.Status == models.AttemptCompleted {
		return nil, ErrAttemptAlreadyCompleted
	}

	now := s.now()
	merged := mergeResponses(attempt.Responses, responses, now)

	engine := scoring.NewEngine(attempt.MarkingPolicy)
	scored, agg := engine.Score(attempt.Sections, merged)

	attempt.Responses = scored
	attempt.SubmittedAt = now
	attempt.Score = agg.Score
	attempt.MaxScore = agg.MaxScore
	attempt.Percentage = agg.Percentage
	attempt.Status = models.AttemptCompleted

	matched, err := s.Attempts.Complete(ctx, attempt)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, ErrAttemptAlreadyCompleted
	}
	return attempt, nil
}

// History lists a student's completed attempts.
func (s *AttemptService) History(ctx context.Context, studentID string) ([]models.Attempt, error) {
	return s.Attempts.FindCompletedByStudent(ctx, studentID)
}

// mergeResponses overlays incoming response state onto the stored set by
// question identity. Rows absent from the incoming payload keep their
// stored state, and stored timing/visit metadata survives an incoming row
// that does not carry it; the attempt never loses what the client already
// tracked.
func mergeResponses(stored, incoming []models.Response, now time.Time) []models.Response {
	merged := make([]models.Response, len(stored))
	copy(merged, stored)
	index := make(map[string]int, len(merged))
	for i, r := range merged {
		index[r.QuestionID] = i
	}

	for _, in := range incoming {
		i, ok := index[in.QuestionID]
		if !ok {
			// Not part of the snapshot; scoring would ignore it anyway.
			continue
		}
		cur := merged[i]
		cur.Selected = in.Selected
		cur.MatrixSelected = in.MatrixSelected
		cur.Flagged = in.Flagged
		if in.Confidence != "" {
			cur.Confidence = in.Confidence
		}
		if in.TimeSpentSeconds > cur.TimeSpentSeconds {
			cur.TimeSpentSeconds = in.TimeSpentSeconds
		}
		if in.Attempts > cur.Attempts {
			cur.Attempts = in.Attempts
		}
		if !in.VisitedAt.IsZero() && (cur.VisitedAt.IsZero() || in.VisitedAt.Before(cur.VisitedAt)) {
			cur.VisitedAt = in.VisitedAt
		}
		if cur.VisitedAt.IsZero() {
			cur.VisitedAt = now
		}
		if !in.LastModifiedAt.IsZero() {
			cur.LastModifiedAt = in.LastModifiedAt
		} else {
			cur.LastModifiedAt = now
		}
		merged[i] = cur
	}

	return merged
}
