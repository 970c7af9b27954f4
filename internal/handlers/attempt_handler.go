package handlers

import (
	"context"
	"net/http"
	"time"

	"exam-service/internal/models"
	"exam-service/internal/service"

	"github.com/gin-gonic/gin"
)

type AttemptHandler struct {
	Service *service.AttemptService
}

func NewAttemptHandler(s *service.AttemptService) *AttemptHandler {
	return &AttemptHandler{Service: s}
}

// StartAttempt creates a new timed attempt on a series.
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	var req struct {
		SeriesID    string `json:"series_id" binding:"required"`
		VariantCode string `json:"variant_code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	studentID := c.GetHeader("X-User-ID")
	attempt, err := h.Service.Start(context.Background(), studentID, req.SeriesID, req.VariantCode)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"attempt_id":        attempt.ID,
		"variant_code":      attempt.VariantCode,
		"sequence_num":      attempt.SequenceNum,
		"session_token":     attempt.SessionToken,
		"remaining_seconds": attempt.RemainingSeconds(time.Now()),
		"expires_at":        attempt.ExpiresAt,
		"question_count":    attempt.SnapshotQuestionCount(),
		"sections":          attempt.PublicSections(),
	})
}

// GetProgress returns the student's resumable attempt for a series, if any,
// with remaining time recomputed from the stored expiry.
func (h *AttemptHandler) GetProgress(c *gin.Context) {
	seriesID := c.Query("series_id")
	if seriesID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "series_id is required"})
		return
	}

	studentID := c.GetHeader("X-User-ID")
	attempt, remaining, err := h.Service.Resume(context.Background(), studentID, seriesID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"attempt_id":        attempt.ID,
		"status":            attempt.Status,
		"variant_code":      attempt.VariantCode,
		"remaining_seconds": remaining,
		"question_count":    attempt.SnapshotQuestionCount(),
		"sections":          attempt.PublicSections(),
		"responses":         attempt.Responses,
	})
}

// GetAttempt returns attempt status by id, owner-only.
func (h *AttemptHandler) GetAttempt(c *gin.Context) {
	attempt, ok := h.ownedAttempt(c)
	if !ok {
		return
	}

	resp := gin.H{
		"attempt_id":        attempt.ID,
		"series_id":         attempt.SeriesID,
		"status":            attempt.Status,
		"remaining_seconds": attempt.RemainingSeconds(time.Now()),
		"started_at":        attempt.StartedAt,
		"expires_at":        attempt.ExpiresAt,
	}
	if attempt.Status == models.AttemptCompleted {
		resp["score"] = attempt.Score
		resp["max_score"] = attempt.MaxScore
		resp["percentage"] = attempt.Percentage
		resp["submitted_at"] = attempt.SubmittedAt
	}
	c.JSON(http.StatusOK, resp)
}

// SaveProgress persists the full current response set. Idempotent,
// last-write-wins; the remaining-seconds field is advisory only.
func (h *AttemptHandler) SaveProgress(c *gin.Context) {
	attempt, ok := h.ownedAttempt(c)
	if !ok {
		return
	}

	var req struct {
		Responses        []models.Response `json:"responses"`
		RemainingSeconds int               `json:"remaining_seconds"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	if err := h.Service.SaveProgress(context.Background(), attempt.ID, req.Responses, req.RemainingSeconds); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": true, "attempt_id": attempt.ID})
}

// SubmitAttempt freezes the attempt and returns the scored result.
func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
	attempt, ok := h.ownedAttempt(c)
	if !ok {
		return
	}

	var req struct {
		Responses []models.Response `json:"responses"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	scored, err := h.Service.Submit(context.Background(), attempt.ID, req.Responses)
	if err != nil {
		respondError(c, err)
		return
	}

	perQuestion := make([]gin.H, 0, len(scored.Responses))
	for _, r := range scored.Responses {
		perQuestion = append(perQuestion, gin.H{
			"question_id":  r.QuestionID,
			"earned_marks": r.EarnedMarks,
			"status":       r.Status,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"attempt_id":   scored.ID,
		"score":        scored.Score,
		"max_score":    scored.MaxScore,
		"percentage":   scored.Percentage,
		"submitted_at": scored.SubmittedAt,
		"per_question": perQuestion,
	})
}

// GetAttemptsByStudent lists a student's completed attempts.
func (h *AttemptHandler) GetAttemptsByStudent(c *gin.Context) {
	studentID := c.Param("id")
	attempts, err := h.Service.History(context.Background(), studentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	summaries := make([]gin.H, 0, len(attempts))
	for _, a := range attempts {
		summaries = append(summaries, gin.H{
			"attempt_id":   a.ID,
			"series_id":    a.SeriesID,
			"sequence_num": a.SequenceNum,
			"score":        a.Score,
			"max_score":    a.MaxScore,
			"percentage":   a.Percentage,
			"submitted_at": a.SubmittedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"attempts": summaries})
}

// ownedAttempt loads the attempt from the path id and enforces that the
// caller owns it.
func (h *AttemptHandler) ownedAttempt(c *gin.Context) (*models.Attempt, bool) {
	attempt, err := h.Service.Get(context.Background(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if attempt.StudentID != c.GetHeader("X-User-ID") {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Attempt belongs to another student",
			"code":  "ATTEMPT_ACCESS_DENIED",
		})
		return nil, false
	}
	return attempt, true
}
