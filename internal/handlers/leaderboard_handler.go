package handlers

import (
	"context"
	"net/http"

	"exam-service/internal/service"

	"github.com/gin-gonic/gin"
)

type LeaderboardHandler struct {
	Service *service.LeaderboardService
}

func NewLeaderboardHandler(s *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{Service: s}
}

func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	entries, err := h.Service.GetLeaderboard(context.Background(), c.Param("seriesId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"series_id":   c.Param("seriesId"),
		"leaderboard": entries,
	})
}
