package handlers

import (
	"context"
	"net/http"

	"exam-service/internal/service"

	"github.com/gin-gonic/gin"
)

type SeriesHandler struct {
	Service *service.SeriesService
}

func NewSeriesHandler(s *service.SeriesService) *SeriesHandler {
	return &SeriesHandler{Service: s}
}

func (h *SeriesHandler) ListSeries(c *gin.Context) {
	series, err := h.Service.ListSeries(context.Background())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, series)
}

func (h *SeriesHandler) GetSeries(c *gin.Context) {
	series, err := h.Service.GetSeries(context.Background(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, series)
}
