package http

import (
	"net/http"

	leaderboardDto "anoa.com/proofofgrind/internal/modules/leaderboard/dto"
	leaderboardService "anoa.com/proofofgrind/internal/modules/leaderboard/service"
	"anoa.com/proofofgrind/pkg/response"
	"anoa.com/proofofgrind/pkg/validator"
	"github.com/gin-gonic/gin"
)

type LeaderboardHandler struct {
	service leaderboardService.LeaderboardService
}

func NewLeaderboardHandler(service leaderboardService.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{service: service}
}

func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	var query leaderboardDto.LeaderboardQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	// Zero means the whole board.
	c.JSON(http.StatusOK, gin.H{"data": h.service.GetLeaderboard(query.Limit)})
}

func (h *LeaderboardHandler) GetTopGrinders(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.service.TopGrinders()})
}

func (h *LeaderboardHandler) GetLatestSnapshot(c *gin.Context) {
	snap, err := h.service.GetLatestSnapshot(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	if snap == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no leaderboard snapshot yet"})
		return
	}

	c.JSON(http.StatusOK, snap)
}
