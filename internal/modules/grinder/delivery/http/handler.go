package http

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"anoa.com/proofofgrind/internal/entity"
	grinderDto "anoa.com/proofofgrind/internal/modules/grinder/dto"
	grinderService "anoa.com/proofofgrind/internal/modules/grinder/service"
	"anoa.com/proofofgrind/internal/modules/tier"
	"anoa.com/proofofgrind/pkg/address"
	"anoa.com/proofofgrind/pkg/apperror"
	"anoa.com/proofofgrind/pkg/response"
	"anoa.com/proofofgrind/pkg/validator"
	"github.com/gin-gonic/gin"
)

const defaultHistoryLimit = 20

type GrinderHandler struct {
	service grinderService.GrinderService
	now     func() time.Time
}

func NewGrinderHandler(service grinderService.GrinderService) *GrinderHandler {
	return &GrinderHandler{service: service, now: time.Now}
}

func (h *GrinderHandler) Register(c *gin.Context) {
	addr, err := response.GetAddress(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.Register(c.Request.Context(), addr, h.now()); err != nil {
		response.ResponseError(c, err)
		return
	}

	h.respondStats(c, http.StatusCreated, addr)
}

func (h *GrinderHandler) Grind(c *gin.Context) {
	addr, err := response.GetAddress(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	now := h.now()
	if err := h.service.Grind(c.Request.Context(), addr, now); err != nil {
		if errors.Is(err, apperror.ErrCooldownActive) {
			wait := h.service.TimeUntilNextGrind(addr, now)
			c.Header("Retry-After", strconv.FormatInt(ceilSeconds(wait), 10))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":               err.Error(),
				"retry_after_seconds": ceilSeconds(wait),
			})
			return
		}
		response.ResponseError(c, err)
		return
	}

	h.respondStats(c, http.StatusOK, addr)
}

func (h *GrinderHandler) Boost(c *gin.Context) {
	var req grinderDto.BoostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	addr, err := response.GetAddress(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.Boost(c.Request.Context(), addr, req.Target, h.now()); err != nil {
		response.ResponseError(c, err)
		return
	}

	h.respondStats(c, http.StatusOK, addr)
}

func (h *GrinderHandler) CheckIn(c *gin.Context) {
	addr, err := response.GetAddress(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.CheckIn(c.Request.Context(), addr, h.now()); err != nil {
		response.ResponseError(c, err)
		return
	}

	h.respondStats(c, http.StatusOK, addr)
}

func (h *GrinderHandler) GetStats(c *gin.Context) {
	h.respondStats(c, http.StatusOK, c.Param("address"))
}

func (h *GrinderHandler) IsRegistered(c *gin.Context) {
	addr, err := h.pathAddress(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, grinderDto.RegisteredResponse{
		Address:    addr,
		Registered: h.service.IsRegistered(addr),
	})
}

func (h *GrinderHandler) GetCooldown(c *gin.Context) {
	addr, err := h.pathAddress(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	now := h.now()
	c.JSON(http.StatusOK, grinderDto.CooldownResponse{
		Address:               addr,
		CanGrind:              h.service.CanGrind(addr, now),
		SecondsUntilNextGrind: ceilSeconds(h.service.TimeUntilNextGrind(addr, now)),
	})
}

func (h *GrinderHandler) GetHistory(c *gin.Context) {
	var query grinderDto.HistoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}
	if query.Limit == 0 {
		query.Limit = defaultHistoryLimit
	}

	logs, err := h.service.History(c.Request.Context(), c.Param("address"), query.Limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": toPointLogResponses(logs)})
}

func (h *GrinderHandler) GetTokenURI(c *gin.Context) {
	tokenID, err := strconv.ParseUint(c.Param("token_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid token id"})
		return
	}

	uri, err := h.service.TokenURI(tokenID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, grinderDto.TokenURIResponse{TokenID: tokenID, TokenURI: uri})
}

// pathAddress normalizes the :address path parameter.
func (h *GrinderHandler) pathAddress(c *gin.Context) (string, error) {
	return address.Normalize(c.Param("address"))
}

func (h *GrinderHandler) respondStats(c *gin.Context, status int, addr string) {
	stats, err := h.service.GetStats(addr)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(status, ToStatsResponse(stats))
}

// ToStatsResponse converts engine stats to the public representation.
func ToStatsResponse(st grinderService.Stats) grinderDto.GrinderStatsResponse {
	return grinderDto.GrinderStatsResponse{
		Address:       st.Address,
		TokenID:       st.TokenID,
		TotalGrinds:   st.TotalGrinds,
		CurrentStreak: st.CurrentStreak,
		BestStreak:    st.BestStreak,
		Points:        st.Points,
		Tier:          st.Tier.String(),
		TierStatus:    tier.StatusOf(st.TotalGrinds),
		LastGrindAt:   timePtr(st.LastGrindAt),
		LastCheckInAt: timePtr(st.LastCheckInAt),
		RegisteredAt:  st.RegisteredAt,
	}
}

func toPointLogResponses(logs []entity.PointLog) []grinderDto.PointLogResponse {
	out := make([]grinderDto.PointLogResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, grinderDto.PointLogResponse{
			ActionType:   l.ActionType,
			Points:       l.Points,
			Counterparty: l.Counterparty,
			CreatedAt:    l.CreatedAt,
		})
	}
	return out
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	return int64(math.Ceil(d.Seconds()))
}
