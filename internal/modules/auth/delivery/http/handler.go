package http

import (
	"net/http"
	"time"

	authDto "anoa.com/proofofgrind/internal/modules/auth/dto"
	authService "anoa.com/proofofgrind/internal/modules/auth/service"
	"anoa.com/proofofgrind/pkg/address"
	"anoa.com/proofofgrind/pkg/response"
	"anoa.com/proofofgrind/pkg/validator"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	service authService.SessionService
}

func NewAuthHandler(service authService.SessionService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) CreateSession(c *gin.Context) {
	var req authDto.SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	token, expiresAt, err := h.service.IssueToken(req.Address, time.Now())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, authDto.SessionResponse{
		Token:     token,
		Address:   address.MustNormalize(req.Address),
		ExpiresAt: expiresAt,
	})
}
