package dto

import "time"

type SessionRequest struct {
	Address string `json:"address" binding:"required,eth_addr"`
}

type SessionResponse struct {
	Token     string    `json:"token"`
	Address   string    `json:"address"`
	ExpiresAt time.Time `json:"expires_at"`
}
