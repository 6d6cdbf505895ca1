package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/walletpulse/gatekeeper/core"
	"github.com/walletpulse/gatekeeper/service"
	"go.uber.org/zap"
)

// Handlers contains the HTTP handlers for auth and activity endpoints.
type Handlers struct {
	auth     *service.AuthService
	activity *service.ActivityService
	logger   *zap.Logger
}

// NewHandlers creates new handlers.
func NewHandlers(auth *service.AuthService, activity *service.ActivityService, logger *zap.Logger) *Handlers {
	return &Handlers{
		auth:     auth,
		activity: activity,
		logger:   logger,
	}
}

// Challenge handles the challenge request.
func (h *Handlers) Challenge(c *gin.Context) {
	challenge, err := h.auth.RequestChallenge(c.Request.Context(), c.Param("address"))
	if err != nil {
		if errors.Is(err, core.ErrInvalidAddress) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid wallet address"})
			return
		}
		h.logger.Error("failed to create challenge", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create challenge"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    challenge.Message,
		"expires_at": challenge.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// Login handles the login request.
func (h *Handlers) Login(c *gin.Context) {
	var req struct {
		WalletAddress string `json:"wallet_address" binding:"required"`
		Signature     string `json:"signature" binding:"required"`
		// Message is accepted for wallet-client compatibility but the
		// server-side challenge record is authoritative.
		Message string `json:"message"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	session, token, err := h.auth.Login(c.Request.Context(), req.WalletAddress, req.Signature)
	if err != nil {
		// Internal logs keep the precise kind; the client gets a
		// generic failure so outstanding challenges cannot be
		// enumerated.
		h.logger.Info("login rejected",
			zap.String("wallet_address", req.WalletAddress),
			zap.Error(err),
		)

		statusCode := http.StatusInternalServerError
		switch {
		case errors.Is(err, core.ErrInvalidAddress):
			statusCode = http.StatusBadRequest
		case errors.Is(err, core.ErrChallengeConsumed):
			statusCode = http.StatusConflict
		case errors.Is(err, core.ErrNoChallenge),
			errors.Is(err, core.ErrChallengeExpired),
			errors.Is(err, core.ErrInvalidSignature),
			errors.Is(err, core.ErrAddressMismatch):
			statusCode = http.StatusUnauthorized
		}

		if statusCode == http.StatusInternalServerError {
			h.logger.Error("login failed", zap.Error(err))
			c.JSON(statusCode, gin.H{"error": "internal error"})
			return
		}
		if statusCode == http.StatusBadRequest {
			c.JSON(statusCode, gin.H{"error": "invalid request"})
			return
		}
		c.JSON(statusCode, gin.H{"error": "authentication failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"session_id":   session.ID,
		"access_token": token,
		"token_type":   "Bearer",
		"expires_at":   session.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// Logout handles the logout request. Safe to retry: logging out an unknown
// or already-revoked session succeeds.
func (h *Handlers) Logout(c *gin.Context) {
	var req struct {
		SessionID string `json:"session_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.auth.Logout(c.Request.Context(), req.SessionID); err != nil {
		h.logger.Error("logout failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to logout"})
		return
	}

	c.Status(http.StatusNoContent)
}

// Me returns information about the authenticated session.
func (h *Handlers) Me(c *gin.Context) {
	session := sessionFromContext(c)
	if session == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session not found in context"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"address":    session.Address,
		"session_id": session.ID,
		"expires_at": session.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// RecordActivity appends a domain activity event for the authenticated
// session (page views, card views, calculations, refreshes, feature use).
func (h *Handlers) RecordActivity(c *gin.Context) {
	session := sessionFromContext(c)
	if session == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session not found in context"})
		return
	}

	var req struct {
		Type     string         `json:"type" binding:"required"`
		TargetID string         `json:"target_id"`
		Details  map[string]any `json:"details"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	err := h.auth.RecordActivity(c.Request.Context(), session, core.ActivityType(req.Type), req.TargetID, req.Details)
	if err != nil {
		if errors.Is(err, core.ErrInvalidActivityType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unrecognized activity type"})
			return
		}
		h.logger.Error("failed to record activity", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record activity"})
		return
	}

	c.Status(http.StatusAccepted)
}

// QueryActivity returns audit entries for read-side tooling.
func (h *Handlers) QueryActivity(c *gin.Context) {
	filter := core.ActivityFilter{
		WalletAddress: c.Query("wallet_address"),
		UserID:        c.Query("user_id"),
		Type:          core.ActivityType(c.Query("type")),
	}

	if since := c.Query("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid since timestamp"})
			return
		}
		filter.Since = t
	}
	if until := c.Query("until"); until != "" {
		t, err := time.Parse(time.RFC3339, until)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid until timestamp"})
			return
		}
		filter.Until = t
	}
	if limit := c.Query("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		filter.Limit = n
	}

	entries, err := h.activity.Query(c.Request.Context(), filter)
	if err != nil {
		if errors.Is(err, core.ErrInvalidActivityType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unrecognized activity type"})
			return
		}
		h.logger.Error("failed to query activity", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query activity"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
