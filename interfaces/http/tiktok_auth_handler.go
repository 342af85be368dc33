package http

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sync"
	"time"

	"creator-contest/domain/repository"
	"creator-contest/infrastructure/logger"
	"creator-contest/interfaces/middleware"
	"creator-contest/usecase"

	"github.com/gin-gonic/gin"
)

const authStateTTL = 10 * time.Minute

type ITikTokAuthHandler interface {
	GetAuthURL(c *gin.Context)
	Callback(c *gin.Context)
	Status(c *gin.Context)
	Disconnect(c *gin.Context)
}

type pendingAuth struct {
	ownerID string
	expires time.Time
}

type tiktokAuthHandler struct {
	vault  usecase.ICredentialVault
	tokens repository.ITokenSource
	// successRedirect is where the browser lands after a completed callback. Empty answers with JSON.
	successRedirect string

	stateMu sync.Mutex
	states  map[string]pendingAuth
	now     func() time.Time
}

func NewTikTokAuthHandler(vault usecase.ICredentialVault, tokens repository.ITokenSource, successRedirect string) ITikTokAuthHandler {
	return &tiktokAuthHandler{
		vault:           vault,
		tokens:          tokens,
		successRedirect: successRedirect,
		states:          map[string]pendingAuth{},
		now:             time.Now,
	}
}

func randomState() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// GetAuthURL starts the consent flow for the authenticated caller.
func (h *tiktokAuthHandler) GetAuthURL(c *gin.Context) {
	ownerID := c.GetString(middleware.UserIDKey)
	if ownerID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	state := randomState()
	now := h.now()

	h.stateMu.Lock()
	for s, p := range h.states {
		if now.After(p.expires) {
			delete(h.states, s)
		}
	}
	h.states[state] = pendingAuth{ownerID: ownerID, expires: now.Add(authStateTTL)}
	h.stateMu.Unlock()

	c.JSON(http.StatusOK, gin.H{"auth_url": h.tokens.AuthCodeURL(state), "state": state})
}

// Callback is hit by the browser redirect, so the owner comes from the stored state, not a bearer token.
func (h *tiktokAuthHandler) Callback(c *gin.Context) {
	if denied := c.Query("error"); denied != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": denied, "description": c.Query("error_description")})
		return
	}
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing code"})
		return
	}

	h.stateMu.Lock()
	pending, ok := h.states[c.Query("state")]
	if ok {
		delete(h.states, c.Query("state"))
		if h.now().After(pending.expires) {
			ok = false
		}
	}
	h.stateMu.Unlock()
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_state"})
		return
	}

	status, err := h.vault.Connect(c.Request.Context(), pending.ownerID, code)
	if err != nil {
		logger.GetLogger().WithField("owner_id", pending.ownerID).WithField("error", err).Error("tiktok connect failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "token_exchange_failed"})
		return
	}
	if h.successRedirect != "" {
		c.Redirect(http.StatusFound, h.successRedirect)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *tiktokAuthHandler) Status(c *gin.Context) {
	status, err := h.vault.Status(c.Request.Context(), c.GetString(middleware.UserIDKey))
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("tiktok status lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "status unavailable"})
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *tiktokAuthHandler) Disconnect(c *gin.Context) {
	if err := h.vault.Disconnect(c.Request.Context(), c.GetString(middleware.UserIDKey)); err != nil {
		logger.GetLogger().WithField("error", err).Error("tiktok disconnect failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "disconnect failed"})
		return
	}
	c.Status(http.StatusNoContent)
}
