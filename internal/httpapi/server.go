// Package httpapi exposes the HTTP trigger surface: the OAuth consent
// redirect and callback, manual sync triggers, and a health probe.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/max-sakeco/xero-sync/internal/common"
	"github.com/max-sakeco/xero-sync/internal/logging"
	"github.com/max-sakeco/xero-sync/internal/models"
	syncer "github.com/max-sakeco/xero-sync/internal/sync"
)

const serviceName = "xero-sync"

// Authorizer is the subset of the OAuth session used by the HTTP handlers.
type Authorizer interface {
	AuthorizationURL(state string) string
	CompleteAuthorization(ctx context.Context, code string) (*models.Credential, error)
}

// Runner triggers a sync run.
type Runner interface {
	Run(ctx context.Context, forceFull bool) (*syncer.Result, error)
}

// Handler holds the HTTP route implementations.
type Handler struct {
	auth   Authorizer
	runner Runner
	logger logging.Logger

	mu    sync.Mutex
	state string
}

// NewHandler constructs a Handler over the given collaborators.
func NewHandler(auth Authorizer, runner Runner, logger logging.Logger) *Handler {
	return &Handler{auth: auth, runner: runner, logger: logger}
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", h.Health)
	r.GET("/auth", h.Auth)
	r.GET("/callback", h.Callback)
	r.POST("/sync", h.Sync)
	r.GET("/sync", h.Sync)

	return r
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"service":   serviceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Auth redirects the browser to the provider consent page. The random
// state is remembered and checked on the callback.
func (h *Handler) Auth(c *gin.Context) {
	state, err := common.MakeRandHexString(16)
	if err != nil {
		h.logger.Error(c.Request.Context(), "failed to generate state", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start authorization"})
		return
	}

	h.mu.Lock()
	h.state = state
	h.mu.Unlock()

	c.Redirect(http.StatusTemporaryRedirect, h.auth.AuthorizationURL(state))
}

// Callback completes the authorization code exchange.
func (h *Handler) Callback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing authorization code"})
		return
	}

	h.mu.Lock()
	expected := h.state
	h.state = ""
	h.mu.Unlock()
	if state := c.Query("state"); expected != "" && state != expected {
		c.JSON(http.StatusBadRequest, gin.H{"error": "state mismatch"})
		return
	}

	cred, err := h.auth.CompleteAuthorization(c.Request.Context(), code)
	if err != nil {
		h.logger.Error(c.Request.Context(), "authorization failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "authorization failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "authorization complete",
		"tenant_id": cred.TenantID,
	})
}

// Sync triggers a run. force_full=true skips the incremental watermark.
// A run already in flight yields 409; a run that fails at top level
// (auth or fetch) yields 500 with the run result in the body.
func (h *Handler) Sync(c *gin.Context) {
	forceFull := c.Query("force_full") == "true"

	result, err := h.runner.Run(c.Request.Context(), forceFull)
	if err != nil {
		if errors.Is(err, common.ErrSyncInProgress) {
			c.JSON(http.StatusConflict, gin.H{"success": false, "error": err.Error()})
			return
		}
		h.logger.Error(c.Request.Context(), "sync trigger failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	if !result.Success {
		c.JSON(http.StatusInternalServerError, result)
		return
	}
	c.JSON(http.StatusOK, result)
}
