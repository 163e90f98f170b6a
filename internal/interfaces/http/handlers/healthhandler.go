package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cryptogift/ledger/internal/shared/logger"
	"github.com/cryptogift/ledger/internal/shared/utils"
	"github.com/cryptogift/ledger/internal/shared/version"
)

type HealthHandler struct {
	store  storeHealth
	logger logger.Interface
}

func NewHealthHandler(store storeHealth, logger logger.Interface) *HealthHandler {
	return &HealthHandler{
		store:  store,
		logger: logger,
	}
}

type HealthResponse struct {
	Status  string `json:"status"`
	Store   string `json:"store"`
	Version string `json:"version"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:  "ok",
		Store:   h.store.Name(),
		Version: version.String(),
	}

	if err := h.store.Ping(c.Request.Context()); err != nil {
		h.logger.Errorw("health check failed", "store", resp.Store, "error", err)
		resp.Status = "degraded"
		c.JSON(http.StatusServiceUnavailable, utils.APIResponse{Success: false, Data: resp})
		return
	}

	utils.OKResponse(c, resp)
}
