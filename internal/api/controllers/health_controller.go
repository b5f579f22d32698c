package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"learnez/pkg/utils"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthController struct {
	db Pinger
}

func NewHealthController(db Pinger) *HealthController {
	return &HealthController{db: db}
}

// Healthz godoc
// @Summary Liveness and database check
// @Tags Health
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 503 {object} utils.APIResponse
// @Router /healthz [get]
func (h *HealthController) Healthz(c *gin.Context) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			utils.LoggerFrom(c).Warn("health check failed", "error", err)
			utils.RespondError(c, http.StatusServiceUnavailable, "Database unavailable")
			return
		}
	}
	utils.RespondSuccess(c, gin.H{"status": "ok"}, "ok")
}
