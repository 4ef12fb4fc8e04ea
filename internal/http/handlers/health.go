package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	pingStore func() error
	pingRedis func() error
}

func NewHealthHandler(pingStore, pingRedis func() error) *HealthHandler {
	return &HealthHandler{
		pingStore: pingStore,
		pingRedis: pingRedis,
	}
}

func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readyz checks the collaborators a request actually needs.
func (h *HealthHandler) Readyz(ctx *gin.Context) {
	checks := gin.H{}
	ready := true

	if h.pingStore != nil {
		if err := h.pingStore(); err != nil {
			checks["store"] = err.Error()
			ready = false
		} else {
			checks["store"] = "ok"
		}
	}

	if h.pingRedis != nil {
		if err := h.pingRedis(); err != nil {
			// redis only backs rate limiting, degrade instead of failing
			checks["redis"] = err.Error()
		} else {
			checks["redis"] = "ok"
		}
	}

	status := http.StatusOK
	state := "ready"

	if !ready {
		status = http.StatusServiceUnavailable
		state = "not_ready"
	}

	ctx.JSON(status, gin.H{"status": state, "checks": checks})
}
