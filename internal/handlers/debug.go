package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rental-market/internal/apperr"
	"rental-market/internal/telemetry"
)

type replayAuditRequest struct {
	UserID  int            `json:"userId"`
	Payload map[string]any `json:"payload"`
}

// RegisterDebugRoutes wires debug-only endpoints. POST /debug/audit/:action
// pushes one of the service's own audit actions onto the audit exchange so
// downstream consumers can be exercised without driving the real flow.
func RegisterDebugRoutes(router gin.IRouter, emitter *telemetry.AuditEmitter, enabled bool) {
	if !enabled {
		return
	}

	router.POST("/debug/audit/:action", func(c *gin.Context) {
		action := c.Param("action")
		if !telemetry.IsKnownAction(action) {
			respondError(c, nil, apperr.NotFound("unknown audit action"))
			return
		}
		if emitter == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit emitter not configured"})
			return
		}

		var req replayAuditRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				respondError(c, nil, apperr.BadRequest("invalid json"))
				return
			}
		}
		if req.UserID == 0 {
			req.UserID = currentUserID(c)
		}

		emitter.Emit(c.Request.Context(), action, req.UserID, req.Payload)
		c.JSON(http.StatusAccepted, gin.H{"action": action, "userId": req.UserID})
	})
}
