package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rental-market/internal/apperr"
	"rental-market/internal/middleware"
)

// respondError maps an application error to its HTTP status and a
// {"error": message} body. Internal failures are logged, never echoed.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		logger.Error("request failed",
			zap.String("route", c.FullPath()),
			zap.String("request_id", c.GetString(middleware.RequestIDKey)),
			zap.Error(err),
		)
	}
	c.AbortWithStatusJSON(kind.HTTPStatus(), gin.H{"error": apperr.MessageOf(err)})
}

func paramInt(c *gin.Context, name string) (int, error) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil || v <= 0 {
		return 0, apperr.BadRequest("invalid " + name)
	}
	return v, nil
}

func queryInt(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.BadRequest("invalid " + name)
	}
	return v, nil
}

func currentUserID(c *gin.Context) int {
	return c.GetInt(middleware.UserIDKey)
}

func orNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
