package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"triage/internal/shared/config"
	"triage/internal/shared/logger"
	"triage/internal/shared/utils"
)

// defaultAPIKeyHeader is used when the config leaves the header empty.
const defaultAPIKeyHeader = "X-API-KEY"

type APIKeyMiddleware struct {
	key    []byte
	header string
	logger logger.Interface
}

func NewAPIKeyMiddleware(cfg *config.MetricsAPIConfig, log logger.Interface) *APIKeyMiddleware {
	header := cfg.APIKeyHeader
	if header == "" {
		header = defaultAPIKeyHeader
	}
	return &APIKeyMiddleware{
		key:    []byte(cfg.APIKey),
		header: header,
		logger: log,
	}
}

// RequireAPIKey rejects requests whose header does not match the configured
// key. With no key configured every request passes.
func (m *APIKeyMiddleware) RequireAPIKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(m.key) == 0 {
			c.Next()
			return
		}

		provided := []byte(c.GetHeader(m.header))
		if subtle.ConstantTimeCompare(provided, m.key) != 1 {
			m.logger.Warnw("rejected request with invalid api key",
				"path", c.Request.URL.Path,
				"client_ip", c.ClientIP(),
			)
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid api key")
			c.Abort()
			return
		}
		c.Next()
	}
}
