package middleware

import (
	"net"
	"net/http"
	"os"
	"runtime/debug"
	"strings"

	"sellmaster/internal/logger"

	"github.com/gin-gonic/gin"
)

// Recovery converts panics into 500 responses. Panics caused by the client
// hanging up mid-write are not errors worth a response or a stack trace.
func Recovery(logger *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		if isClientDisconnect(recovered) {
			c.Abort()
			return
		}

		logger.Error("panic handling %s %s: %v", c.Request.Method, c.Request.URL.Path, recovered)
		logger.Debug("recovered stack:\n%s", debug.Stack())
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	})
}

func isClientDisconnect(recovered interface{}) bool {
	opErr, ok := recovered.(*net.OpError)
	if !ok {
		return false
	}
	sysErr, ok := opErr.Err.(*os.SyscallError)
	if !ok {
		return false
	}
	msg := strings.ToLower(sysErr.Error())
	return strings.Contains(msg, "broken pipe") || strings.Contains(msg, "connection reset by peer")
}
