package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tracklite-dev/tracklite/internal/authz"
	"github.com/tracklite-dev/tracklite/internal/utils"
)

// RequireCapability rejects the request before any storage access when the
// caller's role does not grant the named capability. Resource-level
// membership checks still run inside the handler.
func RequireCapability(capability string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, err := utils.GetCurrentUser(ctx)

		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		if !authz.HasCapability(user.Role, capability) {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Not authorized"})
			return
		}

		ctx.Next()
	}
}
