package middlewares

import (
	"errors"
	"net/http"

	"github.com/dicoevent/dicoevent/internal/authz"
	"github.com/gin-gonic/gin"
)

// Permit gates a route on the policy table: 401 when the action needs an
// identity and the request has none, 403 when the actor is known but denied.
// Object-level ownership checks stay in the handlers, where the resource has
// been loaded.
func Permit(action authz.Action, kind authz.Kind) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		actor := ActorFromContext(ctx)

		err := authz.Decide(actor, action, kind)

		if err != nil {
			if errors.Is(err, authz.ErrUnauthorized) {
				abortUnauthorized(ctx, "Authentication required")
				return
			}

			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    "forbidden",
					"message": "You do not have permission to perform this action",
				},
			})
			return
		}

		ctx.Next()
	}
}
