package middlewares

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dicoevent/dicoevent/internal/auth"
	"github.com/dicoevent/dicoevent/internal/authz"
	"github.com/dicoevent/dicoevent/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// ActorLoader resolves the user behind a verified token. Roles come from the
// database on every request, not from the token, so a revoked assignment is
// effective immediately.
type ActorLoader interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

// Identity resolves the Authorization header into an authz.Actor on the gin
// context. A missing header yields the anonymous actor and the request
// continues; the per-route Permit middleware decides whether anonymous is
// acceptable. A present-but-invalid token is always a 401.
func Identity(mgr *auth.Manager, users ActorLoader) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")

		if header == "" {
			ctx.Set(CtxActor, authz.Anonymous)
			ctx.Next()
			return
		}

		parts := strings.SplitN(header, " ", 2)

		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			abortUnauthorized(ctx, "Authorization header must be of the form 'Bearer <token>'")
			return
		}

		claims, err := mgr.VerifyAccessToken(strings.TrimSpace(parts[1]))

		if err != nil {
			abortUnauthorized(ctx, "Invalid or expired token")
			return
		}

		loadCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()

		u, err := users.GetByID(loadCtx, claims.UserID)

		if err != nil {
			// token was valid but the account is gone
			abortUnauthorized(ctx, "Unknown identity")
			return
		}

		ctx.Set(CtxActor, authz.Actor{
			ID:            u.ID,
			Authenticated: true,
			Superuser:     u.Superuser,
			Roles:         u.Roles,
		})

		ctx.Next()
	}
}

// ActorFromContext returns the actor set by Identity; anonymous when the
// middleware did not run.
func ActorFromContext(ctx *gin.Context) authz.Actor {
	v, ok := ctx.Get(CtxActor)

	if !ok {
		return authz.Anonymous
	}

	actor, ok := v.(authz.Actor)

	if !ok {
		return authz.Anonymous
	}

	return actor
}

func UserIDFromContext(ctx *gin.Context) (string, bool) {
	actor := ActorFromContext(ctx)

	if !actor.Authenticated {
		return "", false
	}

	return actor.ID, true
}

func abortUnauthorized(ctx *gin.Context, msg string) {
	ctx.Header("WWW-Authenticate", "Bearer")
	ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":    "unauthorized",
			"message": msg,
		},
	})
}
