package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dicoevent/dicoevent/internal/authz"
	"github.com/dicoevent/dicoevent/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func permitRouter(actor *authz.Actor, action authz.Action, kind authz.Kind) *gin.Engine {
	r := gin.New()

	if actor != nil {
		r.Use(func(c *gin.Context) {
			c.Set(middlewares.CtxActor, *actor)
			c.Next()
		})
	}

	r.GET("/probe", middlewares.Permit(action, kind), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	return r
}

func TestPermit(t *testing.T) {
	super := authz.Actor{ID: "u1", Authenticated: true, Superuser: true}
	admin := authz.Actor{ID: "u2", Authenticated: true, Roles: []string{"admin"}}
	plain := authz.Actor{ID: "u3", Authenticated: true}

	tests := []struct {
		name       string
		actor      *authz.Actor
		action     authz.Action
		kind       authz.Kind
		wantStatus int
	}{
		{"anonymous_blocked_from_groups", nil, authz.ActionList, authz.KindGroup, http.StatusUnauthorized},
		{"plain_user_blocked_from_groups", &plain, authz.ActionList, authz.KindGroup, http.StatusForbidden},
		{"superuser_lists_groups", &super, authz.ActionList, authz.KindGroup, http.StatusOK},
		{"admin_lists_users", &admin, authz.ActionList, authz.KindUser, http.StatusOK},
		{"plain_user_blocked_from_user_list", &plain, authz.ActionList, authz.KindUser, http.StatusForbidden},
		{"anonymous_creates_user", nil, authz.ActionCreate, authz.KindUser, http.StatusOK},
		{"plain_user_registers", &plain, authz.ActionCreate, authz.KindRegistration, http.StatusOK},
		{"admin_cannot_register", &admin, authz.ActionCreate, authz.KindRegistration, http.StatusForbidden},
		{"admin_blocked_from_jobs", &admin, authz.ActionList, authz.KindJob, http.StatusForbidden},
		{"superuser_lists_jobs", &super, authz.ActionList, authz.KindJob, http.StatusOK},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			r := permitRouter(tt.actor, tt.action, tt.kind)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}

	t.Run("unauthorized_sets_challenge_header", func(t *testing.T) {
		r := permitRouter(nil, authz.ActionList, authz.KindGroup)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))

		if got := w.Header().Get("WWW-Authenticate"); got != "Bearer" {
			t.Fatalf("WWW-Authenticate = %q, want Bearer", got)
		}
	})
}
