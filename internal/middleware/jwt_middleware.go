package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/sadiya09-889/final-GCU-library-management-system/internal/circulation"
	"github.com/sadiya09-889/final-GCU-library-management-system/internal/models"
	"github.com/sadiya09-889/final-GCU-library-management-system/internal/utils"
)

type contextKey string

const ContextActor contextKey = "actor"

// JWTAuthMiddleware validates the Bearer token and puts the acting user on
// the request context.
func JWTAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			utils.JSONError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		tokenStr := strings.TrimPrefix(auth, "Bearer ")

		claims, err := utils.ParseJWT(tokenStr)
		if err != nil {
			utils.JSONError(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		actor := circulation.Actor{
			ID:   claims.UserID,
			Name: claims.Name,
			Role: models.Role(claims.Role),
		}
		ctx := context.WithValue(r.Context(), ContextActor, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ActorFrom returns the authenticated actor placed by JWTAuthMiddleware.
func ActorFrom(r *http.Request) circulation.Actor {
	actor, _ := r.Context().Value(ContextActor).(circulation.Actor)
	return actor
}

// RequireStaff rejects requests from non-staff roles before the handler
// runs. Handlers still pass the actor down so the engine re-checks.
func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !ActorFrom(r).Role.Staff() {
			utils.JSONError(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
