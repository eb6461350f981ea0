// Package rbac gates routes by the role carried in the access token.
package rbac

import (
	"net/http"

	"github.com/shashiranjanraj/sweetshop/pkg/middleware"
	"github.com/shashiranjanraj/sweetshop/pkg/response"
)

// HasRole returns middleware that allows access only to users with one of
// roles. middleware.Auth must run first.
func HasRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := middleware.UserIDFromCtx(r); !ok {
				response.Unauthorized(w)
				return
			}
			role, _ := middleware.RoleFromCtx(r)
			if !allowed[role] {
				response.Error(w, http.StatusForbidden, "Admins only")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
