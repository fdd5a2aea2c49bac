// Package middleware provides authentication and role-gating middleware.
package middleware

import (
	"net/http"
	"strings"

	"github.com/medistock/medistock-backend/internal/auth/jwt"
	"github.com/medistock/medistock-backend/pkg/access"
	"github.com/medistock/medistock-backend/pkg/errors"
	"github.com/medistock/medistock-backend/pkg/httputil"
	"github.com/medistock/medistock-backend/pkg/logger"
)

// Authenticator validates the bearer token and stores the user identity
// in the request context.
func Authenticator(jwtManager *jwt.Manager, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				httputil.Error(w, errors.Unauthorized("missing authorization header"))
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				httputil.Error(w, errors.Unauthorized("invalid authorization header format"))
				return
			}

			claims, err := jwtManager.ValidateAccessToken(parts[1])
			if err != nil {
				httputil.Error(w, err)
				return
			}

			ctx := httputil.WithUserContext(r.Context(), claims.UserID, claims.Email, claims.Roles)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoles gates a route on role assignments.
//
// With requireAny, the user needs at least one of the required roles.
// Without it, the user needs every required role. An empty required
// list admits any user with at least one role; users with no roles
// are always rejected as pending approval.
func RequireRoles(requiredRoles []access.Role, requireAny bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			roleStrings := httputil.GetUserRoles(r.Context())
			userRoles := access.FromStrings(roleStrings)

			if len(userRoles) == 0 {
				httputil.Error(w, errors.Forbidden("account is pending approval"))
				return
			}

			if !access.CanAccess(userRoles, requiredRoles, requireAny) {
				httputil.Error(w, errors.Forbidden("insufficient permissions"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAnyRole gates a route on holding at least one of the given roles
func RequireAnyRole(roles ...access.Role) func(http.Handler) http.Handler {
	return RequireRoles(roles, true)
}

// RequireStaff admits any user with at least one assigned role
func RequireStaff() func(http.Handler) http.Handler {
	return RequireRoles(nil, true)
}
