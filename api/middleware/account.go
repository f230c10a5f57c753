package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/minhtrandev/shopora-backend/api/responses"
	pkgerrors "github.com/minhtrandev/shopora-backend/pkg/errors"
	"github.com/minhtrandev/shopora-backend/pkg/logger"
)

const (
	accountIDHeader = "X-Account-Id"
	roleHeader      = "X-Account-Role"

	// RoleCustomer is the default when the gateway sends no role header.
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// AccountContext resolves the authenticated account from the gateway headers
// and injects it into the request context and logger. Requests without a
// parseable account id are rejected before any handler runs.
func AccountContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(accountIDHeader))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "account header missing"))
				return
			}
			accountID, err := uuid.Parse(raw)
			if err != nil || accountID == uuid.Nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid account header"))
				return
			}

			role := strings.ToLower(strings.TrimSpace(r.Header.Get(roleHeader)))
			if role == "" {
				role = RoleCustomer
			}

			ctx := WithAccountID(r.Context(), accountID)
			ctx = WithRole(ctx, role)
			if logg != nil {
				ctx = logg.WithAccountID(ctx, accountID.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole guards a route subtree behind one actor role.
func RequireRole(role string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if RoleFromContext(r.Context()) != role {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
