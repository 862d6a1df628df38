package middleware

import (
	"context"
	"net/http"

	"github.com/medimall/medimall-backend/api/responses"
	pkgerrors "github.com/medimall/medimall-backend/pkg/errors"
	"github.com/medimall/medimall-backend/pkg/logger"
)

// AdminChecker resolves the stored role of an email.
type AdminChecker interface {
	IsAdmin(ctx context.Context, email string) (bool, error)
}

// RequireAdmin must run after Auth. The role is looked up on every request,
// never read from the token.
func RequireAdmin(checker AdminChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email := EmailFromContext(r.Context())
			if email == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "forbidden access"))
				return
			}
			ok, err := checker.IsAdmin(r.Context(), email)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "forbidden access"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
