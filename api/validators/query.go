package validators

import (
	"net/http"
	"strings"

	pkgerrors "github.com/medimall/medimall-backend/pkg/errors"
)

// RequireQueryEmail reads an email query parameter and validates its shape.
func RequireQueryEmail(r *http.Request, key string) (string, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "query parameter is required").WithDetails(map[string]any{"field": key})
	}
	if err := validate.Var(raw, "email"); err != nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a valid email").WithDetails(map[string]any{"field": key})
	}
	return strings.ToLower(raw), nil
}
