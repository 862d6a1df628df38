package controllers

import (
	"net/http"
	"time"

	"github.com/medimall/medimall-backend/api/responses"
	"github.com/medimall/medimall-backend/api/validators"
	pkgauth "github.com/medimall/medimall-backend/pkg/auth"
	"github.com/medimall/medimall-backend/pkg/config"
	pkgerrors "github.com/medimall/medimall-backend/pkg/errors"
	"github.com/medimall/medimall-backend/pkg/logger"
)

// IssueToken signs whatever identity object the caller posts. Only the email
// claim is relied on downstream; roles are always re-read from storage.
func IssueToken(cfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := validators.DecodeJSONObject(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		token, err := pkgauth.MintAccessToken(cfg, time.Now(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "issue token"))
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"token":      token,
			"expires_in": int(pkgauth.TokenTTL.Seconds()),
		})
	}
}
