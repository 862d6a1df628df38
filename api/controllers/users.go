package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/medimall/medimall-backend/api/middleware"
	"github.com/medimall/medimall-backend/api/responses"
	"github.com/medimall/medimall-backend/api/validators"
	"github.com/medimall/medimall-backend/internal/users"
	pkgerrors "github.com/medimall/medimall-backend/pkg/errors"
	"github.com/medimall/medimall-backend/pkg/logger"
)

// CapabilityChecker answers a single role question for an email.
type CapabilityChecker func(ctx context.Context, email string) (bool, error)

func ListUsers(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

// CheckCapability reports one capability of the caller. A caller may only ask
// about its own email.
func CheckCapability(field string, check CapabilityChecker, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requested := strings.TrimSpace(chi.URLParam(r, "email"))
		caller := middleware.EmailFromContext(r.Context())
		if caller == "" || !strings.EqualFold(requested, caller) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "forbidden access"))
			return
		}

		ok, err := check(r.Context(), requested)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{field: ok})
	}
}

func RegisterUser(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body users.RegisterUserDTO
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		res, err := svc.Register(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, res)
	}
}

func SetUserRole(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body users.SetRoleDTO
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		res, err := svc.SetRole(r.Context(), chi.URLParam(r, "id"), body.Role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, res)
	}
}
