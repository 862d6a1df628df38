package middleware

import (
	"context"

	pkgauth "github.com/medimall/medimall-backend/pkg/auth"
)

type contextKey string

const ctxClaims contextKey = "claims"

// EmailFromContext returns the verified email claim, or "" for anonymous requests.
func EmailFromContext(ctx context.Context) string {
	if claims := claimsFromContext(ctx); claims != nil {
		return claims.Email
	}
	return ""
}

func claimsFromContext(ctx context.Context) *pkgauth.Claims {
	if ctx == nil {
		return nil
	}
	claims, _ := ctx.Value(ctxClaims).(*pkgauth.Claims)
	return claims
}

// WithClaims injects verified claims into the context.
func WithClaims(ctx context.Context, claims *pkgauth.Claims) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if claims == nil {
		return ctx
	}
	return context.WithValue(ctx, ctxClaims, claims)
}
