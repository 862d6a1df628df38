package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is the fixed validity window of every issued token.
const TokenTTL = 8 * time.Hour

// Claims is a verified token. Payload holds every claim, including the
// caller-supplied fields and the registered iss/iat/exp set at issuance.
type Claims struct {
	Email   string
	Payload jwt.MapClaims
}

func claimsFromMap(m jwt.MapClaims) *Claims {
	c := &Claims{Payload: m}
	if email, ok := m["email"].(string); ok {
		c.Email = strings.TrimSpace(email)
	}
	return c
}
