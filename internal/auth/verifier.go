package auth

import (
	"errors"

	jwt "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/sportx-platform/access-gateway/internal/policy"
)

// Issuer identifiers are fixed per credential family; tokens minted for one
// family never verify under another.
const (
	MainIssuer    = "sportx-platform"
	MatchesIssuer = "sportx-matches"
)

// Claims is the decoded session token payload.
type Claims struct {
	Role policy.Role `json:"role"`
	jwt.RegisteredClaims
}

// Verifier validates signed session tokens. It never mints tokens; issuance
// belongs to the backend login endpoint.
type Verifier struct {
	secret []byte
	issuer string
	logger *zap.Logger
}

// NewVerifier builds a verifier for one secret/issuer pair. An empty secret
// is allowed at construction so the gateway can boot with the family
// disabled; Verify then fails closed.
func NewVerifier(secret, issuer string, logger *zap.Logger) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: issuer, logger: logger}
}

// Verify validates signature, expiry and issuer, returning decoded claims or
// nil. Every failure mode collapses to nil; the reason is logged (never the
// token or the secret) and stays server-side.
func (v *Verifier) Verify(tokenStr string) *Claims {
	if tokenStr == "" {
		return nil
	}
	if len(v.secret) == 0 {
		// Missing secret means the check cannot run; that is a denial, not a bypass.
		v.logger.Warn("token verification without signing secret", zap.String("issuer", v.issuer))
		return nil
	}

	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return v.secret, nil
	}, jwt.WithIssuer(v.issuer), jwt.WithExpirationRequired())
	if err != nil {
		v.logger.Debug("token verification failed",
			zap.String("issuer", v.issuer),
			zap.String("error", err.Error()),
		)
		return nil
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		v.logger.Debug("token claims invalid", zap.String("issuer", v.issuer))
		return nil
	}
	return claims
}
