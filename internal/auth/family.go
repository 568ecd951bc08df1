package auth

import (
	"go.uber.org/zap"
)

// Cookie names are part of the wire contract.
const (
	MainCookie       = "sportx_access_token"
	LegacyMainCookie = "accessToken"
	MatchesCookie    = "matches_token"
)

// Reason codes carried on login redirects. Every enforcement layer uses
// these same values; the login pages translate them for humans.
const (
	ReasonNoSession      = "no_session"
	ReasonInvalidSession = "invalid_session"
	ReasonSessionInvalid = "session_invalid"
	ReasonAccessDenied   = "access_denied"
	ReasonTimeout        = "timeout"
)

// CredentialFamily bundles everything that varies between the platform's
// token schemes: cookie name(s), verifier, and where to send the caller on
// failure. The main and matches families are instances of this one type so
// their verify/redirect behavior cannot drift.
type CredentialFamily struct {
	Name          string
	CookieName    string
	LegacyCookies []string
	LoginPath     string
	Verifier      *Verifier
}

// MainFamily builds the main-platform credential family. The edge gate
// accepts the legacy cookie alias alongside the canonical name.
func MainFamily(secret string, logger *zap.Logger) CredentialFamily {
	return CredentialFamily{
		Name:          "main",
		CookieName:    MainCookie,
		LegacyCookies: []string{LegacyMainCookie},
		LoginPath:     "/login",
		Verifier:      NewVerifier(secret, MainIssuer, logger),
	}
}

// MatchesFamily builds the matches sub-product credential family. It has its
// own secret and issuer; a main-platform token never grants matches access.
func MatchesFamily(secret string, logger *zap.Logger) CredentialFamily {
	return CredentialFamily{
		Name:       "matches",
		CookieName: MatchesCookie,
		LoginPath:  "/matches/login",
		Verifier:   NewVerifier(secret, MatchesIssuer, logger),
	}
}

// AllCookieNames returns every cookie name the family reads, canonical first.
// Failure handling deletes all of them so a stale alias cannot keep a dead
// session alive.
func (f CredentialFamily) AllCookieNames() []string {
	names := make([]string, 0, 1+len(f.LegacyCookies))
	names = append(names, f.CookieName)
	names = append(names, f.LegacyCookies...)
	return names
}

// TokenFrom picks the first non-empty cookie value, canonical name first.
func (f CredentialFamily) TokenFrom(lookup func(name string) string) string {
	for _, name := range f.AllCookieNames() {
		if value := lookup(name); value != "" {
			return value
		}
	}
	return ""
}
