// Package session resolves the authenticated identity of each inbound
// request. The auth-session cookie holds an opaque bearer token which is
// validated on every request by calling the backend profile endpoint;
// nothing is cached across requests and no local user store exists.
// Every failure path degrades to an anonymous identity.
package session

import (
	"context"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"github.com/linkeunid/linkeun-dash/internal/apiclient"
	"github.com/linkeunid/linkeun-dash/internal/logger"
	"github.com/linkeunid/linkeun-dash/internal/models"
)

// ProfilePath is the backend endpoint used to validate a bearer token.
const ProfilePath = "/api/users/profile"

// SessionID marks sessions synthesized from a bearer token.
const SessionID = "jwt"

// fallbackTTL applies when the token carries no readable expiry claim.
const fallbackTTL = 24 * time.Hour

type profileGetter interface {
	Get(ctx context.Context, path string) (*apiclient.Response, error)
}

// ContextKey is a private type for context values to avoid collisions.
type ContextKey string

const identityKey ContextKey = "identity"

// WithIdentity returns a context carrying the given identity.
func WithIdentity(ctx context.Context, identity models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// FromContext returns the identity resolved for the request.
// A request that never passed the resolver reads as anonymous.
func FromContext(ctx context.Context) models.Identity {
	identity, ok := ctx.Value(identityKey).(models.Identity)
	if !ok {
		return models.Identity{}
	}
	return identity
}

// Resolver validates session cookies against the backend profile endpoint.
type Resolver struct {
	newClient     func(token string) profileGetter
	cookieName    string
	secureCookies bool
	record        func(outcome string)
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithRecorder registers a metrics callback receiving the resolution
// outcome: authenticated, anonymous or rejected.
func WithRecorder(record func(outcome string)) Option {
	return func(rs *Resolver) {
		rs.record = record
	}
}

// New creates a Resolver. newClient must build a gateway client
// authenticated with the given bearer token.
func New(
	newClient func(token string) *apiclient.Client,
	cookieName string,
	secureCookies bool,
	opts ...Option,
) *Resolver {
	resolver := &Resolver{
		newClient:     func(token string) profileGetter { return newClient(token) },
		cookieName:    cookieName,
		secureCookies: secureCookies,
		record:        func(string) {},
	}
	for _, opt := range opts {
		opt(resolver)
	}
	return resolver
}

// CookieName returns the configured session cookie name.
func (rs *Resolver) CookieName() string {
	return rs.cookieName
}

// SetCookie writes the session cookie. maxAge is the backend-supplied
// expires_in in seconds.
func (rs *Resolver) SetCookie(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     rs.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   rs.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

// ExpireCookie deletes the session cookie on the client.
func (rs *Resolver) ExpireCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     rs.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   rs.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

// ResolveIdentity is the middleware that populates the request identity.
// It runs strictly before any page or action logic and never fails the
// request: a missing cookie means anonymous without any network call, a
// rejected or unreachable backend clears the cookie and means anonymous.
func (rs *Resolver) ResolveIdentity(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		cookie, err := request.Cookie(rs.cookieName)
		if err != nil || cookie.Value == "" {
			rs.record("anonymous")
			rs.serveAnonymous(h, response, request)
			return
		}

		token := cookie.Value
		profileResponse, err := rs.newClient(token).Get(request.Context(), ProfilePath)
		if err != nil || profileResponse.Envelope.HasError() {
			if err != nil {
				logger.Log.Debugln("session token validation failed: ", zap.Error(err))
			}
			rs.record("rejected")
			rs.ExpireCookie(response)
			rs.serveAnonymous(h, response, request)
			return
		}

		var usr models.User
		decoded, err := profileResponse.Envelope.DecodeData(&usr)
		if err != nil || !decoded {
			rs.record("rejected")
			rs.ExpireCookie(response)
			rs.serveAnonymous(h, response, request)
			return
		}

		rs.record("authenticated")

		identity := models.Identity{
			User: &usr,
			Session: &models.Session{
				ID:        SessionID,
				UserID:    usr.ID,
				ExpiresAt: expiryFromToken(token, time.Now()),
			},
			Token: token,
		}

		ctx := WithIdentity(request.Context(), identity)
		h.ServeHTTP(response, request.WithContext(ctx))
	}

	return http.HandlerFunc(middleware)
}

func (rs *Resolver) serveAnonymous(h http.Handler, response http.ResponseWriter, request *http.Request) {
	ctx := WithIdentity(request.Context(), models.Identity{})
	h.ServeHTTP(response, request.WithContext(ctx))
}

// expiryFromToken derives the session expiry from the bearer token's exp
// claim. The claim is read without signature verification; only the
// backend can vouch for the token, which the profile call already did.
// Tokens without a readable expiry fall back to now + 24h.
func expiryFromToken(token string, now time.Time) time.Time {
	claims := &jwt.RegisteredClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err == nil && claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time
	}

	return now.Add(fallbackTTL)
}
