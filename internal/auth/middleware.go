package auth

import (
	"context"
	"fmt"
	"net/http"

	"agama-events/internal/logger"

	"github.com/coreos/go-oidc/v3/oidc"
)

type contextKey string

const organizerIDKey contextKey = "organizer_id"

// Middleware authenticates organizer requests. With an OIDC issuer the token
// signature is verified against the provider's keys; in dev mode the token is
// only parsed, so any well-formed JWT passes.
type Middleware struct {
	verifier *oidc.IDTokenVerifier
	devMode  bool
	logger   *logger.Logger
}

func NewMiddleware(ctx context.Context, issuer string, devMode bool, log *logger.Logger) (*Middleware, error) {
	if devMode {
		log.Warn("AUTH", "dev mode enabled, JWT signatures are NOT verified")
		return &Middleware{devMode: true, logger: log}, nil
	}

	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider for %s: %w", issuer, err)
	}

	// SkipClientIDCheck: tokens come from multiple first-party clients.
	verifier := provider.Verifier(&oidc.Config{SkipClientIDCheck: true})
	return &Middleware{verifier: verifier, logger: log}, nil
}

// Require wraps a handler and rejects requests without a valid organizer
// identity.
func (m *Middleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawToken, err := ExtractTokenFromRequest(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		sub, err := m.subject(r.Context(), rawToken)
		if err != nil {
			http.Error(w, "invalid token: "+err.Error(), http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), organizerIDKey, sub)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middleware) subject(ctx context.Context, rawToken string) (string, error) {
	if m.devMode {
		return ExtractSubjectUnverified(rawToken)
	}

	idToken, err := m.verifier.Verify(ctx, rawToken)
	if err != nil {
		return "", err
	}

	var claims struct {
		Sub string `json:"sub"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return "", fmt.Errorf("failed to parse claims: %w", err)
	}
	if claims.Sub == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return claims.Sub, nil
}

// OrganizerID returns the authenticated organizer from the request context.
func OrganizerID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(organizerIDKey).(string)
	return id, ok && id != ""
}
