// Package oidc implements the Google identity provider for public login. It
// handles OIDC service discovery and verifies caller-supplied bearer
// credentials against the provider's userinfo endpoint, returning the
// verified profile tuple the identity binder consumes. The backend never
// sees a password — authentication is entirely delegated.
package oidc

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/cookbook/cookbook-backend/internal/config"
	"github.com/cookbook/cookbook-backend/internal/db/models"
)

// Provider verifies bearer credentials with the configured OIDC issuer.
type Provider struct {
	provider *oidc.Provider
	verifier *oidc.IDTokenVerifier
}

// New initializes a Provider using a background context for discovery.
func New(cfg *config.GoogleConfig) (*Provider, error) {
	return NewWithContext(context.Background(), cfg)
}

// NewWithContext initializes a Provider with the given context, allowing
// callers to bound the OIDC discovery request.
func NewWithContext(ctx context.Context, cfg *config.GoogleConfig) (*Provider, error) {
	if cfg.IssuerURL == "" {
		return nil, fmt.Errorf("oidc issuer URL is required")
	}

	provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create oidc provider: %w", err)
	}

	var verifier *oidc.IDTokenVerifier
	if cfg.ClientID != "" {
		verifier = provider.Verifier(&oidc.Config{ClientID: cfg.ClientID})
	}

	return &Provider{provider: provider, verifier: verifier}, nil
}

// userinfoClaims is the subset of the userinfo response the backend consumes.
type userinfoClaims struct {
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Picture    string `json:"picture"`
}

// VerifyAccessToken exchanges a caller-supplied OAuth access token for the
// verified profile via the provider's userinfo endpoint. Any failure —
// network, rejected token, missing email — surfaces as an error the handler
// reports as 401.
func (p *Provider) VerifyAccessToken(ctx context.Context, accessToken string) (*models.Profile, error) {
	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})

	info, err := p.provider.UserInfo(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("failed to verify access token: %w", err)
	}

	var claims userinfoClaims
	if err := info.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo claims: %w", err)
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("identity provider returned no email")
	}

	return &models.Profile{
		Email:      claims.Email,
		GivenName:  claims.GivenName,
		FamilyName: claims.FamilyName,
		Picture:    claims.Picture,
	}, nil
}

// VerifyIDToken verifies a raw ID token against the issuer's signing keys
// and extracts the profile from its claims. Login falls back to this when
// userinfo rejects the credential, so a client that completed the OAuth flow
// itself can present its ID token directly.
func (p *Provider) VerifyIDToken(ctx context.Context, rawIDToken string) (*models.Profile, error) {
	if p.verifier == nil {
		return nil, fmt.Errorf("id token verification requires a configured client id")
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify id token: %w", err)
	}

	var claims userinfoClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to decode id token claims: %w", err)
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("id token carries no email")
	}

	return &models.Profile{
		Email:      claims.Email,
		GivenName:  claims.GivenName,
		FamilyName: claims.FamilyName,
		Picture:    claims.Picture,
	}, nil
}
