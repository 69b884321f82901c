package identity

import (
	"context"

	"golang.org/x/oauth2"
)

// OAuthResolver derives a platform identity from an OAuth2 token source.
// The access token serves as the platform auth ticket; the backend validates
// it against the platform's own API.
type OAuthResolver struct {
	UserID string
	Source oauth2.TokenSource
}

// NewOAuthResolver wires a resolver over an existing token source, typically
// one produced by the platform SDK's login flow.
func NewOAuthResolver(userID string, source oauth2.TokenSource) *OAuthResolver {
	return &OAuthResolver{UserID: userID, Source: source}
}

// Resolve fetches a current token from the source. An expired or revoked
// source surfaces as an error; a nil source as unavailable.
func (r *OAuthResolver) Resolve(ctx context.Context) (Identity, bool, error) {
	if r.Source == nil || r.UserID == "" {
		return Identity{}, false, nil
	}
	tok, err := r.Source.Token()
	if err != nil {
		return Identity{}, false, err
	}
	if !tok.Valid() {
		return Identity{}, false, nil
	}
	return Identity{PlatformUserID: r.UserID, AuthTicket: tok.AccessToken}, true, nil
}
