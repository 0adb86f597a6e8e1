package auth

import (
	"context"
)

// Provider is implemented by every external authentication provider.
//
// A provider builds the redirect to its authorization endpoint, exchanges the
// code returned on the callback for an access token and uses that token to
// assemble an Identity. Providers keep no per-flow state; anti-forgery state
// and sessions belong to the host.
type Provider interface {
	Name() string
	HasCallback() bool
	LoginURL(state string) (string, error)
	Exchange(ctx context.Context, code string) (AccessToken, error)
	FetchIdentity(ctx context.Context, token AccessToken) (*Identity, error)
}

// AccessToken is a bearer credential bound to the API of the provider that issued it.
type AccessToken interface {
	Bearer() string
	Get(ctx context.Context, path string) (*RawResponse, error)
}

type RawResponse struct {
	StatusCode int
	Body       []byte
}

func (r *RawResponse) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
