package weibo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/jsiebens/weiboauth/internal/auth"
	"github.com/jsiebens/weiboauth/internal/errors"
	"golang.org/x/oauth2"
)

// AccessToken is a Weibo access token bound to the API site it was issued for.
type AccessToken struct {
	token     *oauth2.Token
	site      string
	mode      TokenMode
	paramName string
	client    *http.Client
}

var _ auth.AccessToken = (*AccessToken)(nil)

func newAccessToken(token *oauth2.Token, c Config, client *http.Client) *AccessToken {
	return &AccessToken{
		token:     token,
		site:      c.Site,
		mode:      c.TokenMode,
		paramName: c.TokenParamName,
		client:    client,
	}
}

func (t *AccessToken) Bearer() string {
	return t.token.AccessToken
}

func (t *AccessToken) Token() *oauth2.Token {
	return t.token
}

// Get issues a GET request for path, relative to the API site, with the
// token attached according to the configured mode.
func (t *AccessToken) Get(ctx context.Context, path string) (*auth.RawResponse, error) {
	op := "get " + path

	req, err := t.newRequest(ctx, path)
	if err != nil {
		return nil, err
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, errors.TransportError(op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.TransportError(op, err)
	}

	return &auth.RawResponse{StatusCode: resp.StatusCode, Body: body}, nil
}

func (t *AccessToken) newRequest(ctx context.Context, path string) (*http.Request, error) {
	u, err := url.Parse(strings.TrimSuffix(t.site, "/") + "/" + strings.TrimPrefix(path, "/"))
	if err != nil {
		return nil, errors.ConfigurationError("get "+path, err)
	}

	switch t.mode {
	case TokenModeQuery:
		q := u.Query()
		q.Set(t.paramName, t.token.AccessToken)
		u.RawQuery = q.Encode()
		return http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	case TokenModeHeader:
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, err
		}
		t.token.SetAuthHeader(req)
		return req, nil
	case TokenModeBody:
		form := url.Values{}
		form.Set(t.paramName, t.token.AccessToken)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	default:
		return nil, errors.ConfigurationError("get "+path, fmt.Errorf("unsupported token mode '%s'", t.mode))
	}
}
