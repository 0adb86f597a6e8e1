package weibo

import (
	"context"
	goerrors "errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jsiebens/weiboauth/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(site string) Config {
	c := NewConfig("app-key", "app-secret", "https://example.com/a/weibo/callback")
	c.Site = site
	return c
}

func TestLoginURL(t *testing.T) {
	p := New(NewConfig("app-key", "app-secret", "https://example.com/a/weibo/callback"))

	loginURL, err := p.LoginURL("")
	require.NoError(t, err)

	u, err := url.Parse(loginURL)
	require.NoError(t, err)
	require.True(t, u.IsAbs())
	require.Equal(t, "https", u.Scheme)
	require.Equal(t, "api.weibo.com", u.Host)
	require.Equal(t, "/oauth2/authorize", u.Path)

	q := u.Query()
	require.Equal(t, "code", q.Get("response_type"))
	require.Equal(t, "app-key", q.Get("client_id"))
	require.Equal(t, "https://example.com/a/weibo/callback", q.Get("redirect_uri"))
	require.Equal(t, "email", q.Get("scope"))
	require.False(t, q.Has("state"))
	require.False(t, q.Has("client_secret"))
}

func TestLoginURLIsStable(t *testing.T) {
	c := NewConfig("app-key", "app-secret", "https://example.com/a/weibo/callback")
	c.ExtraAuthParams = map[string]string{"display": "mobile", "forcelogin": "true", "language": "en"}
	p := New(c)

	first, err := p.LoginURL("")
	require.NoError(t, err)
	second, err := p.LoginURL("")
	require.NoError(t, err)
	require.Equal(t, first, second)

	u, err := url.Parse(first)
	require.NoError(t, err)
	require.Equal(t, "mobile", u.Query().Get("display"))
	require.Equal(t, "true", u.Query().Get("forcelogin"))
}

func TestLoginURLForwardsState(t *testing.T) {
	p := New(NewConfig("app-key", "app-secret", "https://example.com/a/weibo/callback"))

	loginURL, err := p.LoginURL("opaque-state")
	require.NoError(t, err)

	u, err := url.Parse(loginURL)
	require.NoError(t, err)
	require.Equal(t, "opaque-state", u.Query().Get("state"))
}

func TestLoginURLRequiresCredentials(t *testing.T) {
	parameters := []struct {
		name   string
		key    string
		secret string
	}{
		{"missing key", "", "app-secret"},
		{"missing secret", "app-key", ""},
		{"blank key", "  ", "app-secret"},
	}

	for _, p := range parameters {
		t.Run(p.name, func(t *testing.T) {
			provider := New(NewConfig(p.key, p.secret, "https://example.com/a/weibo/callback"))

			_, err := provider.LoginURL("")
			require.ErrorIs(t, err, errors.Configuration)
		})
	}
}

func TestExchangeWithEmptyCode(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	p := New(testConfig(srv.URL))

	token, err := p.Exchange(context.Background(), "")
	require.Nil(t, token)
	require.ErrorIs(t, err, errors.MissingCode)
	require.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestExchangeWithoutCredentials(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	c := testConfig(srv.URL)
	c.ClientSecret = ""
	p := New(c)

	_, err := p.Exchange(context.Background(), "validcode")
	require.ErrorIs(t, err, errors.Configuration)
	require.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestExchange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/oauth2/access_token", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "app-key", r.PostForm.Get("client_id"))
		assert.Equal(t, "app-secret", r.PostForm.Get("client_secret"))
		assert.Equal(t, "validcode", r.PostForm.Get("code"))
		assert.Equal(t, "https://example.com/a/weibo/callback", r.PostForm.Get("redirect_uri"))
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"T"}`))
	}))
	defer srv.Close()

	p := New(testConfig(srv.URL))

	token, err := p.Exchange(context.Background(), "validcode")
	require.NoError(t, err)
	require.Equal(t, "T", token.Bearer())
}

func TestExchangeWithPlainTextResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain;charset=UTF-8")
		_, _ = w.Write([]byte(`{"access_token":"2.00abc","remind_in":"157679999","expires_in":157679999,"uid":"1404376560"}`))
	}))
	defer srv.Close()

	p := New(testConfig(srv.URL))

	token, err := p.Exchange(context.Background(), "validcode")
	require.NoError(t, err)
	require.Equal(t, "2.00abc", token.Bearer())

	accessToken, ok := token.(*AccessToken)
	require.True(t, ok)
	require.False(t, accessToken.Token().Expiry.IsZero())
}

func TestExchangeFailures(t *testing.T) {
	parameters := []struct {
		name   string
		status int
		body   string
	}{
		{"rejected code", http.StatusBadRequest, `{"error":"invalid_grant","error_code":21325}`},
		{"server error", http.StatusInternalServerError, `oops`},
		{"unparsable body", http.StatusOK, `<html></html>`},
		{"missing token", http.StatusOK, `{"uid":"123"}`},
	}

	for _, p := range parameters {
		t.Run(p.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(p.status)
				_, _ = w.Write([]byte(p.body))
			}))
			defer srv.Close()

			provider := New(testConfig(srv.URL))

			token, err := provider.Exchange(context.Background(), "validcode")
			require.Nil(t, token)
			require.ErrorIs(t, err, errors.TokenExchange)
		})
	}
}

func TestExchangeTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	p := New(testConfig(srv.URL))

	_, err := p.Exchange(context.Background(), "validcode")
	require.ErrorIs(t, err, errors.Transport)
}

func TestExchangeTimeout(t *testing.T) {
	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()
	defer close(done)

	c := testConfig(srv.URL)
	c.HTTPTimeout = 50 * time.Millisecond
	p := New(c)

	_, err := p.Exchange(context.Background(), "validcode")
	require.ErrorIs(t, err, errors.Transport)

	var e *errors.Error
	require.True(t, goerrors.As(err, &e))
	require.Equal(t, "exchange", e.Op)
}

func TestNewAppliesDefaults(t *testing.T) {
	p := New(Config{ClientKey: "k", ClientSecret: "s"})

	c := p.Config()
	require.Equal(t, DefaultSite, c.Site)
	require.Equal(t, DefaultTokenPath, c.TokenPath)
	require.Equal(t, TokenModeQuery, c.TokenMode)
	require.Equal(t, DefaultTokenParamName, c.TokenParamName)
	require.Equal(t, ResponseFormatJSON, c.ResponseFormat)
	require.Equal(t, DefaultHTTPTimeout, c.HTTPTimeout)
	require.True(t, p.HasCallback())
	require.Equal(t, "weibo", p.Name())
}

func TestNewCopiesMaps(t *testing.T) {
	c := NewConfig("k", "s", "https://example.com/cb")
	c.ExtraAuthParams = map[string]string{"display": "mobile"}
	p := New(c)

	c.ExtraAuthParams["display"] = "client"

	loginURL, err := p.LoginURL("")
	require.NoError(t, err)
	u, err := url.Parse(loginURL)
	require.NoError(t, err)
	require.Equal(t, "mobile", u.Query().Get("display"))
}
