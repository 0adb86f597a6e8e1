// Package weibo implements the OAuth2 authorization code flow against the
// Weibo API and turns its account and profile endpoints into an auth.Identity.
package weibo

import (
	"context"
	goerrors "errors"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/jsiebens/weiboauth/internal/auth"
	"github.com/jsiebens/weiboauth/internal/errors"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const Name = "weibo"

type Provider struct {
	config Config
	client *http.Client
	logger *zap.Logger
}

type Option func(*Provider)

// WithHTTPClient sets the client used for the token exchange and API calls.
// Its transport is reused; the timeout from the Config is applied when the
// client has none.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Provider) {
		p.client = client
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(p *Provider) {
		p.logger = logger
	}
}

func New(c Config, opts ...Option) *Provider {
	p := &Provider{
		config: c.normalize(),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.client == nil {
		p.client = &http.Client{}
	}
	if p.client.Timeout == 0 {
		cl := *p.client
		cl.Timeout = p.config.HTTPTimeout
		p.client = &cl
	}
	if p.logger == nil {
		p.logger = zap.L()
	}
	p.logger = p.logger.Named(Name)

	return p
}

var _ auth.Provider = (*Provider)(nil)

func (p *Provider) Name() string {
	return Name
}

func (p *Provider) Config() Config {
	return p.config
}

// HasCallback reports that Weibo redirects back to the host with a code.
func (p *Provider) HasCallback() bool {
	return true
}

// LoginURL returns the authorization endpoint the user is redirected to.
// The state is forwarded unchanged when non-empty; verifying it is up to the host.
func (p *Provider) LoginURL(state string) (string, error) {
	if err := p.config.Validate(); err != nil {
		return "", err
	}

	var opts []oauth2.AuthCodeOption
	for k, v := range p.config.ExtraAuthParams {
		opts = append(opts, oauth2.SetAuthURLParam(k, v))
	}

	oauth2Config := p.oauth2Config()
	return oauth2Config.AuthCodeURL(state, opts...), nil
}

// Exchange trades the authorization code for an access token.
// An empty code, which Weibo sends when the user denies consent, fails without
// contacting the provider.
func (p *Provider) Exchange(ctx context.Context, code string) (auth.AccessToken, error) {
	if err := p.config.Validate(); err != nil {
		return nil, err
	}

	if strings.TrimSpace(code) == "" {
		return nil, errors.MissingCodeError("exchange")
	}

	oauth2Config := p.oauth2Config()
	oauth2Token, err := oauth2Config.Exchange(p.exchangeContext(ctx), code)
	if err != nil {
		p.logger.Debug("token exchange failed", zap.String("token_url", p.config.TokenURL()), zap.Error(err))
		if isTransportError(ctx, err) {
			return nil, errors.TransportError("exchange", err)
		}
		return nil, errors.TokenExchangeError("exchange", err)
	}

	p.logger.Debug("token exchanged", zap.Time("expiry", oauth2Token.Expiry))

	return newAccessToken(oauth2Token, p.config, p.client), nil
}

func (p *Provider) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     p.config.ClientKey,
		ClientSecret: p.config.ClientSecret,
		RedirectURL:  p.config.CallbackURL,
		Endpoint: oauth2.Endpoint{
			AuthURL:   p.config.AuthorizeURL(),
			TokenURL:  p.config.TokenURL(),
			AuthStyle: oauth2.AuthStyleInParams,
		},
		Scopes: p.config.Scopes(),
	}
}

func (p *Provider) exchangeContext(ctx context.Context) context.Context {
	cl := *p.client
	cl.Transport = &responseFormatTransport{
		format: p.config.ResponseFormat,
		base:   p.client.Transport,
	}
	return context.WithValue(ctx, oauth2.HTTPClient, &cl)
}

func isTransportError(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	if goerrors.Is(err, context.DeadlineExceeded) || goerrors.Is(err, context.Canceled) {
		return true
	}
	var urlErr *url.Error
	if goerrors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return goerrors.As(err, &netErr)
}
