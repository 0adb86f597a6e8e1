package weibo

import (
	"fmt"
	"strings"
	"time"

	"github.com/jsiebens/weiboauth/internal/errors"
)

// TokenMode selects how the access token is attached to API requests.
type TokenMode string

const (
	TokenModeQuery  TokenMode = "query"
	TokenModeHeader TokenMode = "header"
	TokenModeBody   TokenMode = "body"
)

const (
	ResponseFormatJSON = "json"
	ResponseFormatForm = "form"
)

const (
	DefaultSite                   = "https://api.weibo.com/"
	DefaultAuthorizePath          = "/oauth2/authorize"
	DefaultTokenPath              = "/oauth2/access_token"
	DefaultUIDPath                = "/account/get_uid.json"
	DefaultUserInfoPath           = "/users/show.json"
	DefaultScope                  = "email"
	DefaultTokenParamName         = "access_token"
	DefaultHTTPTimeout            = 10 * time.Second
	DefaultPlaceholderEmailDomain = "weibo.thunderboltlabs.com"
)

// Config holds the endpoints and credentials of a Weibo application.
//
// Paths are relative to Site. A Config is not modified once it is passed to New,
// so a single value can back any number of concurrent flows.
type Config struct {
	Site          string
	AuthorizePath string
	TokenPath     string
	UIDPath       string
	UserInfoPath  string

	ClientKey    string
	ClientSecret string
	CallbackURL  string
	Scope        string

	TokenParamName string
	TokenMode      TokenMode
	ResponseFormat string

	// ExtraAuthParams are appended to the authorization URL.
	ExtraAuthParams map[string]string

	// UserInfoMapping maps attribute names to keys of the users/show profile.
	UserInfoMapping map[string]string

	// PlaceholderEmailDomain is used to synthesize an email address when the
	// profile has none. Weibo only returns emails to applications with
	// elevated API privileges.
	PlaceholderEmailDomain string

	HTTPTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Site:                   DefaultSite,
		AuthorizePath:          DefaultAuthorizePath,
		TokenPath:              DefaultTokenPath,
		UIDPath:                DefaultUIDPath,
		UserInfoPath:           DefaultUserInfoPath,
		Scope:                  DefaultScope,
		TokenParamName:         DefaultTokenParamName,
		TokenMode:              TokenModeQuery,
		ResponseFormat:         ResponseFormatJSON,
		PlaceholderEmailDomain: DefaultPlaceholderEmailDomain,
		HTTPTimeout:            DefaultHTTPTimeout,
	}
}

// NewConfig returns the default configuration with the application credentials set.
func NewConfig(key, secret, callbackURL string) Config {
	c := DefaultConfig()
	c.ClientKey = key
	c.ClientSecret = secret
	c.CallbackURL = callbackURL
	return c
}

// Validate reports a configuration error when the application credentials are missing.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ClientKey) == "" {
		return errors.ConfigurationError("weibo", fmt.Errorf("client key is required"))
	}
	if strings.TrimSpace(c.ClientSecret) == "" {
		return errors.ConfigurationError("weibo", fmt.Errorf("client secret is required"))
	}
	return nil
}

func (c Config) AuthorizeURL() string {
	return c.CreateUrl(c.AuthorizePath)
}

func (c Config) TokenURL() string {
	return c.CreateUrl(c.TokenPath)
}

// Scopes returns the scope as a single value. Weibo separates scopes with
// commas, so the configured string is sent unchanged.
func (c Config) Scopes() []string {
	if strings.TrimSpace(c.Scope) == "" {
		return nil
	}
	return []string{c.Scope}
}

// CreateUrl joins path onto Site.
func (c Config) CreateUrl(path string) string {
	return strings.TrimSuffix(c.Site, "/") + "/" + strings.TrimPrefix(path, "/")
}

// normalize fills blank fields with defaults and copies the maps so the
// caller's values can not leak into a running provider.
func (c Config) normalize() Config {
	d := DefaultConfig()
	if c.Site == "" {
		c.Site = d.Site
	}
	if c.AuthorizePath == "" {
		c.AuthorizePath = d.AuthorizePath
	}
	if c.TokenPath == "" {
		c.TokenPath = d.TokenPath
	}
	if c.UIDPath == "" {
		c.UIDPath = d.UIDPath
	}
	if c.UserInfoPath == "" {
		c.UserInfoPath = d.UserInfoPath
	}
	if c.TokenParamName == "" {
		c.TokenParamName = d.TokenParamName
	}
	if c.TokenMode == "" {
		c.TokenMode = d.TokenMode
	}
	if c.ResponseFormat == "" {
		c.ResponseFormat = d.ResponseFormat
	}
	if c.PlaceholderEmailDomain == "" {
		c.PlaceholderEmailDomain = d.PlaceholderEmailDomain
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = d.HTTPTimeout
	}
	c.ExtraAuthParams = copyMap(c.ExtraAuthParams)
	c.UserInfoMapping = copyMap(c.UserInfoMapping)
	return c
}

func copyMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	r := make(map[string]string, len(m))
	for k, v := range m {
		r[k] = v
	}
	return r
}
