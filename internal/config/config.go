package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/mitchellh/go-homedir"
	str2dur "github.com/xhit/go-str2duration/v2"
	"gopkg.in/yaml.v3"
)

const (
	httpListenAddrKey    = "WEIBOAUTH_HTTP_LISTEN_ADDR"
	metricsListenAddrKey = "WEIBOAUTH_METRICS_LISTEN_ADDR"
	serverUrlKey         = "WEIBOAUTH_SERVER_URL"
	databaseTypeKey      = "WEIBOAUTH_DB_TYPE"
	databaseUrlKey       = "WEIBOAUTH_DB_URL"
	loggingLevelKey      = "WEIBOAUTH_LOGGING_LEVEL"
	loggingFormatKey     = "WEIBOAUTH_LOGGING_FORMAT"
	loggingFileKey       = "WEIBOAUTH_LOGGING_FILE"
	weiboClientKeyKey    = "WEIBOAUTH_WEIBO_CLIENT_KEY"
	weiboClientSecretKey = "WEIBOAUTH_WEIBO_CLIENT_SECRET"
	weiboCallbackUrlKey  = "WEIBOAUTH_WEIBO_CALLBACK_URL"
	weiboScopeKey        = "WEIBOAUTH_WEIBO_SCOPE"
	weiboSiteKey         = "WEIBOAUTH_WEIBO_SITE"
	weiboTokenModeKey    = "WEIBOAUTH_WEIBO_TOKEN_MODE"
	weiboHttpTimeoutKey  = "WEIBOAUTH_WEIBO_HTTP_TIMEOUT"
	weiboUserInfoMapKey  = "WEIBOAUTH_WEIBO_USER_INFO_MAPPING"
)

func LoadConfig(path string, flags *Config) (*Config, error) {
	config := defaultConfig()

	if len(path) != 0 {
		expandedPath, err := homedir.Expand(path)
		if err != nil {
			return nil, err
		}
		b, err := os.ReadFile(expandedPath)
		if err != nil {
			return nil, err
		}

		expanded, err := expandEnvVars(b)
		if err != nil {
			return nil, err
		}

		if err := yaml.Unmarshal(expanded, config); err != nil {
			return nil, err
		}
	}

	if flags != nil {
		config.merge(flags)
	}

	if err := config.check(); err != nil {
		return nil, err
	}

	return config, nil
}

func defaultConfig() *Config {
	return &Config{
		HttpListenAddr:    GetString(httpListenAddrKey, ":8080"),
		MetricsListenAddr: GetString(metricsListenAddrKey, ":9091"),
		ServerUrl:         GetString(serverUrlKey, "http://localhost:8080"),
		Database: Database{
			Type: GetString(databaseTypeKey, "sqlite"),
			Url:  GetString(databaseUrlKey, "weiboauth.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"),
		},
		Logging: Logging{
			Level:  GetString(loggingLevelKey, "info"),
			Format: GetString(loggingFormatKey, ""),
			File:   GetString(loggingFileKey, ""),
		},
		Providers: Providers{
			Weibo: Weibo{
				ClientKey:       GetString(weiboClientKeyKey, ""),
				ClientSecret:    GetString(weiboClientSecretKey, ""),
				CallbackUrl:     GetString(weiboCallbackUrlKey, ""),
				Scope:           GetString(weiboScopeKey, ""),
				Site:            GetString(weiboSiteKey, ""),
				TokenMode:       GetString(weiboTokenModeKey, ""),
				HttpTimeout:     GetString(weiboHttpTimeoutKey, "10s"),
				UserInfoMapping: GetStringMap(weiboUserInfoMapKey, nil),
			},
		},
	}
}

type Config struct {
	HttpListenAddr    string    `yaml:"http_listen_addr,omitempty"`
	MetricsListenAddr string    `yaml:"metrics_listen_addr,omitempty"`
	ServerUrl         string    `yaml:"server_url,omitempty"`
	Database          Database  `yaml:"database,omitempty"`
	Logging           Logging   `yaml:"logging,omitempty"`
	Providers         Providers `yaml:"providers,omitempty"`
}

type Database struct {
	Type string `yaml:"type,omitempty"`
	Url  string `yaml:"url,omitempty"`
}

type Logging struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
	File   string `yaml:"file,omitempty"`
}

type Providers struct {
	Weibo Weibo `yaml:"weibo,omitempty"`
}

type Weibo struct {
	ClientKey       string            `yaml:"client_key,omitempty"`
	ClientSecret    string            `yaml:"client_secret,omitempty"`
	CallbackUrl     string            `yaml:"callback_url,omitempty"`
	Scope           string            `yaml:"scope,omitempty"`
	Site            string            `yaml:"site,omitempty"`
	TokenMode       string            `yaml:"token_mode,omitempty"`
	HttpTimeout     string            `yaml:"http_timeout,omitempty"`
	ExtraAuthParams map[string]string `yaml:"extra_auth_params,omitempty"`
	UserInfoMapping map[string]string `yaml:"user_info_mapping,omitempty"`
}

// Timeout parses the http timeout, accepting units like "1d" or "1h30m".
func (w *Weibo) Timeout() (time.Duration, error) {
	if w.HttpTimeout == "" {
		return 0, nil
	}
	return str2dur.ParseDuration(w.HttpTimeout)
}

// Validate checks the settings needed to run authentication flows.
func (w *Weibo) Validate() error {
	var result *multierror.Error
	if strings.TrimSpace(w.ClientKey) == "" {
		result = multierror.Append(result, fmt.Errorf("providers.weibo.client_key is required"))
	}
	if strings.TrimSpace(w.ClientSecret) == "" {
		result = multierror.Append(result, fmt.Errorf("providers.weibo.client_secret is required"))
	}
	return result.ErrorOrNil()
}

func (c *Config) CreateUrl(format string, a ...interface{}) string {
	path := fmt.Sprintf(format, a...)
	return strings.TrimSuffix(c.ServerUrl, "/") + "/" + strings.TrimPrefix(path, "/")
}

// WeiboCallbackUrl returns the configured callback url, or the host's own callback endpoint.
func (c *Config) WeiboCallbackUrl() string {
	if c.Providers.Weibo.CallbackUrl != "" {
		return c.Providers.Weibo.CallbackUrl
	}
	return c.CreateUrl("/a/weibo/callback")
}

func (c *Config) check() error {
	var result *multierror.Error

	if u, err := url.Parse(c.ServerUrl); err != nil || !u.IsAbs() {
		result = multierror.Append(result, fmt.Errorf("invalid server_url '%s'", c.ServerUrl))
	}

	switch strings.ToLower(c.Database.Type) {
	case "sqlite", "sqlite3", "postgres", "postgresql":
	default:
		result = multierror.Append(result, fmt.Errorf("invalid database type '%s'", c.Database.Type))
	}

	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "console", "json":
	default:
		result = multierror.Append(result, fmt.Errorf("invalid logging format '%s'", c.Logging.Format))
	}

	switch c.Providers.Weibo.TokenMode {
	case "", "query", "header", "body":
	default:
		result = multierror.Append(result, fmt.Errorf("invalid providers.weibo.token_mode '%s'", c.Providers.Weibo.TokenMode))
	}

	if _, err := c.Providers.Weibo.Timeout(); err != nil {
		result = multierror.Append(result, fmt.Errorf("invalid providers.weibo.http_timeout: %w", err))
	}

	return result.ErrorOrNil()
}

func (c *Config) merge(o *Config) {
	mergeString(&c.HttpListenAddr, o.HttpListenAddr)
	mergeString(&c.MetricsListenAddr, o.MetricsListenAddr)
	mergeString(&c.ServerUrl, o.ServerUrl)
	mergeString(&c.Database.Type, o.Database.Type)
	mergeString(&c.Database.Url, o.Database.Url)
	mergeString(&c.Logging.Level, o.Logging.Level)
	mergeString(&c.Logging.Format, o.Logging.Format)
	mergeString(&c.Logging.File, o.Logging.File)
	mergeString(&c.Providers.Weibo.ClientKey, o.Providers.Weibo.ClientKey)
	mergeString(&c.Providers.Weibo.ClientSecret, o.Providers.Weibo.ClientSecret)
	mergeString(&c.Providers.Weibo.CallbackUrl, o.Providers.Weibo.CallbackUrl)
	mergeString(&c.Providers.Weibo.Scope, o.Providers.Weibo.Scope)
	mergeString(&c.Providers.Weibo.Site, o.Providers.Weibo.Site)
	mergeString(&c.Providers.Weibo.TokenMode, o.Providers.Weibo.TokenMode)
	mergeString(&c.Providers.Weibo.HttpTimeout, o.Providers.Weibo.HttpTimeout)
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

var envVarPattern = regexp.MustCompile(`\$\{([a-zA-Z_][a-zA-Z0-9_]*)(?::([^}]*))?}`)

// expandEnvVars replaces ${VAR} and ${VAR:default} references.
// A reference without default to an unset variable is an error.
func expandEnvVars(b []byte) ([]byte, error) {
	var result *multierror.Error

	expanded := envVarPattern.ReplaceAllFunc(b, func(match []byte) []byte {
		groups := envVarPattern.FindSubmatch(match)
		name := string(groups[1])

		if v, ok := os.LookupEnv(name); ok {
			return []byte(v)
		}

		if idx := strings.Index(string(match), ":"); idx != -1 {
			return groups[2]
		}

		result = multierror.Append(result, fmt.Errorf("environment variable '%s' is not set", name))
		return match
	})

	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}

	return expanded, nil
}
