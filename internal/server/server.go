package server

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/jsiebens/weiboauth/internal/auth"
	"github.com/jsiebens/weiboauth/internal/config"
	"github.com/jsiebens/weiboauth/internal/database"
	"github.com/jsiebens/weiboauth/internal/handlers"
	"github.com/jsiebens/weiboauth/internal/weibo"
	echo_prometheus "github.com/labstack/echo-contrib/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"
	"gorm.io/plugin/prometheus"
)

func Start(c *config.Config) error {
	logger, err := setupLogging(c.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting weiboauth server")

	repository, err := database.OpenDB(&c.Database, logger, prometheus.New(prometheus.Config{
		DBName:          "weiboauth",
		RefreshInterval: 15,
	}))
	if err != nil {
		return err
	}

	registry, err := setupProviders(c, logger)
	if err != nil {
		return fmt.Errorf("error configuring providers: %v", err)
	}

	p := echo_prometheus.NewPrometheus("http", nil)

	metricsHandler := echo.New()
	metricsHandler.HideBanner = true
	p.SetMetricsPath(metricsHandler)

	authenticationHandlers := handlers.NewAuthenticationHandlers(c, registry, repository)

	appHandler := echo.New()
	appHandler.HideBanner = true
	appHandler.Use(EchoMetrics(p), EchoLogger(logger), EchoErrorHandler(logger), EchoRecover(logger))

	appHandler.GET("/", handlers.IndexHandler(registry))

	a := appHandler.Group("/a")
	a.GET("/:provider/login", authenticationHandlers.StartAuth)
	a.GET("/:provider/callback", authenticationHandlers.Callback)

	httpL, err := net.Listen("tcp", c.HttpListenAddr)
	if err != nil {
		return err
	}

	metricsL, err := net.Listen("tcp", c.MetricsListenAddr)
	if err != nil {
		return err
	}

	http2Server := &http2.Server{}
	g := new(errgroup.Group)

	g.Go(func() error { return http.Serve(httpL, h2c.NewHandler(appHandler, http2Server)) })
	g.Go(func() error { return http.Serve(metricsL, metricsHandler) })

	logger.Info("Server is running",
		zap.String("http_addr", c.HttpListenAddr),
		zap.String("metrics_addr", c.MetricsListenAddr),
		zap.Strings("providers", registry.Names()))

	return g.Wait()
}

func setupProviders(c *config.Config, logger *zap.Logger) (*auth.Registry, error) {
	if err := c.Providers.Weibo.Validate(); err != nil {
		return nil, err
	}

	weiboProvider, err := NewWeiboProvider(c, logger)
	if err != nil {
		return nil, err
	}

	return auth.NewRegistry(weiboProvider)
}

// NewWeiboProvider creates the weibo provider from the host configuration.
func NewWeiboProvider(c *config.Config, logger *zap.Logger) (*weibo.Provider, error) {
	w := c.Providers.Weibo

	timeout, err := w.Timeout()
	if err != nil {
		return nil, err
	}

	wc := weibo.NewConfig(w.ClientKey, w.ClientSecret, c.WeiboCallbackUrl())
	if w.Site != "" {
		wc.Site = w.Site
	}
	if w.Scope != "" {
		wc.Scope = w.Scope
	}
	wc.TokenMode = weibo.TokenMode(w.TokenMode)
	wc.HTTPTimeout = timeout
	wc.ExtraAuthParams = w.ExtraAuthParams
	wc.UserInfoMapping = w.UserInfoMapping

	return weibo.New(wc, weibo.WithLogger(logger)), nil
}

func setupLogging(config config.Logging) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if config.Level != "" {
		l, err := zapcore.ParseLevel(config.Level)
		if err != nil {
			return nil, err
		}
		level = l
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Sampling = nil
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.DisableStacktrace = true

	if strings.ToLower(config.Format) != "json" {
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	if config.File != "" {
		zc.OutputPaths = []string{config.File}
	} else {
		zc.OutputPaths = []string{"stdout"}
	}

	logger, err := zc.Build()
	if err != nil {
		return nil, err
	}

	logger = logger.Named("weiboauth")
	zap.ReplaceGlobals(logger)

	return logger, nil
}
