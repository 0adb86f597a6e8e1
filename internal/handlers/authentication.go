package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jsiebens/weiboauth/internal/auth"
	"github.com/jsiebens/weiboauth/internal/config"
	"github.com/jsiebens/weiboauth/internal/domain"
	"github.com/jsiebens/weiboauth/internal/errors"
	"github.com/jsiebens/weiboauth/internal/util"
	"github.com/labstack/echo/v4"
	"github.com/mr-tron/base58"
	"go.uber.org/zap"
)

const (
	stateCookieName = "weiboauth_state"
	stateMaxAge     = 10 * time.Minute
)

func NewAuthenticationHandlers(
	config *config.Config,
	registry *auth.Registry,
	repository domain.Repository) *AuthenticationHandlers {

	return &AuthenticationHandlers{
		config:     config,
		registry:   registry,
		repository: repository,
	}
}

type AuthenticationHandlers struct {
	config     *config.Config
	registry   *auth.Registry
	repository domain.Repository
}

type AuthInput struct {
	Provider string `param:"provider"`
}

type CallbackInput struct {
	Provider         string `param:"provider"`
	Code             string `query:"code"`
	State            string `query:"state"`
	Error            string `query:"error"`
	ErrorDescription string `query:"error_description"`
}

type AccountResponse struct {
	AccountID      uint64                 `json:"account_id,string"`
	Created        bool                   `json:"created"`
	Provider       string                 `json:"provider"`
	ExternalUserID string                 `json:"external_user_id"`
	LoginName      string                 `json:"login_name"`
	Email          string                 `json:"email"`
	Attributes     map[string]interface{} `json:"attributes,omitempty"`
	Profile        map[string]interface{} `json:"profile"`
}

type oauthState struct {
	Nonce    string `json:"n"`
	Provider string `json:"p"`
}

func (h *AuthenticationHandlers) StartAuth(c echo.Context) error {
	var input AuthInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}

	provider, err := h.registry.Get(input.Provider)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}

	nonce := util.RandStringBytes(32)
	state, err := h.createState(nonce, provider.Name())
	if err != nil {
		return logError(err)
	}

	redirectUrl, err := provider.LoginURL(state)
	if err != nil {
		flowTotal.WithLabelValues(provider.Name(), flowStateFailed).Inc()
		return flowError(err)
	}

	c.SetCookie(h.stateCookie(nonce, int(stateMaxAge.Seconds())))
	flowTotal.WithLabelValues(provider.Name(), flowStateAwaitingCallback).Inc()

	return c.Redirect(http.StatusFound, redirectUrl)
}

func (h *AuthenticationHandlers) Callback(c echo.Context) error {
	ctx := c.Request().Context()

	var input CallbackInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}

	provider, err := h.registry.Get(input.Provider)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}

	if err := h.verifyState(c, input.State, provider.Name()); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid state parameter")
	}
	c.SetCookie(h.stateCookie("", -1))

	if input.Error != "" {
		zap.L().Debug("provider returned an error on callback",
			zap.String("provider", provider.Name()),
			zap.String("error", input.Error),
			zap.String("error_description", input.ErrorDescription))
	}

	token, err := provider.Exchange(ctx, input.Code)
	if err != nil {
		flowTotal.WithLabelValues(provider.Name(), flowStateFailed).Inc()
		return flowError(err)
	}

	identity, err := provider.FetchIdentity(ctx, token)
	if err != nil {
		flowTotal.WithLabelValues(provider.Name(), flowStateFailed).Inc()
		return flowError(err)
	}

	flowTotal.WithLabelValues(provider.Name(), flowStateTokenExchanged).Inc()

	var account *domain.Account
	var created bool
	err = h.repository.Transaction(func(rp domain.Repository) error {
		a, isNew, err := rp.GetOrCreateAccount(ctx, identity.Provider, identity.ExternalUserID, identity.LoginName())
		if err != nil {
			return err
		}

		a.Email = identity.Email()
		a.Profile = identity.Profile
		if err := rp.SaveAccount(ctx, a); err != nil {
			return err
		}

		if err := rp.SetAccountLastAuthenticated(ctx, a.ID); err != nil {
			return err
		}

		account, created = a, isNew
		return nil
	})
	if err != nil {
		return logError(err)
	}

	return c.JSON(http.StatusOK, AccountResponse{
		AccountID:      account.ID,
		Created:        created,
		Provider:       identity.Provider,
		ExternalUserID: identity.ExternalUserID,
		LoginName:      account.LoginName,
		Email:          account.Email,
		Attributes:     identity.Attributes(),
		Profile:        identity.Profile,
	})
}

func (h *AuthenticationHandlers) createState(nonce, provider string) (string, error) {
	stateMap := oauthState{Nonce: nonce, Provider: provider}
	marshal, err := json.Marshal(&stateMap)
	if err != nil {
		return "", err
	}
	return base58.FastBase58Encoding(marshal), nil
}

func (h *AuthenticationHandlers) readState(s string) (*oauthState, error) {
	decodedState, err := base58.FastBase58Decoding(s)
	if err != nil {
		return nil, err
	}

	var state = &oauthState{}
	if err := json.Unmarshal(decodedState, state); err != nil {
		return nil, err
	}
	return state, nil
}

func (h *AuthenticationHandlers) verifyState(c echo.Context, s, provider string) error {
	state, err := h.readState(s)
	if err != nil {
		return err
	}

	cookie, err := c.Cookie(stateCookieName)
	if err != nil {
		return err
	}

	if state.Provider != provider {
		return fmt.Errorf("state was issued for provider '%s'", state.Provider)
	}

	if state.Nonce == "" || subtle.ConstantTimeCompare([]byte(state.Nonce), []byte(cookie.Value)) != 1 {
		return fmt.Errorf("state does not match")
	}

	return nil
}

func (h *AuthenticationHandlers) stateCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     stateCookieName,
		Value:    value,
		Path:     "/a/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   strings.HasPrefix(h.config.ServerUrl, "https://"),
		SameSite: http.SameSiteLaxMode,
	}
}

// flowError maps a failed flow to the http status reported to the browser.
func flowError(err error) error {
	switch errors.KindOf(err) {
	case errors.MissingCode:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	case errors.TokenExchange, errors.IdentityFetch:
		return echo.NewHTTPError(http.StatusBadGateway, err.Error()).SetInternal(err)
	case errors.Transport:
		return echo.NewHTTPError(http.StatusGatewayTimeout, err.Error()).SetInternal(err)
	default:
		return logError(err)
	}
}

func logError(err error) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, 1)
}
