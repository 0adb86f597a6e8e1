package handlers

import (
	"net/http"

	"github.com/jsiebens/weiboauth/internal/auth"
	"github.com/jsiebens/weiboauth/internal/version"
	"github.com/labstack/echo/v4"
)

type IndexResponse struct {
	version.Info
	Providers map[string]string `json:"providers"`
}

func IndexHandler(registry *auth.Registry) echo.HandlerFunc {
	return func(c echo.Context) error {
		providers := map[string]string{}
		for _, name := range registry.Names() {
			providers[name] = "/a/" + name + "/login"
		}
		return c.JSON(http.StatusOK, IndexResponse{Info: version.Get(), Providers: providers})
	}
}
