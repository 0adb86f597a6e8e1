package cmd

import (
	"bytes"
	"context"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/jsiebens/weiboauth/internal/config"
	"github.com/jsiebens/weiboauth/internal/database"
	"github.com/jsiebens/weiboauth/internal/domain"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func execute(t *testing.T, args ...string) (string, error) {
	out := &bytes.Buffer{}
	command := Command()
	command.SetOut(out)
	command.SetErr(out)
	command.SetArgs(args)
	err := command.Execute()
	return out.String(), err
}

func TestLoginUrlCommand(t *testing.T) {
	out, err := execute(t, "login-url",
		"--server-url", "https://auth.example.com",
		"--weibo-client-key", "app-key",
		"--weibo-client-secret", "app-secret",
		"--state", "xyz")
	require.NoError(t, err)

	u, err := url.Parse(strings.TrimSpace(out))
	require.NoError(t, err)
	require.Equal(t, "api.weibo.com", u.Host)
	require.Equal(t, "app-key", u.Query().Get("client_id"))
	require.Equal(t, "https://auth.example.com/a/weibo/callback", u.Query().Get("redirect_uri"))
	require.Equal(t, "xyz", u.Query().Get("state"))
}

func TestLoginUrlCommandWithoutCredentials(t *testing.T) {
	t.Setenv("WEIBOAUTH_WEIBO_CLIENT_KEY", "")
	t.Setenv("WEIBOAUTH_WEIBO_CLIENT_SECRET", "")

	_, err := execute(t, "login-url")
	require.ErrorContains(t, err, "client key is required")
}

func TestProvidersCommand(t *testing.T) {
	out, err := execute(t, "providers",
		"--weibo-client-key", "app-key",
		"--weibo-client-secret", "app-secret",
		"--weibo-token-mode", "header")
	require.NoError(t, err)
	require.Contains(t, out, "weibo")
	require.Contains(t, out, "header")
	require.Contains(t, out, "http://localhost:8080/a/weibo/callback")
}

func TestListAccountsCommand(t *testing.T) {
	out, err := execute(t, "accounts", "list",
		"--database-url", filepath.Join(t.TempDir(), "accounts.db"))
	require.NoError(t, err)
	require.Contains(t, out, "EXTERNAL_ID")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	require.Contains(t, out, "Version:       dev")
	require.Contains(t, out, "Go Version:")
}

func TestGetAccountCommand(t *testing.T) {
	dbUrl := filepath.Join(t.TempDir(), "accounts.db")

	repository, err := database.OpenDB(&config.Database{Type: "sqlite", Url: dbUrl}, zap.NewNop())
	require.NoError(t, err)

	account, _, err := repository.GetOrCreateAccount(context.Background(), "weibo", "123", "alice")
	require.NoError(t, err)
	account.Email = "123@weibo.thunderboltlabs.com"
	account.Profile = domain.Profile{"screen_name": "alice"}
	require.NoError(t, repository.SaveAccount(context.Background(), account))

	out, err := execute(t, "accounts", "get", "--database-url", dbUrl, "--account-id", strconv.FormatUint(account.ID, 10))
	require.NoError(t, err)
	require.Contains(t, out, "123@weibo.thunderboltlabs.com")
	require.Contains(t, out, `"screen_name": "alice"`)

	_, err = execute(t, "accounts", "get", "--database-url", dbUrl, "--account-id", "1")
	require.ErrorContains(t, err, "account 1 not found")
}
