package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	// Create a temporary config file
	tempFile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tempFile.Name())

	yamlContent := `
server_url: "https://auth.localtest.me"

database:
  type: ${DB_TYPE:sqlite}
  url: ${DB_URL}

providers:
  weibo:
    client_key: ${WEIBO_KEY}
    client_secret: ${WEIBO_SECRET:changeme}
    scope: email,direct_messages_read
    http_timeout: 1m30s
    user_info_mapping:
      username: screen_name
`
	if _, err := tempFile.Write([]byte(yamlContent)); err != nil {
		t.Fatalf("Failed to write to temp file: %v", err)
	}
	tempFile.Close()

	t.Run("With env vars set", func(t *testing.T) {
		t.Setenv("DB_URL", "./weiboauth.db")
		t.Setenv("WEIBO_KEY", "app-key")

		config, err := LoadConfig(tempFile.Name(), nil)
		require.NoError(t, err)

		require.Equal(t, "sqlite", config.Database.Type)
		require.Equal(t, "./weiboauth.db", config.Database.Url)
		require.Equal(t, "app-key", config.Providers.Weibo.ClientKey)
		require.Equal(t, "changeme", config.Providers.Weibo.ClientSecret)
		require.Equal(t, "email,direct_messages_read", config.Providers.Weibo.Scope)
		require.Equal(t, map[string]string{"username": "screen_name"}, config.Providers.Weibo.UserInfoMapping)
		require.Equal(t, "https://auth.localtest.me/a/weibo/callback", config.WeiboCallbackUrl())

		timeout, err := config.Providers.Weibo.Timeout()
		require.NoError(t, err)
		require.Equal(t, 90*time.Second, timeout)
	})

	t.Run("Without required DB_URL", func(t *testing.T) {
		require.NoError(t, os.Unsetenv("DB_URL"))
		t.Setenv("WEIBO_KEY", "app-key")

		_, err := LoadConfig(tempFile.Name(), nil)
		require.Error(t, err)
	})

	t.Run("Flags override file", func(t *testing.T) {
		t.Setenv("DB_URL", "./weiboauth.db")
		t.Setenv("WEIBO_KEY", "app-key")

		flags := &Config{}
		flags.Providers.Weibo.ClientKey = "flag-key"
		flags.HttpListenAddr = ":9000"

		config, err := LoadConfig(tempFile.Name(), flags)
		require.NoError(t, err)
		require.Equal(t, "flag-key", config.Providers.Weibo.ClientKey)
		require.Equal(t, ":9000", config.HttpListenAddr)
	})
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("WEIBOAUTH_WEIBO_CLIENT_KEY", "env-key")
	t.Setenv("WEIBOAUTH_WEIBO_USER_INFO_MAPPING", "username=screen_name, avatar=profile_image_url,broken")

	config, err := LoadConfig("", nil)
	require.NoError(t, err)

	require.Equal(t, ":8080", config.HttpListenAddr)
	require.Equal(t, "sqlite", config.Database.Type)
	require.Equal(t, "info", config.Logging.Level)
	require.Equal(t, "env-key", config.Providers.Weibo.ClientKey)
	require.Equal(t, map[string]string{
		"username": "screen_name",
		"avatar":   "profile_image_url",
	}, config.Providers.Weibo.UserInfoMapping)
	require.Equal(t, "http://localhost:8080/a/weibo/callback", config.WeiboCallbackUrl())
}

func TestLoadConfigInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	yamlContent := `
server_url: "not a url"
database:
  type: mysql
logging:
  format: xml
providers:
  weibo:
    token_mode: cookie
    http_timeout: soon
`
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0600))

	_, err := LoadConfig(path, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid server_url")
	require.Contains(t, err.Error(), "invalid database type 'mysql'")
	require.Contains(t, err.Error(), "invalid logging format 'xml'")
	require.Contains(t, err.Error(), "invalid providers.weibo.token_mode 'cookie'")
	require.Contains(t, err.Error(), "invalid providers.weibo.http_timeout")
}

func TestWeiboValidate(t *testing.T) {
	w := Weibo{}
	err := w.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "client_key is required")
	require.Contains(t, err.Error(), "client_secret is required")

	w = Weibo{ClientKey: "k", ClientSecret: "s"}
	require.NoError(t, w.Validate())
}

func TestExpandEnvVars(t *testing.T) {
	// Setup test environment variables
	t.Setenv("TEST_VAR", "test_value")
	t.Setenv("PORT", "9090")

	// Ensure TEST_DEFAULT is not set
	require.NoError(t, os.Unsetenv("TEST_DEFAULT"))

	tests := []struct {
		name        string
		input       []byte
		expected    []byte
		expectError bool
	}{
		{
			name:     "Braced variable",
			input:    []byte("Port: ${PORT}"),
			expected: []byte("Port: 9090"),
		},
		{
			name:     "Default value used",
			input:    []byte("Default: ${TEST_DEFAULT:fallback}"),
			expected: []byte("Default: fallback"),
		},
		{
			name:     "Empty default value",
			input:    []byte("Default: '${TEST_DEFAULT:}'"),
			expected: []byte("Default: ''"),
		},
		{
			name:     "Default value not used when env var exists",
			input:    []byte("Not default: ${PORT:8080}"),
			expected: []byte("Not default: 9090"),
		},
		{
			name:     "Multiple replacements",
			input:    []byte("Config: ${TEST_VAR} ${PORT} ${TEST_DEFAULT:default}"),
			expected: []byte("Config: test_value 9090 default"),
		},
		{
			name:        "Missing required variable",
			input:       []byte("Required: ${MISSING_VAR}"),
			expectError: true,
		},
		{
			name:        "Mixed variables with one missing",
			input:       []byte("Mixed: ${TEST_VAR} ${MISSING_VAR} ${TEST_DEFAULT:default}"),
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := expandEnvVars(tt.input)

			if tt.expectError {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			if !bytes.Equal(result, tt.expected) {
				t.Errorf("expandEnvVars() got = %s, want %s", result, tt.expected)
			}
		})
	}
}
