package config

import (
	"os"
	"strings"
)

func GetString(key, defaultValue string) string {
	v := os.Getenv(key)
	if v != "" {
		return v
	}
	return defaultValue
}

// GetStringMap reads a map from a comma separated list of key=value pairs.
// Pairs without a '=' are ignored.
func GetStringMap(key string, defaultValue map[string]string) map[string]string {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}

	result := map[string]string{}
	for _, pair := range strings.Split(v, ",") {
		k, val, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(k) == "" {
			continue
		}
		result[strings.TrimSpace(k)] = strings.TrimSpace(val)
	}
	return result
}
