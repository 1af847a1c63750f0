package config

import (
	"fmt"
	"os"
	"strings"
)

// ResolveAPIKey resolves an API key based on the given source:
//
//   - "env" or "" reads envVar
//   - "config" uses value as the key itself
//   - "file" reads the key from the file at value, e.g. a mounted secret
func ResolveAPIKey(source, value, envVar string) (string, error) {
	switch source {
	case "env", "":
		return resolveFromEnv(envVar)
	case "config":
		if value == "" {
			return "", fmt.Errorf("api_key_source is 'config' but no api_key value provided")
		}
		return value, nil
	case "file":
		return resolveFromFile(value)
	default:
		return "", fmt.Errorf("unknown api_key_source: %q", source)
	}
}

func resolveFromEnv(envVar string) (string, error) {
	if envVar == "" {
		return "", fmt.Errorf("no environment variable name specified")
	}
	val := strings.TrimSpace(os.Getenv(envVar))
	if val == "" {
		return "", fmt.Errorf("environment variable %s is not set", envVar)
	}
	return val, nil
}

func resolveFromFile(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("api_key_source is 'file' but api_key holds no path")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading api key file: %w", err)
	}
	key := strings.TrimSpace(string(data))
	if key == "" {
		return "", fmt.Errorf("api key file %s is empty", path)
	}
	return key, nil
}
