package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = appName
	keyringUser    = "api-key"
	credFileName   = ".credentials"

	// APIKeyEnv overrides every stored API key.
	APIKeyEnv = "LOCKIE_API_KEY"
)

// DataDir returns the path to the data directory for secure storage.
// Uses XDG_DATA_HOME or defaults to ~/.local/share/lockiemedia/
func DataDir() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dataHome = filepath.Join(homeDir, ".local", "share")
	}

	dataDir := filepath.Join(dataHome, appName)
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	return dataDir, nil
}

// GetAPIKey retrieves the API key from available sources.
// Priority: 1. LOCKIE_API_KEY env var, 2. System keyring, 3. Credentials file
func GetAPIKey() (string, error) {
	if key := os.Getenv(APIKeyEnv); key != "" {
		return strings.TrimSpace(key), nil
	}

	key, err := keyring.Get(keyringService, keyringUser)
	if err == nil && key != "" {
		return strings.TrimSpace(key), nil
	}

	credPath, err := credentialsPath()
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(credPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read credentials file: %w", err)
	}

	return strings.TrimSpace(string(data)), nil
}

// SaveAPIKey stores the API key.
// Tries system keyring first, falls back to credentials file.
func SaveAPIKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("api key cannot be empty")
	}

	if err := keyring.Set(keyringService, keyringUser, key); err == nil {
		return nil
	}

	credPath, err := credentialsPath()
	if err != nil {
		return err
	}

	if err := os.WriteFile(credPath, []byte(key), 0600); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}

	return nil
}

// ClearAPIKey removes the stored API key from all locations.
func ClearAPIKey() error {
	// Missing keyring entries are fine.
	_ = keyring.Delete(keyringService, keyringUser)

	credPath, err := credentialsPath()
	if err != nil {
		return err
	}

	if err := os.Remove(credPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove credentials file: %w", err)
	}

	return nil
}

// HasAPIKey returns true if a key is available from any stored source.
func HasAPIKey() bool {
	key, _ := GetAPIKey()
	return key != ""
}

func credentialsPath() (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, credFileName), nil
}
