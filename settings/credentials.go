// Package settings stores provider credentials in the XDG data
// directory:
//
//	$XDG_DATA_HOME/potool/auth.json  (default: ~/.local/share/potool/auth.json)
//
// File permissions are 0600 (owner read/write only).
//
// Lookup order for credentials:
//  1. --app-id / --app-key flags (highest priority)
//  2. POTOOL_APP_ID / POTOOL_APP_KEY environment variables
//  3. This credential store
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	dataDirName = "potool"
	fileName    = "auth.json"
)

// Credentials is the stored provider identity.
type Credentials struct {
	AppID  string `json:"app_id"`
	AppKey string `json:"app_key"`
}

// FilePath returns the credential store location.
func FilePath() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, dataDirName, fileName), nil
}

// Load reads stored credentials. A missing store returns empty
// credentials and no error.
func Load() (Credentials, error) {
	var creds Credentials

	path, err := FilePath()
	if err != nil {
		return creds, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return creds, nil
		}
		return creds, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &creds); err != nil {
		return creds, fmt.Errorf("parsing %s: %w", path, err)
	}
	return creds, nil
}

// Save writes credentials to the store, creating the directory with
// restrictive permissions.
func Save(creds Credentials) error {
	path, err := FilePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
