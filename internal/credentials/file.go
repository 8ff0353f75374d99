package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileSource loads credentials from a per-user JSON file.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Path returns the backing file location.
func (s *FileSource) Path() string { return s.path }

// Load reads and parses the credentials file. A missing file maps to
// ErrNotConfigured; any other read or parse failure surfaces as-is.
func (s *FileSource) Load(_ context.Context) (*Credentials, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s does not exist", ErrNotConfigured, s.path)
		}
		return nil, fmt.Errorf("read credentials %s: %w", s.path, err)
	}

	var creds Credentials
	if err := json.Unmarshal(raw, &creds); err != nil {
		return nil, fmt.Errorf("parse credentials %s: %w", s.path, err)
	}
	if err := creds.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	return &creds, nil
}

// Init scaffolds the credentials file with placeholder values, creating parent
// directories as needed. It refuses to overwrite an existing file and reports
// whether the template was created.
func (s *FileSource) Init() (bool, error) {
	if _, err := os.Stat(s.path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat %s: %w", s.path, err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return false, fmt.Errorf("create credentials directory: %w", err)
	}

	template := Credentials{
		Key:        "YOUR_API_KEY",
		Secret:     "YOUR_API_SECRET",
		Passphrase: "YOUR_API_PASSPHRASE",
		APIURI:     "https://api.exchange.coinbase.com",
	}
	raw, err := json.MarshalIndent(template, "", "  ")
	if err != nil {
		return false, err
	}

	// 0600: credential material is owner-only
	if err := os.WriteFile(s.path, append(raw, '\n'), 0o600); err != nil {
		return false, fmt.Errorf("write credentials template: %w", err)
	}
	return true, nil
}
