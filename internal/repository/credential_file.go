package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const credentialsFileName = "credentials.yaml"

// FileCredentialRepo stores credentials in a small YAML map on disk, keyed by
// a fixed name. Other keys already present in the file are preserved.
type FileCredentialRepo struct {
	mu   sync.Mutex
	path string
	key  string
}

func NewFileCredentialRepo(path, key string) *FileCredentialRepo {
	return &FileCredentialRepo{path: path, key: key}
}

// DefaultCredentialsPath returns <user config dir>/fi-advisor/credentials.yaml.
func DefaultCredentialsPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config dir: %w", err)
	}
	return filepath.Join(dir, "fi-advisor", credentialsFileName), nil
}

func (r *FileCredentialRepo) Path() string {
	return r.path
}

func (r *FileCredentialRepo) Load(_ context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	values, err := r.read()
	if err != nil {
		return "", err
	}
	return values[r.key], nil
}

func (r *FileCredentialRepo) Save(_ context.Context, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return ErrEmptyCredential
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	values, err := r.read()
	if err != nil {
		return err
	}
	values[r.key] = value

	data, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return fmt.Errorf("creating credentials dir: %w", err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("replacing credentials: %w", err)
	}
	return nil
}

func (r *FileCredentialRepo) read() (map[string]string, error) {
	values := map[string]string{}

	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading credentials: %w", err)
	}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}
	if values == nil {
		values = map[string]string{}
	}
	return values, nil
}
