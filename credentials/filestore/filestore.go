package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/jrsteele09/go-store-admin/credentials"
)

// DefaultFilename is used when the store is created from a data folder
const DefaultFilename = "credentials.json"

var _ credentials.Store = (*Store)(nil)

// Store persists tokens as a JSON object in a single file readable only by the owner.
// Every write replaces the file through a rename so readers never see a partial document.
type Store struct {
	path string
	lock sync.Mutex
}

// New returns a store backed by path. The file is created on first write.
func New(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("[filestore New] path is required")
	}
	return &Store{path: path}, nil
}

// NewInFolder returns a store for DefaultFilename inside folder
func NewInFolder(folder string) (*Store, error) {
	return New(filepath.Join(folder, DefaultFilename))
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	values, err := s.read()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	values, err := s.read()
	if err != nil {
		return err
	}
	values[key] = value
	return s.write(values)
}

func (s *Store) Remove(_ context.Context, key string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	values, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return s.write(values)
}

func (s *Store) read() (map[string]string, error) {
	values := make(map[string]string)
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, fmt.Errorf("[filestore read] %w", err)
	}
	if len(data) == 0 {
		return values, nil
	}
	if err := sonic.ConfigStd.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("[filestore read] corrupt credentials file %s: %w", s.path, err)
	}
	return values, nil
}

func (s *Store) write(values map[string]string) error {
	data, err := sonic.ConfigStd.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("[filestore write] %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("[filestore write] %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".credentials-*")
	if err != nil {
		return fmt.Errorf("[filestore write] %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("[filestore write] %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("[filestore write] %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("[filestore write] %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("[filestore write] %w", err)
	}
	return nil
}
