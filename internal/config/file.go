package config

import (
	"context"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// keysFile is the on-disk shape read by FileSource:
//
//	keys:
//	  recaptcha_public_key: ...
//	  recaptcha_private_key: ...
type keysFile struct {
	Keys map[string]string `yaml:"keys"`
}

// FileSource serves keys from a YAML file. Reload re-reads the file; readers
// see either the old or the new key set, never a mix.
type FileSource struct {
	path string

	mu   sync.RWMutex
	keys map[string]string
}

// OpenFileSource loads path. A missing file yields an empty source so that
// keys can be added later and picked up by Reload.
func OpenFileSource(path string) (*FileSource, error) {
	fs := &FileSource{path: path}
	if err := fs.Reload(); err != nil {
		return nil, err
	}
	return fs, nil
}

// Path returns the watched file path.
func (f *FileSource) Path() string {
	return f.path
}

// Reload re-reads the file. On error the previous keys stay in place.
func (f *FileSource) Reload() error {
	keys, err := readKeys(f.path)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.keys = keys
	f.mu.Unlock()
	return nil
}

func (f *FileSource) Value(_ context.Context, key string) (string, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.keys[key]
	return v, ok, nil
}

func readKeys(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read keys file: %w", err)
	}

	var kf keysFile
	if err := yaml.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("failed to parse keys file: %w", err)
	}
	if kf.Keys == nil {
		kf.Keys = map[string]string{}
	}
	return kf.Keys, nil
}
