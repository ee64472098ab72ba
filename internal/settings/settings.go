// Package settings provides the key-value settings repository the engine
// receives as an injected dependency. Profile registration, goals, and
// colors are persisted here; the log files themselves are not.
package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Repo is the settings store contract. Writes become durable on Sync.
type Repo interface {
	GetString(key, fallback string) string
	GetInt(key string, fallback int) int
	GetStrings(key string) []string
	Has(key string) bool
	Set(key string, value any)
	Remove(key string)
	Sync() error
}

// keyDelimiter keeps viper from splitting keys on ".": profile labels may
// contain dots, and our keys use "/" segments verbatim.
const keyDelimiter = "::"

// ViperRepo is a viper-backed Repo persisted as a single YAML file.
type ViperRepo struct {
	v    *viper.Viper
	path string
}

// NewViperRepo loads (or lazily creates) the settings file at path.
func NewViperRepo(path string) (*ViperRepo, error) {
	v := viper.NewWithOptions(viper.KeyDelimiter(keyDelimiter))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("reading settings %s: %w", path, err)
			}
		}
	}
	return &ViperRepo{v: v, path: path}, nil
}

// GetString returns the string value for key, or fallback when unset.
func (r *ViperRepo) GetString(key, fallback string) string {
	if !r.v.IsSet(key) {
		return fallback
	}
	return r.v.GetString(key)
}

// GetInt returns the int value for key, or fallback when unset.
func (r *ViperRepo) GetInt(key string, fallback int) int {
	if !r.v.IsSet(key) {
		return fallback
	}
	return r.v.GetInt(key)
}

// GetStrings returns the string-slice value for key, or nil when unset.
func (r *ViperRepo) GetStrings(key string) []string {
	if !r.v.IsSet(key) {
		return nil
	}
	return r.v.GetStringSlice(key)
}

// Has reports whether key is set.
func (r *ViperRepo) Has(key string) bool {
	return r.v.IsSet(key)
}

// Set stores value under key in memory; call Sync to persist.
func (r *ViperRepo) Set(key string, value any) {
	r.v.Set(key, value)
}

// Remove deletes key. Viper has no unset operation, so the store is rebuilt
// without the key.
func (r *ViperRepo) Remove(key string) {
	if !r.v.IsSet(key) {
		return
	}
	all := r.v.AllSettings()
	delete(all, key)
	fresh := viper.NewWithOptions(viper.KeyDelimiter(keyDelimiter))
	fresh.SetConfigFile(r.path)
	fresh.SetConfigType("yaml")
	for k, val := range all {
		fresh.Set(k, val)
	}
	r.v = fresh
}

// Sync writes the current settings to disk.
func (r *ViperRepo) Sync() error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}
	if err := r.v.WriteConfigAs(r.path); err != nil {
		return fmt.Errorf("writing settings %s: %w", r.path, err)
	}
	return nil
}

// MemoryRepo is an in-memory Repo for tests and throwaway hosts.
type MemoryRepo struct {
	values map[string]any
}

// NewMemoryRepo returns an empty in-memory repository.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{values: make(map[string]any)}
}

func (r *MemoryRepo) GetString(key, fallback string) string {
	if v, ok := r.values[key].(string); ok {
		return v
	}
	return fallback
}

func (r *MemoryRepo) GetInt(key string, fallback int) int {
	if v, ok := r.values[key].(int); ok {
		return v
	}
	return fallback
}

func (r *MemoryRepo) GetStrings(key string) []string {
	if v, ok := r.values[key].([]string); ok {
		return v
	}
	return nil
}

func (r *MemoryRepo) Has(key string) bool {
	_, ok := r.values[key]
	return ok
}

func (r *MemoryRepo) Set(key string, value any) {
	r.values[key] = value
}

func (r *MemoryRepo) Remove(key string) {
	delete(r.values, key)
}

func (r *MemoryRepo) Sync() error { return nil }
