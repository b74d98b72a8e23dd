package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Keys maps a key alias (e.g. "openai") to its secret
type Keys map[string]string

// GetKeysPath returns the path to the key store
func GetKeysPath() (string, error) {
	return pathInConfigDir(KeysFileName)
}

// LoadKeys reads the key store. A missing file yields an empty store.
func LoadKeys() (Keys, error) {
	keysPath, err := GetKeysPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(keysPath)
	if errors.Is(err, fs.ErrNotExist) {
		return Keys{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read keys file: %w", err)
	}

	keys := Keys{}
	if err := yaml.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("failed to parse keys file: %w", err)
	}
	return keys, nil
}

// SetKey stores a key under alias, keeping the other entries
func SetKey(alias, secret string) error {
	if alias == "" {
		return fmt.Errorf("key alias is required")
	}

	keys, err := LoadKeys()
	if err != nil {
		return err
	}
	keys[alias] = secret

	keysPath, err := GetKeysPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(keysPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(keys)
	if err != nil {
		return fmt.Errorf("failed to marshal keys: %w", err)
	}
	if err := os.WriteFile(keysPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write keys file: %w", err)
	}
	return nil
}

// Aliases returns the stored aliases in sorted order
func (k Keys) Aliases() []string {
	aliases := make([]string, 0, len(k))
	for alias := range k {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	return aliases
}
