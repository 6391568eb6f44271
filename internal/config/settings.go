package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/sherwynjoel/hybridllm/internal/util"
)

// Settings is state the CLI keeps between invocations.
type Settings struct {
	PrivacyFirstMode bool `toml:"privacy_first_mode"`
}

// DefaultSettingsPath is where Settings are persisted.
func DefaultSettingsPath() string {
	return util.ExpandHome(filepath.Join(DefaultDir, "settings.toml"))
}

// LoadSettings reads path. found is false when the file does not exist, in
// which case the zero Settings is returned.
func LoadSettings(path string) (s Settings, found bool, err error) {
	_, err = toml.DecodeFile(path, &s)
	if errors.Is(err, fs.ErrNotExist) {
		return Settings{}, false, nil
	}
	if err != nil {
		return Settings{}, false, fmt.Errorf("reading settings %s: %w", path, err)
	}
	return s, true, nil
}

// SaveSettings writes s to path, creating parent directories.
func SaveSettings(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating settings dir: %w", err)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(s); err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	if err := util.WriteFileAtomic(path, buf.Bytes()); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	return nil
}

// PrivacyMode returns the persisted privacy flag, or fallback when no
// settings have been saved.
func PrivacyMode(path string, fallback bool) (bool, error) {
	s, found, err := LoadSettings(path)
	if err != nil {
		return fallback, err
	}
	if !found {
		return fallback, nil
	}
	return s.PrivacyFirstMode, nil
}
