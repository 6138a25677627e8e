package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/teranos/stubgen/errors"
)

// WriteDefault writes a stubgen.toml holding the default configuration into dir.
// An existing file is left untouched unless overwrite is set, in which case it
// is first copied to stubgen.toml.back1.
func WriteDefault(dir string, overwrite bool) (string, error) {
	configPath := filepath.Join(dir, FileName)

	if _, err := os.Stat(configPath); err == nil {
		if !overwrite {
			return "", errors.WithHint(
				errors.Newf("%s already exists", configPath),
				"pass --force to replace it",
			)
		}
		if err := createBackup(configPath); err != nil {
			return "", errors.Wrap(err, "failed to create backup")
		}
	}

	data, err := toml.Marshal(Default())
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal config")
	}

	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		return "", errors.Wrapf(err, "failed to create %s", dir)
	}
	if err := os.WriteFile(configPath, data, DefaultFilePermissions); err != nil {
		return "", errors.Wrapf(err, "failed to write %s", configPath)
	}

	return configPath, nil
}

// createBackup copies the current config to .back1 before it is replaced
func createBackup(configPath string) error {
	content, err := os.ReadFile(configPath)
	if err != nil {
		return errors.Wrap(err, "failed to read config for backup")
	}

	if err := os.WriteFile(configPath+".back1", content, DefaultFilePermissions); err != nil {
		return errors.Wrap(err, "failed to create .back1")
	}

	return nil
}
