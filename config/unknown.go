package config

import (
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/teranos/stubgen/errors"
)

// UnknownKeys returns the keys of the TOML file at path that do not map to
// any Config field, sorted. A misspelled key is otherwise silently ignored.
func UnknownKeys(path string) ([]string, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}

	var keys []string
	for _, k := range md.Undecoded() {
		keys = append(keys, k.String())
	}
	sort.Strings(keys)
	return keys, nil
}
