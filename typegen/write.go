package typegen

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/teranos/stubgen/errors"
)

// PyTypedMarker is the PEP 561 marker file written at the output root
const PyTypedMarker = "py.typed"

// WriteOptions configures Write and Compare
type WriteOptions struct {
	// PyTyped writes (or expects) an empty py.typed marker at the output root
	PyTyped bool

	DirPerm  os.FileMode
	FilePerm os.FileMode
}

func (o WriteOptions) perms() (os.FileMode, os.FileMode) {
	dir, file := o.DirPerm, o.FilePerm
	if dir == 0 {
		dir = 0755
	}
	if file == 0 {
		file = 0644
	}
	return dir, file
}

// Write stores every file of a successful run under dir. Files whose content
// is unchanged are left untouched. Returns the paths actually written,
// relative to dir.
func Write(result *Result, dir string, opts WriteOptions) ([]string, error) {
	dirPerm, filePerm := opts.perms()
	var written []string

	for _, f := range result.Files {
		path := filepath.Join(dir, filepath.FromSlash(f.Path))
		changed, err := writeIfChanged(path, []byte(f.Content), dirPerm, filePerm)
		if err != nil {
			return written, err
		}
		if changed {
			written = append(written, f.Path)
		}
	}

	if opts.PyTyped {
		path := filepath.Join(dir, PyTypedMarker)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if _, err := writeIfChanged(path, nil, dirPerm, filePerm); err != nil {
				return written, err
			}
			written = append(written, PyTypedMarker)
		}
	}
	return written, nil
}

func writeIfChanged(path string, content []byte, dirPerm, filePerm os.FileMode) (bool, error) {
	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, content) {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return false, errors.Wrapf(err, "failed to create directory for %s", path)
	}
	if err := os.WriteFile(path, content, filePerm); err != nil {
		return false, errors.Wrapf(err, "failed to write %s", path)
	}
	return true, nil
}
