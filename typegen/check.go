package typegen

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/teranos/stubgen/errors"
)

// CheckResult holds the result of a drift check
type CheckResult struct {
	UpToDate    bool
	Differences []Difference
}

// Difference is one generated file that does not match the file on disk
type Difference struct {
	Path    string
	Missing bool

	// Diff is a unified diff from the file on disk to the generated content
	Diff string
}

// Compare checks the files of result against dir. Line endings are
// normalized before comparing so CRLF checkouts do not report drift.
func Compare(result *Result, dir string, opts WriteOptions) (*CheckResult, error) {
	var diffs []Difference

	for _, f := range result.Files {
		existingPath := filepath.Join(dir, filepath.FromSlash(f.Path))
		existing, err := os.ReadFile(existingPath)
		if os.IsNotExist(err) {
			diffs = append(diffs, Difference{Path: f.Path, Missing: true})
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", existingPath)
		}

		have := normalizeLines(existing)
		want := normalizeLines([]byte(f.Content))
		if have == want {
			continue
		}

		diff, err := unifiedDiff(have, want, f.Path)
		if err != nil {
			return nil, err
		}
		diffs = append(diffs, Difference{Path: f.Path, Diff: diff})
	}

	if opts.PyTyped {
		marker := filepath.Join(dir, PyTypedMarker)
		if _, err := os.Stat(marker); os.IsNotExist(err) {
			diffs = append(diffs, Difference{Path: PyTypedMarker, Missing: true})
		}
	}

	return &CheckResult{
		UpToDate:    len(diffs) == 0,
		Differences: diffs,
	}, nil
}

// unifiedDiff renders the change from the file on disk to the generated file
func unifiedDiff(have, want, path string) (string, error) {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(have),
		B:        difflib.SplitLines(want),
		FromFile: path + " (on disk)",
		ToFile:   path + " (generated)",
		Context:  3,
	})
	if err != nil {
		return "", errors.Wrapf(err, "failed to diff %s", path)
	}
	return diff, nil
}

// normalizeLines strips carriage returns and guarantees a final newline.
// Returns empty string if the scanner encounters an error.
func normalizeLines(content []byte) string {
	var result strings.Builder
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		result.WriteString(strings.TrimSuffix(scanner.Text(), "\r"))
		result.WriteString("\n")
	}

	// unreadable content never matches
	if err := scanner.Err(); err != nil {
		return ""
	}
	return result.String()
}
