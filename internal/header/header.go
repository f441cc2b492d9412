// Package header reads and rewrites the firmware version defines in a C
// header file. The file is expected to carry each of the four defines on its
// own line, in the form produced by the firmware build:
//
//	#define FW_MAJOR_VERSION (1)
//	#define FW_MINOR_VERSION (2)
//	#define FW_VERSION_VERSION (26237)
//	#define FW_REVISION_VERSION (0)
//
// Leading whitespace on each define line is preserved; unrelated lines pass
// through untouched. Rewrites go through a temp file in the same directory
// followed by a rename.
package header

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/oakmont-embedded/gh-fwbump/internal/fwver"
)

// Define names recognized in the header.
const (
	DefineMajor    = "FW_MAJOR_VERSION"
	DefineMinor    = "FW_MINOR_VERSION"
	DefineDatecode = "FW_VERSION_VERSION"
	DefineRevision = "FW_REVISION_VERSION"
)

// defineRe captures leading whitespace, the define name, and its value.
var defineRe = regexp.MustCompile(`^(\s*)#define\s+(FW_(?:MAJOR|MINOR|VERSION|REVISION)_VERSION)\s*\((\d+)\)\s*$`)

// Read extracts the current version from the header at path.
// Every define must be present exactly once.
func Read(path string) (fwver.Version, error) {
	f, err := os.Open(path)
	if err != nil {
		return fwver.Version{}, fmt.Errorf("failed to open header: %w", err)
	}
	defer f.Close()

	var v fwver.Version
	seen := make(map[string]bool, 4)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		m := defineRe.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		name, value := m[2], m[3]
		if seen[name] {
			return fwver.Version{}, fmt.Errorf("duplicate define %s in %s", name, path)
		}
		seen[name] = true

		n, err := strconv.Atoi(value)
		if err != nil {
			return fwver.Version{}, fmt.Errorf("invalid value for %s: %w", name, err)
		}
		switch name {
		case DefineMajor:
			v.Major = n
		case DefineMinor:
			v.Minor = n
		case DefineDatecode:
			v.Datecode = n
		case DefineRevision:
			v.Revision = n
		}
	}
	if err := scanner.Err(); err != nil {
		return fwver.Version{}, fmt.Errorf("failed to read header: %w", err)
	}

	for _, name := range []string{DefineMajor, DefineMinor, DefineDatecode, DefineRevision} {
		if !seen[name] {
			return fwver.Version{}, fmt.Errorf("missing define %s in %s", name, path)
		}
	}
	return v, nil
}

// Write rewrites the version defines in the header at path to v, leaving all
// other lines byte-for-byte intact. The original file is replaced atomically.
func Write(path string, v fwver.Version) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	values := map[string]int{
		DefineMajor:    v.Major,
		DefineMinor:    v.Minor,
		DefineDatecode: v.Datecode,
		DefineRevision: v.Revision,
	}

	// Split keeping track of whether the file ends with a newline so the
	// rewrite does not append one that was never there.
	text := string(data)
	trailingNewline := strings.HasSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	if trailingNewline {
		lines = lines[:len(lines)-1]
	}

	replaced := make(map[string]bool, 4)
	for i, line := range lines {
		m := defineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		indent, name := m[1], m[2]
		lines[i] = fmt.Sprintf("%s#define %s (%d)", indent, name, values[name])
		replaced[name] = true
	}
	for _, name := range []string{DefineMajor, DefineMinor, DefineDatecode, DefineRevision} {
		if !replaced[name] {
			return fmt.Errorf("missing define %s in %s", name, path)
		}
	}

	out := strings.Join(lines, "\n")
	if trailingNewline {
		out += "\n"
	}

	return replaceFile(path, []byte(out))
}

// Bump reads the header, computes the successor via cur.Bump, writes it back
// and returns the new version.
func Bump(path string, bump func(cur fwver.Version) fwver.Version) (fwver.Version, error) {
	cur, err := Read(path)
	if err != nil {
		return fwver.Version{}, err
	}
	next := bump(cur)
	if err := Write(path, next); err != nil {
		return fwver.Version{}, err
	}
	return next, nil
}

// replaceFile writes data to a temp file next to path and renames it over
// path, keeping the original permissions.
func replaceFile(path string, data []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat header: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, info.Mode()); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace header: %w", err)
	}
	return nil
}
