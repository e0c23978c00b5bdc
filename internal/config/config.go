package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// FileName is the manifest looked up by "retro run".
const FileName = "retro.toml"

type Manifest struct {
	Name  string
	Entry string // source file to include
	Image string // image to load instead of the built-in kernel
	Tests bool   // evaluate ``` blocks as well
	Steps int64  // word budget, 0 for unlimited

	// Dir is the directory holding the manifest. Entry and Image are
	// relative to it.
	Dir string
}

func LoadManifest(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m := &Manifest{Dir: filepath.Dir(path)}
	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}

		key, val, ok := strings.Cut(s, "=")
		if !ok {
			return nil, fmt.Errorf("%s:%d: invalid line", path, lineNo)
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)

		if len(val) < 2 || val[0] != '"' || val[len(val)-1] != '"' {
			return nil, fmt.Errorf("%s:%d: value must be a quoted string", path, lineNo)
		}
		val = val[1 : len(val)-1]

		switch key {
		case "name":
			m.Name = val
		case "entry":
			m.Entry = val
		case "image":
			m.Image = val
		case "tests":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: tests: %w", path, lineNo, err)
			}
			m.Tests = b
		case "steps":
			n, err := strconv.ParseInt(val, 10, 64)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("%s:%d: steps must be a non-negative integer", path, lineNo)
			}
			m.Steps = n
		default:
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if m.Entry == "" {
		return nil, fmt.Errorf("%s: missing entry", path)
	}
	return m, nil
}

// EntryPath returns the entry file resolved against the manifest directory.
func (m *Manifest) EntryPath() string { return m.resolve(m.Entry) }

// ImagePath returns the image resolved against the manifest directory, or
// "" when none is set.
func (m *Manifest) ImagePath() string {
	if m.Image == "" {
		return ""
	}
	return m.resolve(m.Image)
}

func (m *Manifest) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Dir, p)
}
