package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeManifest(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadManifest(t *testing.T) {
	path := writeManifest(t, `# demo
name = "demo"
entry = "main.retro"
image = "/opt/retro.image"
tests = "true"
steps = "5000"
`)
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatal(err)
	}
	if m.Name != "demo" || !m.Tests || m.Steps != 5000 {
		t.Fatalf("manifest %+v", m)
	}
	if m.EntryPath() != filepath.Join(filepath.Dir(path), "main.retro") {
		t.Fatalf("entry path %q", m.EntryPath())
	}
	if m.ImagePath() != "/opt/retro.image" {
		t.Fatalf("image path %q", m.ImagePath())
	}
}

func TestLoadManifestErrors(t *testing.T) {
	cases := map[string]string{
		"entry = main.retro\n":                   "quoted string",
		"entry\n":                                "invalid line",
		"entry = \"a\"\nsteps = \"-1\"\n":        "steps",
		"entry = \"a\"\ntests = \"maybe\"\n":     "tests",
		"name = \"x\"\n":                         "missing entry",
	}
	for body, want := range cases {
		_, err := LoadManifest(writeManifest(t, body))
		if err == nil || !strings.Contains(err.Error(), want) {
			t.Fatalf("%q: expected error containing %q, got %v", body, want, err)
		}
	}
}

func TestNoImage(t *testing.T) {
	m, err := LoadManifest(writeManifest(t, "entry = \"x.retro\"\n"))
	if err != nil {
		t.Fatal(err)
	}
	if m.ImagePath() != "" || m.Steps != 0 || m.Tests {
		t.Fatalf("defaults %+v", m)
	}
}
