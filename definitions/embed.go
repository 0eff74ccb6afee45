package definitions

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

//go:embed scripts/*.tengo
var ScriptsFS embed.FS

// LoadScript reads a parameter-automation script by name.
func LoadScript(name string) ([]byte, error) {
	clean := cleanScriptPath(name)
	if data, err := os.ReadFile(filepath.Join("definitions", filepath.FromSlash(clean))); err == nil {
		return data, nil
	}
	return ScriptsFS.ReadFile(clean)
}

//go:embed *.yaml
var DefinitionsFS embed.FS

// Load reads a baked definition file, preferring the working-tree copy over
// the embedded one so edits take effect without rebuilding.
func Load(name string) ([]byte, error) {
	clean := cleanDefinitionPath(name)
	if data, err := os.ReadFile(diskDefinitionPath(clean)); err == nil {
		return data, nil
	}
	return DefinitionsFS.ReadFile(clean)
}

// ModTime reports the on-disk modification time, if a disk copy exists.
func ModTime(name string) (time.Time, bool) {
	clean := cleanDefinitionPath(name)
	info, err := os.Stat(diskDefinitionPath(clean))
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// List returns the names of every embedded definition file.
func List() []string {
	entries, err := DefinitionsFS.ReadDir(".")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".yaml") {
			names = append(names, e.Name())
		}
	}
	return names
}

func cleanDefinitionPath(path string) string {
	if path == "" {
		return ""
	}
	s := filepath.ToSlash(path)
	return strings.TrimPrefix(s, "definitions/")
}

func cleanScriptPath(path string) string {
	if path == "" {
		return ""
	}
	s := filepath.ToSlash(path)
	if after, ok := strings.CutPrefix(s, "definitions/scripts/"); ok {
		s = after
	}
	if after, ok := strings.CutPrefix(s, "definitions/"); ok {
		s = after
	}
	if after, ok := strings.CutPrefix(s, "scripts/"); ok {
		s = after
	}
	return fmt.Sprintf("scripts/%s", s)
}

func diskDefinitionPath(clean string) string {
	return filepath.Join("definitions", filepath.FromSlash(clean))
}
