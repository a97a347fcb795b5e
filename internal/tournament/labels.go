package tournament

import (
	"path/filepath"
	"strings"

	"github.com/ItayH27/tanks-game-simulation/internal/plugin"
)

// Labels maps each module path to the name it is reported under. Distinct
// modules sharing a display name fall back to their file name, then to
// the path as given.
func Labels(paths []string) map[string]string {
	namers := []func(string) string{
		plugin.DisplayName,
		filepath.Base,
		func(p string) string { return p },
	}
	out := make(map[string]string, len(paths))
	pending := paths
	for i, name := range namers {
		owners := make(map[string]map[string]bool)
		for _, p := range pending {
			l := name(p)
			if owners[l] == nil {
				owners[l] = make(map[string]bool)
			}
			owners[l][plugin.Canonical(p)] = true
		}
		var clash []string
		for _, p := range pending {
			l := name(p)
			if len(owners[l]) > 1 && i < len(namers)-1 {
				clash = append(clash, p)
				continue
			}
			out[p] = l
		}
		pending = clash
	}
	return out
}

// label returns the report name for path.
func label(labels map[string]string, path string) string {
	if l, ok := labels[path]; ok {
		return l
	}
	return plugin.DisplayName(path)
}

// fileName is how a report header names a module: the file name for files,
// the bare name for builtins.
func fileName(path string) string {
	if strings.HasPrefix(path, plugin.BuiltinPrefix) {
		return plugin.DisplayName(path)
	}
	return filepath.Base(path)
}

var fileSafe = strings.NewReplacer("/", "_", `\`, "_", ":", "_")
