package main

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/ItayH27/tanks-game-simulation/internal/plugin"
)

const argThreads = "num_threads"

// parseArgs reads key=value arguments. Every problem is reported, not just
// the first.
func parseArgs(args, required, optional []string) (map[string]string, error) {
	out := make(map[string]string, len(args))
	var errs []error
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		switch {
		case !ok || key == "" || value == "":
			errs = append(errs, fmt.Errorf("argument %q is not key=value", arg))
		case !slices.Contains(required, key) && !slices.Contains(optional, key):
			errs = append(errs, fmt.Errorf("unsupported argument %q", key))
		case out[key] != "":
			errs = append(errs, fmt.Errorf("duplicate argument %q", key))
		default:
			out[key] = value
		}
	}
	for _, key := range required {
		if _, ok := out[key]; !ok {
			errs = append(errs, fmt.Errorf("missing required argument %q", key))
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

// threads returns num_threads, or fallback when it was not given.
func threads(args map[string]string, fallback int) (int, error) {
	v, ok := args[argThreads]
	if !ok {
		return max(fallback, 1), nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", argThreads, v)
	}
	return n, nil
}

// checkFile reports a problem unless path is a readable regular file or a
// builtin module reference.
func checkFile(key, path string) error {
	if strings.HasPrefix(path, plugin.BuiltinPrefix) {
		return nil
	}
	fi, err := os.Stat(path)
	switch {
	case err != nil:
		return fmt.Errorf("%s: %w", key, err)
	case fi.IsDir():
		return fmt.Errorf("%s: %s is a directory", key, path)
	}
	return nil
}

func checkDir(key, path string) error {
	fi, err := os.Stat(path)
	switch {
	case err != nil:
		return fmt.Errorf("%s: %w", key, err)
	case !fi.IsDir():
		return fmt.Errorf("%s: %s is not a directory", key, path)
	}
	return nil
}
