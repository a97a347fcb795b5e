package plugin

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	goplugin "plugin"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ItayH27/tanks-game-simulation/pkg/battle"
	"github.com/ItayH27/tanks-game-simulation/pkg/tbp"
)

// ErrUnsupportedModule is returned for paths no opener understands.
var ErrUnsupportedModule = errors.New("plugin: unsupported module")

// RegisterFunc is what a module does at load time.
type RegisterFunc func(b *Builder) error

type funcModule struct {
	name string
	fn   RegisterFunc
}

func (m *funcModule) Name() string              { return m.name }
func (m *funcModule) Register(b *Builder) error { return m.fn(b) }
func (m *funcModule) Close() error              { return nil }

// Catalog holds compiled-in modules, addressed as "builtin:<name>".
type Catalog map[string]RegisterFunc

// Open implements Opener.
func (c Catalog) Open(_ context.Context, path string) (Module, error) {
	name := strings.TrimPrefix(path, BuiltinPrefix)
	fn, ok := c[name]
	if !ok {
		return nil, fmt.Errorf("%w: no builtin module %q", os.ErrNotExist, name)
	}
	return &funcModule{name: name, fn: fn}, nil
}

// Names lists the catalog's modules in sorted order.
func (c Catalog) Names() []string {
	out := make([]string, 0, len(c))
	for name := range c {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ExecOpener treats an executable as an out-of-process tank algorithm
// speaking the tbp protocol. The process lives until the module unloads.
type ExecOpener struct {
	Args []string
}

// Open implements Opener.
func (o ExecOpener) Open(ctx context.Context, path string) (Module, error) {
	eng := tbp.NewEngine(path, o.Args...)
	if err := eng.Init(ctx); err != nil {
		return nil, err
	}
	return &execModule{name: DisplayName(path), engine: eng}, nil
}

type execModule struct {
	name   string
	engine *tbp.Engine
}

func (m *execModule) Name() string { return m.name }

func (m *execModule) Register(b *Builder) error {
	b.Player(tbp.NewPlayer)
	b.TankAlgorithm(func(player, tank int) battle.TankAlgorithm {
		return m.engine.NewSession(player, tank)
	})
	return nil
}

func (m *execModule) Close() error { return m.engine.Close() }

// GoPluginOpener loads shared objects built with -buildmode=plugin. The
// object must export
//
//	func Register(b *plugin.Builder) error
//
// Go cannot unload shared objects, so Close only forgets the module.
type GoPluginOpener struct{}

// Open implements Opener.
func (GoPluginOpener) Open(_ context.Context, path string) (Module, error) {
	p, err := goplugin.Open(path)
	if err != nil {
		return nil, err
	}
	sym, err := p.Lookup("Register")
	if err != nil {
		return nil, err
	}
	fn, ok := sym.(func(*Builder) error)
	if !ok {
		return nil, fmt.Errorf("%w: %s exports Register with type %T", ErrUnsupportedModule, path, sym)
	}
	return &funcModule{name: DisplayName(path), fn: fn}, nil
}

// Manifest describes a module in a YAML file.
type Manifest struct {
	Name   string   `yaml:"name"`
	Kind   string   `yaml:"kind"`
	Target string   `yaml:"target"`
	Args   []string `yaml:"args"`
}

// ManifestOpener resolves *.yaml manifests to builtin or exec modules.
type ManifestOpener struct {
	Catalog Catalog
}

// Open implements Opener.
func (o ManifestOpener) Open(ctx context.Context, path string) (Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if m.Target == "" {
		return nil, fmt.Errorf("%w: manifest %s has no target", ErrUnsupportedModule, path)
	}
	name := m.Name
	if name == "" {
		name = DisplayName(path)
	}

	var mod Module
	switch m.Kind {
	case "builtin", "":
		mod, err = o.Catalog.Open(ctx, BuiltinPrefix+m.Target)
	case "exec":
		target := m.Target
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(path), target)
		}
		mod, err = ExecOpener{Args: m.Args}.Open(ctx, target)
	default:
		return nil, fmt.Errorf("%w: manifest kind %q", ErrUnsupportedModule, m.Kind)
	}
	if err != nil {
		return nil, err
	}
	return &renamed{Module: mod, name: name}, nil
}

type renamed struct {
	Module
	name string
}

func (r *renamed) Name() string { return r.name }

// Dispatch picks an opener by path: the builtin prefix, then the file
// extension, then the executable bit.
type Dispatch struct {
	Catalog  Catalog
	Exec     ExecOpener
	GoPlugin GoPluginOpener
}

// Open implements Opener.
func (d Dispatch) Open(ctx context.Context, path string) (Module, error) {
	if strings.HasPrefix(path, BuiltinPrefix) {
		return d.Catalog.Open(ctx, path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ManifestOpener{Catalog: d.Catalog}.Open(ctx, path)
	case ".so":
		return d.GoPlugin.Open(ctx, path)
	}
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if fi.Mode().IsRegular() && fi.Mode().Perm()&0o111 != 0 {
		return d.Exec.Open(ctx, path)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedModule, path)
}

// Discover lists candidate module files in dir, sorted by name: plugins,
// manifests and executables. Subdirectories and other files are skipped.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read module folder: %w", err)
	}
	var out []string
	for _, de := range entries {
		if de.IsDir() || strings.HasPrefix(de.Name(), ".") {
			continue
		}
		path := filepath.Join(dir, de.Name())
		switch strings.ToLower(filepath.Ext(de.Name())) {
		case ".so", ".yaml", ".yml":
			out = append(out, path)
			continue
		}
		fi, err := de.Info()
		if err != nil {
			continue
		}
		if fi.Mode().IsRegular() && fi.Mode().Perm()&0o111 != 0 {
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out, nil
}
