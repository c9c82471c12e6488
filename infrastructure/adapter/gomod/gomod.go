package gomod

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	logger "github.com/sirupsen/logrus"
	"golang.org/x/mod/modfile"

	"github.com/monover/monover/domain"
)

const adapterName = "gomod"

// Adapter implements domain.Adapter for Go multi-module repositories. Each
// go.mod in the tree is a module; dependency edges come from require
// directives naming sibling modules. Go modules carry no declared version
// in their build files — releases are tags — so DetectModules reports
// tag-derived placeholder versions and WriteVersions is a no-op.
type Adapter struct{}

// New creates a new Go modules adapter.
func New() domain.Adapter {
	return &Adapter{}
}

func (a *Adapter) Name() string { return adapterName }

// SupportsSnapshots is false: the Go ecosystem has pseudo-versions instead
// of a snapshot convention.
func (a *Adapter) SupportsSnapshots() bool { return false }

// Detect returns true if the directory contains a go.mod file.
func (a *Adapter) Detect(_ context.Context, dir string) bool {
	_, err := os.Stat(filepath.Join(dir, "go.mod"))
	return err == nil
}

// IdentifyProject returns the last element of the root module path.
func (a *Adapter) IdentifyProject(_ context.Context, dir string) (string, error) {
	file, err := parseModFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return "", err
	}
	path := file.Module.Mod.Path
	return path[strings.LastIndex(path, "/")+1:], nil
}

// DetectModules walks the tree for go.mod files and builds the dependents
// graph from require directives between the discovered modules.
func (a *Adapter) DetectModules(_ context.Context, dir string) ([]domain.Module, error) {
	modFiles, err := findModFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(modFiles) == 0 {
		return nil, fmt.Errorf("no go.mod files found in %q", dir)
	}

	modules := make([]domain.Module, 0, len(modFiles))
	parsed := make([]*modfile.File, 0, len(modFiles))

	for _, modPath := range modFiles {
		file, parseErr := parseModFile(modPath)
		if parseErr != nil {
			return nil, parseErr
		}

		id := file.Module.Mod.Path
		kind := domain.ModuleKindSubmodule
		if filepath.Dir(modPath) == filepath.Clean(dir) {
			kind = domain.ModuleKindRoot
		}

		modules = append(modules, domain.Module{
			ID:   id,
			Name: id[strings.LastIndex(id, "/")+1:],
			Path: filepath.Dir(modPath),
			Kind: kind,
			// Tag-derived: the service substitutes the version parsed from
			// the module's latest release tag.
			Version:         semver.MustParse("0.0.0"),
			DeclaredVersion: false,
		})
		parsed = append(parsed, file)
	}

	wireDependents(modules, parsed)
	return modules, nil
}

// WriteVersions is a no-op: Go module releases are tags, nothing in the
// tree carries the version.
func (a *Adapter) WriteVersions(_ context.Context, _ string, changes []domain.ProcessedChange) error {
	for _, change := range changes {
		logger.Debugf("[gomod] %s: %s -> %s (tag-only release, no file write)",
			change.Module.ID, change.FromVersion, change.ToVersion)
	}
	return nil
}

// findModFiles returns every go.mod under dir, skipping vendor trees,
// hidden directories, and testdata.
func findModFiles(dir string) ([]string, error) {
	var files []string

	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != dir && (name == "vendor" || name == "testdata" ||
				strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() == "go.mod" {
			files = append(files, path)
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("failed to walk %q: %w", dir, walkErr)
	}

	return files, nil
}

func parseModFile(path string) (*modfile.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	file, parseErr := modfile.Parse(path, data, nil)
	if parseErr != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, parseErr)
	}
	if file.Module == nil {
		return nil, fmt.Errorf("%s has no module directive", path)
	}
	return file, nil
}

// wireDependents records a reverse edge for every require directive that
// names another module of the repo.
func wireDependents(modules []domain.Module, files []*modfile.File) {
	byID := make(map[string]int, len(modules))
	for i, m := range modules {
		byID[m.ID] = i
	}

	for i, file := range files {
		for _, req := range file.Require {
			idx, ok := byID[req.Mod.Path]
			if !ok || req.Mod.Path == modules[i].ID {
				continue
			}
			modules[idx].Dependents = append(modules[idx].Dependents, modules[i].ID)
		}
	}
}
