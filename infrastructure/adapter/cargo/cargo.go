package cargo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/Masterminds/semver/v3"
	logger "github.com/sirupsen/logrus"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/monover/monover/domain"
)

const adapterName = "cargo"

// versionLinePattern matches the version assignment in a [package] table.
// Cargo manifests keep version near the top of the table, so a line match
// is reliable without a lossy TOML round-trip.
var versionLinePattern = regexp.MustCompile(`(?m)^(version\s*=\s*")([^"]+)(")`)

// manifest is the subset of Cargo.toml this adapter reads.
type manifest struct {
	Workspace *struct {
		Members []string `toml:"members"`
	} `toml:"workspace"`
	Package *struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
	} `toml:"package"`
	// Dependencies values are either shorthand strings ("1.0") or tables;
	// only tables with a path key are workspace edges.
	Dependencies map[string]any `toml:"dependencies"`
}

// Adapter implements domain.Adapter for Cargo workspaces. Members come from
// the [workspace] table, declared versions from each member's [package]
// table, and dependency edges from path dependencies between members.
type Adapter struct{}

// New creates a new Cargo adapter.
func New() domain.Adapter {
	return &Adapter{}
}

func (a *Adapter) Name() string { return adapterName }

// SupportsSnapshots is false: crates.io has no snapshot convention.
func (a *Adapter) SupportsSnapshots() bool { return false }

// Detect returns true if the directory contains a Cargo.toml.
func (a *Adapter) Detect(_ context.Context, dir string) bool {
	_, err := os.Stat(filepath.Join(dir, "Cargo.toml"))
	return err == nil
}

// IdentifyProject returns the root package name, falling back to the
// directory name for virtual workspaces.
func (a *Adapter) IdentifyProject(_ context.Context, dir string) (string, error) {
	root, err := readManifest(filepath.Join(dir, "Cargo.toml"))
	if err != nil {
		return "", err
	}
	if root.Package != nil && root.Package.Name != "" {
		return root.Package.Name, nil
	}
	return filepath.Base(dir), nil
}

// DetectModules discovers the workspace members and the dependents graph
// from path dependencies.
func (a *Adapter) DetectModules(_ context.Context, dir string) ([]domain.Module, error) {
	rootManifest := filepath.Join(dir, "Cargo.toml")
	root, err := readManifest(rootManifest)
	if err != nil {
		return nil, err
	}

	var modules []domain.Module
	manifests := make(map[string]*manifest)

	if root.Package != nil {
		rootModule, rootErr := moduleFromManifest(root, dir, domain.ModuleKindRoot)
		if rootErr != nil {
			return nil, rootErr
		}
		modules = append(modules, rootModule)
		manifests[rootModule.ID] = root
	}

	if root.Workspace != nil {
		for _, member := range root.Workspace.Members {
			memberDir := filepath.Join(dir, filepath.FromSlash(member))
			m, memberErr := readManifest(filepath.Join(memberDir, "Cargo.toml"))
			if memberErr != nil {
				return nil, memberErr
			}
			if m.Package == nil {
				logger.Warnf("[cargo] workspace member %q has no [package] table, skipping", member)
				continue
			}

			module, moduleErr := moduleFromManifest(m, memberDir, domain.ModuleKindSubmodule)
			if moduleErr != nil {
				return nil, moduleErr
			}
			modules = append(modules, module)
			manifests[module.ID] = m
		}
	}

	if len(modules) == 0 {
		return nil, fmt.Errorf("no packages found in %s", rootManifest)
	}

	wireDependents(modules, manifests)
	return modules, nil
}

// WriteVersions rewrites the version line of each changed member's
// [package] table.
func (a *Adapter) WriteVersions(_ context.Context, _ string, changes []domain.ProcessedChange) error {
	for _, change := range changes {
		if !change.Module.DeclaredVersion {
			continue
		}

		manifestPath := filepath.Join(change.Module.Path, "Cargo.toml")
		content, err := os.ReadFile(manifestPath)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", manifestPath, err)
		}

		if !versionLinePattern.Match(content) {
			return fmt.Errorf("no version entry in %s", manifestPath)
		}

		updated := versionLinePattern.ReplaceAll(content, []byte("${1}"+change.ToVersion+"${3}"))
		if writeErr := os.WriteFile(manifestPath, updated, 0o644); writeErr != nil {
			return fmt.Errorf("failed to write %s: %w", manifestPath, writeErr)
		}

		logger.Infof("[cargo] %s: %s -> %s", change.Module.ID, change.FromVersion, change.ToVersion)
	}
	return nil
}

func readManifest(path string) (*manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var m manifest
	if unmarshalErr := toml.Unmarshal(data, &m); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, unmarshalErr)
	}
	return &m, nil
}

func moduleFromManifest(m *manifest, dir string, kind domain.ModuleKind) (domain.Module, error) {
	version, err := semver.NewVersion(m.Package.Version)
	if err != nil {
		return domain.Module{}, fmt.Errorf(
			"malformed version %q for package %q: %w", m.Package.Version, m.Package.Name, err)
	}
	return domain.Module{
		ID:              m.Package.Name,
		Name:            m.Package.Name,
		Path:            dir,
		Kind:            kind,
		Version:         version,
		DeclaredVersion: true,
	}, nil
}

// wireDependents records a reverse edge for every path dependency naming
// another workspace member.
func wireDependents(modules []domain.Module, manifests map[string]*manifest) {
	byID := make(map[string]int, len(modules))
	for i, m := range modules {
		byID[m.ID] = i
	}

	for i, m := range modules {
		mf := manifests[m.ID]
		for depName, dep := range mf.Dependencies {
			table, isTable := dep.(map[string]any)
			if !isTable {
				continue
			}
			if path, _ := table["path"].(string); path == "" {
				continue
			}
			idx, ok := byID[depName]
			if !ok || depName == m.ID {
				continue
			}
			modules[idx].Dependents = append(modules[idx].Dependents, modules[i].ID)
		}
	}
}
