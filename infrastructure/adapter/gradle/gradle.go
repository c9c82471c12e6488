package gradle

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	logger "github.com/sirupsen/logrus"

	"github.com/monover/monover/domain"
)

const adapterName = "gradle"

var (
	// rootProject.name = "my-project" (single or double quotes, kts or groovy)
	rootNamePattern = regexp.MustCompile(`rootProject\.name\s*=\s*['"]([^'"]+)['"]`)

	// include ':core', ":utils" / include(":core", ":utils")
	includePattern = regexp.MustCompile(`(?m)^\s*include\s*\(?\s*(.+?)\)?\s*$`)
	projectPathPattern = regexp.MustCompile(`['"](:[^'"]+)['"]`)

	// project(':core') references inside dependencies blocks
	projectDepPattern = regexp.MustCompile(`project\s*\(\s*['"](:[^'"]+)['"]\s*\)`)

	// version=1.2.3 in gradle.properties. Trailing whitespace must not
	// include the newline or rewrites would swallow line breaks.
	versionLinePattern = regexp.MustCompile(`(?m)^(\s*version\s*=\s*)(\S+)[^\S\n]*$`)
)

// Adapter implements domain.Adapter for Gradle multi-project builds.
// Modules are the root project plus every project named by an include
// directive; declared versions live in per-project gradle.properties files;
// dependency edges come from project(":x") references in build scripts.
type Adapter struct{}

// New creates a new Gradle adapter.
func New() domain.Adapter {
	return &Adapter{}
}

func (a *Adapter) Name() string { return adapterName }

// SupportsSnapshots is true: -SNAPSHOT is the Gradle/Maven convention for
// non-release builds.
func (a *Adapter) SupportsSnapshots() bool { return true }

// Detect returns true if the directory contains a Gradle settings script.
func (a *Adapter) Detect(_ context.Context, dir string) bool {
	return settingsPath(dir) != ""
}

// IdentifyProject returns the rootProject.name from the settings script,
// falling back to the directory name.
func (a *Adapter) IdentifyProject(_ context.Context, dir string) (string, error) {
	settings := settingsPath(dir)
	if settings == "" {
		return "", fmt.Errorf("no Gradle settings script in %q", dir)
	}

	content, err := os.ReadFile(settings)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", settings, err)
	}

	if m := rootNamePattern.FindSubmatch(content); m != nil {
		return string(m[1]), nil
	}
	return filepath.Base(dir), nil
}

// DetectModules discovers the root project and all included subprojects,
// their declared versions, and the dependents graph.
func (a *Adapter) DetectModules(ctx context.Context, dir string) ([]domain.Module, error) {
	settings := settingsPath(dir)
	if settings == "" {
		return nil, fmt.Errorf("no Gradle settings script in %q", dir)
	}

	content, err := os.ReadFile(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", settings, err)
	}

	rootName, err := a.IdentifyProject(ctx, dir)
	if err != nil {
		return nil, err
	}

	rootVersion, rootDeclared, err := readDeclaredVersion(dir)
	if err != nil {
		return nil, err
	}

	modules := []domain.Module{{
		ID:              ":",
		Name:            rootName,
		Path:            dir,
		Kind:            domain.ModuleKindRoot,
		Version:         rootVersion,
		DeclaredVersion: rootDeclared,
	}}

	for _, projPath := range includedProjects(string(content)) {
		projDir := filepath.Join(dir, filepath.FromSlash(strings.ReplaceAll(strings.TrimPrefix(projPath, ":"), ":", "/")))

		version, declared, verErr := readDeclaredVersion(projDir)
		if verErr != nil {
			return nil, verErr
		}
		if !declared {
			// Subprojects without their own version inherit the root's.
			version = rootVersion
		}

		segments := strings.Split(projPath, ":")
		modules = append(modules, domain.Module{
			ID:              projPath,
			Name:            segments[len(segments)-1],
			Path:            projDir,
			Kind:            domain.ModuleKindSubmodule,
			Version:         version,
			DeclaredVersion: declared,
		})
	}

	wireDependents(modules)
	return modules, nil
}

// WriteVersions rewrites the version= line of each changed module's
// gradle.properties. Modules without a declared version are skipped.
func (a *Adapter) WriteVersions(_ context.Context, _ string, changes []domain.ProcessedChange) error {
	for _, change := range changes {
		if !change.Module.DeclaredVersion {
			logger.Debugf("[gradle] %s has no declared version, skipping write", change.Module.ID)
			continue
		}

		propsPath := filepath.Join(change.Module.Path, "gradle.properties")
		content, err := os.ReadFile(propsPath)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", propsPath, err)
		}

		if !versionLinePattern.Match(content) {
			return fmt.Errorf("no version entry in %s", propsPath)
		}

		updated := versionLinePattern.ReplaceAll(content, []byte("${1}"+change.ToVersion))
		if writeErr := os.WriteFile(propsPath, updated, 0o644); writeErr != nil {
			return fmt.Errorf("failed to write %s: %w", propsPath, writeErr)
		}

		logger.Infof("[gradle] %s: %s -> %s", change.Module.ID, change.FromVersion, change.ToVersion)
	}
	return nil
}

// settingsPath returns the path of the settings script, preferring the
// Kotlin DSL variant, or "" when neither exists.
func settingsPath(dir string) string {
	for _, name := range []string{"settings.gradle.kts", "settings.gradle"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// includedProjects extracts the project paths named by include directives.
func includedProjects(settings string) []string {
	seen := make(map[string]bool)
	var paths []string

	for _, line := range includePattern.FindAllStringSubmatch(settings, -1) {
		for _, ref := range projectPathPattern.FindAllStringSubmatch(line[1], -1) {
			if !seen[ref[1]] {
				seen[ref[1]] = true
				paths = append(paths, ref[1])
			}
		}
	}
	return paths
}

// readDeclaredVersion reads the version entry from a project's
// gradle.properties. A missing file or missing entry is not an error; a
// version that fails to parse is fatal, since all downstream math depends
// on a valid starting point.
func readDeclaredVersion(projDir string) (*semver.Version, bool, error) {
	propsPath := filepath.Join(projDir, "gradle.properties")
	content, err := os.ReadFile(propsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return semver.MustParse("0.0.0"), false, nil
		}
		return nil, false, fmt.Errorf("failed to read %s: %w", propsPath, err)
	}

	m := versionLinePattern.FindSubmatch(content)
	if m == nil {
		return semver.MustParse("0.0.0"), false, nil
	}

	raw := strings.TrimSuffix(string(m[2]), domain.SnapshotSuffix)
	version, parseErr := semver.NewVersion(raw)
	if parseErr != nil {
		return nil, false, fmt.Errorf("malformed version %q in %s: %w", string(m[2]), propsPath, parseErr)
	}
	return version, true, nil
}

// wireDependents scans each module's build script for project(":x")
// references and records the reverse edges: when x changes, the referencing
// module is affected.
func wireDependents(modules []domain.Module) {
	byID := make(map[string]int, len(modules))
	for i, m := range modules {
		byID[m.ID] = i
	}

	seen := make(map[string]bool)
	for _, m := range modules {
		script := buildScript(m.Path)
		if script == nil {
			continue
		}

		for _, ref := range projectDepPattern.FindAllSubmatch(script, -1) {
			depID := string(ref[1])
			idx, ok := byID[depID]
			if !ok {
				logger.Warnf("[gradle] %s references unknown project %s", m.ID, depID)
				continue
			}
			if depID == m.ID || seen[depID+" -> "+m.ID] {
				continue
			}
			seen[depID+" -> "+m.ID] = true
			modules[idx].Dependents = append(modules[idx].Dependents, m.ID)
		}
	}
}

// buildScript returns the content of the project's build script, or nil.
func buildScript(projDir string) []byte {
	for _, name := range []string{"build.gradle.kts", "build.gradle"} {
		if content, err := os.ReadFile(filepath.Join(projDir, name)); err == nil {
			return content
		}
	}
	return nil
}
