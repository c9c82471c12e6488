package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/Masterminds/semver/v3"

	"github.com/monover/monover/domain"
)

// ModuleBuilder helps create test modules with a fluent interface.
type ModuleBuilder struct {
	id         string
	name       string
	path       string
	kind       domain.ModuleKind
	version    string
	declared   bool
	dependents []string
}

// NewModuleBuilder creates a new module builder with sensible defaults.
func NewModuleBuilder() *ModuleBuilder {
	return &ModuleBuilder{
		id:       "test-module",
		name:     "test-module",
		path:     "/repo/test-module",
		kind:     domain.ModuleKindSubmodule,
		version:  "1.0.0",
		declared: true,
	}
}

// WithID sets the module id (and the name, unless set separately).
func (b *ModuleBuilder) WithID(id string) *ModuleBuilder {
	b.id = id
	b.name = id
	return b
}

// WithName sets the module name.
func (b *ModuleBuilder) WithName(name string) *ModuleBuilder {
	b.name = name
	return b
}

// WithPath sets the filesystem path.
func (b *ModuleBuilder) WithPath(path string) *ModuleBuilder {
	b.path = path
	return b
}

// WithKind sets the module kind.
func (b *ModuleBuilder) WithKind(kind domain.ModuleKind) *ModuleBuilder {
	b.kind = kind
	return b
}

// WithVersion sets the current version. The string must parse as SemVer.
func (b *ModuleBuilder) WithVersion(version string) *ModuleBuilder {
	b.version = version
	return b
}

// WithDeclaredVersion sets the declared-version flag.
func (b *ModuleBuilder) WithDeclaredVersion(declared bool) *ModuleBuilder {
	b.declared = declared
	return b
}

// WithDependents sets the dependents edge list.
func (b *ModuleBuilder) WithDependents(ids ...string) *ModuleBuilder {
	b.dependents = ids
	return b
}

// Build creates the module.
func (b *ModuleBuilder) Build() domain.Module {
	return domain.Module{
		ID:              b.id,
		Name:            b.name,
		Path:            b.path,
		Kind:            b.kind,
		Version:         semver.MustParse(b.version),
		DeclaredVersion: b.declared,
		Dependents:      b.dependents,
	}
}
