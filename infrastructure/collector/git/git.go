package git

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	logger "github.com/sirupsen/logrus"

	"github.com/monover/monover/domain"
)

const shortHashLen = 7

// Collector implements domain.CommitCollector on top of a local git
// working tree. Release tags are named {module.name}@{version}; the commit
// history of a module is the log since its highest release tag, restricted
// to the module's path and excluding paths of nested child modules.
type Collector struct{}

// New creates a new git collector.
func New() domain.CommitCollector {
	return &Collector{}
}

// Collect returns the classified commits and last release tag per module.
func (c *Collector) Collect(
	ctx context.Context,
	dir string,
	modules []domain.Module,
) (map[string]domain.ModuleCommits, error) {
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository %q: %w", dir, err)
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve HEAD: %w", err)
	}

	tagsByName, err := releaseTags(repo)
	if err != nil {
		return nil, err
	}

	result := make(map[string]domain.ModuleCommits, len(modules))
	for _, m := range modules {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		lastTag, boundary := latestReleaseTag(tagsByName[m.Name])

		commits, logErr := c.moduleLog(repo, head.Hash(), boundary, dir, m, modules)
		if logErr != nil {
			return nil, fmt.Errorf("failed to read log for module %q: %w", m.ID, logErr)
		}

		logger.Debugf("[git] %s: %d commits since %q", m.ID, len(commits), lastTag)
		result[m.ID] = domain.ModuleCommits{
			Commits: commits,
			LastTag: lastTag,
		}
	}

	return result, nil
}

// HeadIdentifier returns the short hash of the current head commit.
func (c *Collector) HeadIdentifier(_ context.Context, dir string) (string, error) {
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return "", fmt.Errorf("failed to open git repository %q: %w", dir, err)
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	return head.Hash().String()[:shortHashLen], nil
}

// TagRelease creates the lightweight release tag {name}@{version} at head.
func (c *Collector) TagRelease(_ context.Context, dir, name, version string) error {
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return fmt.Errorf("failed to open git repository %q: %w", dir, err)
	}
	head, err := repo.Head()
	if err != nil {
		return fmt.Errorf("failed to resolve HEAD: %w", err)
	}

	tagName := fmt.Sprintf("%s@%s", name, version)
	if _, tagErr := repo.CreateTag(tagName, head.Hash(), nil); tagErr != nil {
		return fmt.Errorf("failed to create tag %q: %w", tagName, tagErr)
	}

	logger.Infof("[git] Created tag %s", tagName)
	return nil
}

// releaseTag is one parsed {name}@{version} tag.
type releaseTag struct {
	version *semver.Version
	hash    plumbing.Hash
}

// releaseTags collects all tags following the {name}@{version} convention,
// grouped by module name. Tags whose version part does not parse are
// ignored with a warning: they are usually unrelated tags, not corruption.
func releaseTags(repo *gogit.Repository) (map[string][]releaseTag, error) {
	iter, err := repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	tags := make(map[string][]releaseTag)
	iterErr := iter.ForEach(func(ref *plumbing.Reference) error {
		shortName := ref.Name().Short()
		name, versionPart, found := strings.Cut(shortName, "@")
		if !found || name == "" {
			return nil
		}

		version, parseErr := semver.NewVersion(versionPart)
		if parseErr != nil {
			logger.Warnf("[git] Ignoring tag %q: version does not parse", shortName)
			return nil
		}

		hash, resolveErr := resolveTagCommit(repo, ref)
		if resolveErr != nil {
			logger.Warnf("[git] Ignoring tag %q: %v", shortName, resolveErr)
			return nil
		}

		tags[name] = append(tags[name], releaseTag{version: version, hash: hash})
		return nil
	})
	if iterErr != nil {
		return nil, fmt.Errorf("failed to iterate tags: %w", iterErr)
	}

	return tags, nil
}

// resolveTagCommit resolves a tag reference to its commit hash, peeling
// annotated tags.
func resolveTagCommit(repo *gogit.Repository, ref *plumbing.Reference) (plumbing.Hash, error) {
	if tagObj, err := repo.TagObject(ref.Hash()); err == nil {
		commit, commitErr := tagObj.Commit()
		if commitErr != nil {
			return plumbing.ZeroHash, commitErr
		}
		return commit.Hash, nil
	}
	return ref.Hash(), nil
}

// latestReleaseTag picks the highest version among a module's release tags.
func latestReleaseTag(tags []releaseTag) (string, plumbing.Hash) {
	var best *releaseTag
	for i := range tags {
		if best == nil || tags[i].version.GreaterThan(best.version) {
			best = &tags[i]
		}
	}
	if best == nil {
		return "", plumbing.ZeroHash
	}
	return best.version.String(), best.hash
}

// moduleLog walks the log from head, keeping commits that touch the
// module's path but none of its nested child modules, and dropping every
// commit already reachable from the module's last release tag. The child
// exclusion prevents double counting in nested monorepos; consumers can
// rely on it having happened.
func (c *Collector) moduleLog(
	repo *gogit.Repository,
	head, boundary plumbing.Hash,
	dir string,
	module domain.Module,
	all []domain.Module,
) ([]domain.ClassifiedCommit, error) {
	filter, err := modulePathFilter(dir, module, all)
	if err != nil {
		return nil, err
	}

	released, err := releasedSet(repo, boundary)
	if err != nil {
		return nil, err
	}

	iter, err := repo.Log(&gogit.LogOptions{
		From:       head,
		PathFilter: filter,
	})
	if err != nil {
		return nil, err
	}

	var commits []domain.ClassifiedCommit
	walkErr := iter.ForEach(func(commit *object.Commit) error {
		// The tag usually sits on a commit outside the module's path, so the
		// path-filtered iterator may never yield the boundary itself.
		// Membership in the released set decides, not identity with it.
		if released[commit.Hash] {
			return nil
		}
		commits = append(commits, ParseConventional(commit.Hash.String(), commit.Message))
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	return commits, nil
}

// releasedSet returns the hashes of every commit reachable from the
// boundary, i.e. everything the last release already covered.
func releasedSet(repo *gogit.Repository, boundary plumbing.Hash) (map[plumbing.Hash]bool, error) {
	set := make(map[plumbing.Hash]bool)
	if boundary.IsZero() {
		return set, nil
	}

	iter, err := repo.Log(&gogit.LogOptions{From: boundary})
	if err != nil {
		return nil, err
	}
	walkErr := iter.ForEach(func(commit *object.Commit) error {
		set[commit.Hash] = true
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	return set, nil
}

// modulePathFilter returns a predicate accepting paths inside the module's
// directory and outside every nested child module's directory.
func modulePathFilter(dir string, module domain.Module, all []domain.Module) (func(string) bool, error) {
	prefix, err := modulePrefix(dir, module.Path)
	if err != nil {
		return nil, err
	}

	var childPrefixes []string
	for _, other := range all {
		if other.ID == module.ID {
			continue
		}
		otherPrefix, prefixErr := modulePrefix(dir, other.Path)
		if prefixErr != nil {
			continue
		}
		if prefix == "" || strings.HasPrefix(otherPrefix, prefix) {
			childPrefixes = append(childPrefixes, otherPrefix)
		}
	}

	return func(path string) bool {
		if prefix != "" && !strings.HasPrefix(path, prefix) {
			return false
		}
		for _, child := range childPrefixes {
			if strings.HasPrefix(path, child) {
				return false
			}
		}
		return true
	}, nil
}

// modulePrefix returns the repository-relative path prefix of a module
// directory with a trailing slash, or "" for the repository root.
func modulePrefix(dir, modulePath string) (string, error) {
	rel, err := filepath.Rel(dir, modulePath)
	if err != nil {
		return "", fmt.Errorf("module path %q outside repository: %w", modulePath, err)
	}
	if rel == "." {
		return "", nil
	}
	return filepath.ToSlash(rel) + "/", nil
}
