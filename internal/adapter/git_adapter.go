package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	m "refdiff.dev/pkg/refdiff/internal/model"
)

// ErrRootCommit is returned when the requested commit has no parent to compare with.
var ErrRootCommit = errors.New("commit has no parent")

// SourceFile is one file read from a revision.
type SourceFile struct {
	Path    m.Path
	Content []byte
}

// CommitChanges holds the changed files of a commit on both sides.
type CommitChanges struct {
	Commit string
	Parent string
	// Files modified or deleted, as they were in the parent.
	Before []SourceFile
	// Files modified or added, as they are in the commit.
	After []SourceFile
}

// GitAdapter reads revisions from a Git repository.
type GitAdapter interface {
	// CommitChanges resolves rev and returns the files it changed relative to
	// its first parent. Only paths accepted by include are returned.
	CommitChanges(ctx context.Context, repoPath string, rev string, include func(m.Path) bool) (*CommitChanges, error)
}

// LocalGitAdapter implements GitAdapter with go-git.
type LocalGitAdapter struct{}

// NewLocalGitAdapter constructs a LocalGitAdapter.
func NewLocalGitAdapter() *LocalGitAdapter {
	return &LocalGitAdapter{}
}

// CommitChanges implements GitAdapter.
func (a *LocalGitAdapter) CommitChanges(ctx context.Context, repoPath string, rev string, include func(m.Path) bool) (*CommitChanges, error) {
	repo, err := git.PlainOpenWithOptions(repoPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("opening repository: %w", err)
	}

	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("resolving %q: %w", rev, err)
	}

	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("getting commit: %w", err)
	}

	if commit.NumParents() == 0 {
		return nil, fmt.Errorf("%s: %w", commit.Hash, ErrRootCommit)
	}

	parent, err := commit.Parent(0)
	if err != nil {
		return nil, fmt.Errorf("getting parent: %w", err)
	}

	parentTree, err := parent.Tree()
	if err != nil {
		return nil, fmt.Errorf("getting parent tree: %w", err)
	}

	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("getting tree: %w", err)
	}

	changes, err := parentTree.DiffContext(ctx, tree)
	if err != nil {
		return nil, fmt.Errorf("computing diff: %w", err)
	}

	out := &CommitChanges{Commit: commit.Hash.String(), Parent: parent.Hash.String()}

	for _, change := range changes {
		from, to, err := change.Files()
		if err != nil {
			return nil, fmt.Errorf("reading change %s: %w", change, err)
		}

		if from != nil && include(m.Path(from.Name)) {
			f, err := readGitFile(from)
			if err != nil {
				return nil, err
			}

			out.Before = append(out.Before, f)
		}

		if to != nil && include(m.Path(to.Name)) {
			f, err := readGitFile(to)
			if err != nil {
				return nil, err
			}

			out.After = append(out.After, f)
		}
	}

	slog.Debug("collected commit changes", "commit", out.Commit, "before", len(out.Before), "after", len(out.After))

	return out, nil
}

func readGitFile(f *object.File) (SourceFile, error) {
	content, err := f.Contents()
	if err != nil {
		return SourceFile{}, fmt.Errorf("reading file %s: %w", f.Name, err)
	}

	return SourceFile{Path: m.Path(f.Name), Content: []byte(content)}, nil
}
