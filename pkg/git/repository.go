// Package git reads the local repository: working tree diff, status and
// recent history.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"github.com/theapemachine/grok-agent-mcp/pkg/upstream"
)

// DefaultHistoryLimit is the number of commits reported by History.
const DefaultHistoryLimit = 20

// Repository wraps a go-git repository opened from any path inside it.
type Repository struct {
	root     string
	repo     *git.Repository
	worktree *git.Worktree
}

func Open(path string) (*Repository, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	repo, err := git.PlainOpenWithOptions(absPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository at %s: %w", absPath, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}

	return &Repository{
		root:     worktree.Filesystem.Root(),
		repo:     repo,
		worktree: worktree,
	}, nil
}

// Root returns the absolute path of the working tree.
func (repository *Repository) Root() string {
	return repository.root
}

func (repository *Repository) IsClean(_ context.Context) (bool, error) {
	status, err := repository.worktree.Status()
	if err != nil {
		return false, fmt.Errorf("failed to get worktree status: %w", err)
	}

	return status.IsClean(), nil
}

// Diff returns the unstaged working tree diff in unified format, the output of
// `git diff`. An empty string means there is nothing to review.
func (repository *Repository) Diff(ctx context.Context) (string, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, "git", "-C", repository.root, "diff")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git diff failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	return stdout.String(), nil
}

// History reports the latest limit commits reachable from HEAD and the files
// they touched. A repository without commits yields empty lists.
func (repository *Repository) History(ctx context.Context, limit int) (*upstream.ProjectHistory, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	history := &upstream.ProjectHistory{
		RecentChanges: []string{},
		LastUpdated:   time.Now().UTC(),
		Commits:       []upstream.Commit{},
		Files:         []string{},
	}

	head, err := repository.repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return history, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve HEAD: %w", err)
	}

	iter, err := repository.repo.Log(&git.LogOptions{
		From:  head.Hash(),
		Order: git.LogOrderCommitterTime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get log iterator: %w", err)
	}
	defer iter.Close()

	files := make(map[string]struct{})

	err = iter.ForEach(func(c *object.Commit) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if len(history.Commits) >= limit {
			return storer.ErrStop
		}

		history.Commits = append(history.Commits, convertCommit(c))
		history.RecentChanges = append(history.RecentChanges, subject(c.Message))

		stats, err := c.Stats()
		if err != nil {
			return fmt.Errorf("failed to get stats for %s: %w", c.Hash, err)
		}
		for _, stat := range stats {
			files[stat.Name] = struct{}{}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate commits: %w", err)
	}

	if len(history.Commits) > 0 {
		history.LastUpdated = history.Commits[0].Date
	}

	for name := range files {
		history.Files = append(history.Files, name)
	}
	sort.Strings(history.Files)

	return history, nil
}

func convertCommit(c *object.Commit) upstream.Commit {
	return upstream.Commit{
		Hash:    c.Hash.String(),
		Author:  c.Author.Name,
		Message: strings.TrimSpace(c.Message),
		Date:    c.Author.When.UTC(),
	}
}

func subject(message string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(message), "\n")
	return line
}
