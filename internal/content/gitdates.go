package content

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// DateResolver supplies commit-based dates for a file.
type DateResolver interface {
	LastModified(path string) (time.Time, bool)
	Created(path string) (time.Time, bool)
}

// GitHistory resolves dates from the commit log of the repository containing a path.
type GitHistory struct {
	repo *git.Repository
	root string

	mu    sync.Mutex
	cache map[string]fileDates
}

type fileDates struct {
	created, modified time.Time
	ok                bool
}

// OpenGitHistory opens the repository enclosing dir.
func OpenGitHistory(dir string) (*GitHistory, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open git repository: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("git worktree: %w", err)
	}
	return &GitHistory{repo: repo, root: wt.Filesystem.Root(), cache: make(map[string]fileDates)}, nil
}

// LastModified is the committer time of the newest commit touching path.
func (g *GitHistory) LastModified(path string) (time.Time, bool) {
	d := g.lookup(path)
	return d.modified, d.ok
}

// Created is the committer time of the oldest commit touching path.
func (g *GitHistory) Created(path string) (time.Time, bool) {
	d := g.lookup(path)
	return d.created, d.ok
}

func (g *GitHistory) lookup(path string) fileDates {
	rel, err := g.relative(path)
	if err != nil {
		return fileDates{}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if d, ok := g.cache[rel]; ok {
		return d
	}
	d := g.scan(rel)
	g.cache[rel] = d
	return d
}

func (g *GitHistory) scan(rel string) fileDates {
	iter, err := g.repo.Log(&git.LogOptions{FileName: &rel, Order: git.LogOrderCommitterTime})
	if err != nil {
		return fileDates{}
	}
	defer iter.Close()

	var d fileDates
	_ = iter.ForEach(func(c *object.Commit) error {
		when := c.Committer.When
		if !d.ok {
			d.modified = when
			d.ok = true
		}
		d.created = when
		return nil
	})
	return d
}

func (g *GitHistory) relative(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	root := g.root
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}
