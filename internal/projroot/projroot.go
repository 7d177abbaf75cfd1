// Package projroot locates the project root that snapshot paths and help
// commands resolve against.
package projroot

import (
	"path/filepath"

	git "github.com/go-git/go-git/v5"
)

// Find returns the enclosing git worktree root for start, walking up
// through parent directories. When start is not inside a repository the
// absolute form of start itself is returned; snapshot containment still
// applies either way.
func Find(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}

	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return abs, nil
	}
	wt, err := repo.Worktree()
	if err != nil {
		// Bare repository; no worktree to anchor against.
		return abs, nil
	}
	return wt.Filesystem.Root(), nil
}
