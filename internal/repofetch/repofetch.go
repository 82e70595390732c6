// Package repofetch resolves a repository locator into a local path.
package repofetch

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
)

// Prepare clones remote locators (http, https, git@) into cloneDir and
// resolves local ones to an absolute path. An unreachable remote or a
// missing local path is fatal for the run.
func Prepare(ctx context.Context, locator, cloneDir string) (string, error) {
	if isRemote(locator) {
		log.Printf("[repo] 🌐 Cloning remote repository: %s", locator)
		if err := os.RemoveAll(cloneDir); err != nil {
			return "", fmt.Errorf("clear clone dir: %w", err)
		}
		_, err := git.PlainCloneContext(ctx, cloneDir, false, &git.CloneOptions{
			URL:   locator,
			Depth: 1,
		})
		if err != nil {
			return "", fmt.Errorf("clone repository: %w", err)
		}
		log.Printf("[repo] ✅ Repository cloned to %s", cloneDir)
		return cloneDir, nil
	}

	abs, err := filepath.Abs(locator)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("repository path does not exist: %s", abs)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("repository path is not a directory: %s", abs)
	}
	log.Printf("[repo] ✅ Using local repository: %s", abs)
	return abs, nil
}

func isRemote(locator string) bool {
	return strings.HasPrefix(locator, "http://") ||
		strings.HasPrefix(locator, "https://") ||
		strings.HasPrefix(locator, "git@")
}
