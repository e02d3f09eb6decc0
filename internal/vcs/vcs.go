// Package vcs stamps reports with the git revision of the analyzed series.
package vcs

import (
	stderrors "errors"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"git.home.luguber.info/inful/continuity/internal/foundation/errors"
)

// DirtySuffix is appended to the revision when the series has uncommitted changes.
const DirtySuffix = "-dirty"

// Revision returns the HEAD commit hash of the repository containing path,
// suffixed with DirtySuffix when files under path are modified or untracked.
// It returns "" without error when path is not inside a repository or the
// repository has no commits yet.
func Revision(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryFileSystem, "resolve series path").
			WithContext("path", path).
			Build()
	}

	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if stderrors.Is(err, git.ErrRepositoryNotExists) {
			return "", nil
		}
		return "", errors.WrapError(err, errors.CategoryVCS, "open repository").
			WithContext("path", abs).
			Build()
	}

	head, err := repo.Head()
	if err != nil {
		if stderrors.Is(err, plumbing.ErrReferenceNotFound) {
			return "", nil
		}
		return "", errors.WrapError(err, errors.CategoryVCS, "resolve HEAD").
			WithContext("path", abs).
			Build()
	}
	revision := head.Hash().String()

	wt, err := repo.Worktree()
	if err != nil {
		// Bare repositories have no worktree to be dirty.
		return revision, nil
	}
	dirty, err := dirtyUnder(wt, abs)
	if err != nil {
		return "", err
	}
	if dirty {
		revision += DirtySuffix
	}
	return revision, nil
}

func dirtyUnder(wt *git.Worktree, abs string) (bool, error) {
	status, err := wt.Status()
	if err != nil {
		return false, errors.WrapError(err, errors.CategoryVCS, "read worktree status").
			WithContext("path", abs).
			Build()
	}

	rel, err := filepath.Rel(wt.Filesystem.Root(), abs)
	if err != nil {
		return !status.IsClean(), nil
	}
	prefix := filepath.ToSlash(rel)
	for file, s := range status {
		if s.Worktree == git.Unmodified && s.Staging == git.Unmodified {
			continue
		}
		if prefix == "." || file == prefix || strings.HasPrefix(file, prefix+"/") {
			return true, nil
		}
	}
	return false, nil
}
