package output

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"git.home.luguber.info/inful/trac2md/internal/foundation/errors"
)

// CommitOptions describe the commit recorded after a run.
type CommitOptions struct {
	Message     string
	AuthorName  string
	AuthorEmail string
	When        time.Time
}

// Commit stages everything below dir and commits it. A repository is
// initialized when dir is not one yet. It returns an empty hash when there
// was nothing to commit.
func Commit(dir string, opts CommitOptions) (string, error) {
	repo, err := openOrInit(dir)
	if err != nil {
		return "", err
	}

	wt, err := repo.Worktree()
	if err != nil {
		return "", gitError("cannot open worktree", dir, err)
	}
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return "", gitError("cannot stage output", dir, err)
	}

	status, err := wt.Status()
	if err != nil {
		return "", gitError("cannot read worktree status", dir, err)
	}
	if status.IsClean() {
		return "", nil
	}

	when := opts.When
	if when.IsZero() {
		when = time.Now()
	}
	hash, err := wt.Commit(opts.Message, &git.CommitOptions{
		Author: &object.Signature{Name: opts.AuthorName, Email: opts.AuthorEmail, When: when},
	})
	if err != nil {
		return "", gitError("cannot commit output", dir, err)
	}
	return hash.String(), nil
}

func openOrInit(dir string) (*git.Repository, error) {
	if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
		repo, err := git.PlainOpen(dir)
		if err != nil {
			return nil, gitError("cannot open repository", dir, err)
		}
		return repo, nil
	}
	repo, err := git.PlainInit(dir, false)
	if err != nil && !stderrors.Is(err, git.ErrRepositoryAlreadyExists) {
		return nil, gitError("cannot initialize repository", dir, err)
	}
	if repo == nil {
		return git.PlainOpen(dir)
	}
	return repo, nil
}

func gitError(msg, dir string, err error) error {
	return errors.GitError(msg).WithCause(err).WithContext("path", dir).Build()
}
