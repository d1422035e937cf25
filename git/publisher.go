// Package git publishes gallery changesets as a commit on a dated branch
// of a local repository, ready to be pushed for review.
package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/curator"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Ensure Publisher implements curator.Publisher at compile time.
var _ curator.Publisher = (*Publisher)(nil)

// MaxListedFiles is the number of files named in a commit message.
const MaxListedFiles = 10

// Publisher commits changesets to a branch named auto-update-YYYYMMDD,
// created from HEAD when it does not exist yet.
type Publisher struct {
	dir string

	// Writer places files in the worktree. When nil, files are written
	// directly.
	Writer curator.Publisher

	AuthorName  string
	AuthorEmail string

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	// Branch and Commit describe the last successful publish.
	Branch string
	Commit string
}

// NewPublisher creates a Publisher for the repository at dir.
func NewPublisher(dir string) *Publisher {
	return &Publisher{
		dir:         dir,
		AuthorName:  "curator",
		AuthorEmail: "curator@users.noreply.github.com",
		Now:         time.Now,
	}
}

// BranchName returns the update branch for t.
func BranchName(t time.Time) string {
	return "auto-update-" + t.Format("20060102")
}

// Publish implements curator.Publisher. Besides the example files, the
// commit carries the requirements and gallery readme updates.
func (p *Publisher) Publish(ctx context.Context, cs *curator.Changeset, summary *curator.Summary) error {
	if cs.Len() == 0 {
		return nil
	}

	repo, err := git.PlainOpen(p.dir)
	if err != nil {
		return curator.Errorf(curator.EINVALID, "open repository %s: %v", p.dir, err)
	}
	head, err := repo.Head()
	if err != nil {
		return curator.Errorf(curator.EINVALID, "repository %s has no HEAD: %v", p.dir, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return err
	}

	now := p.Now()
	branch := plumbing.NewBranchReferenceName(BranchName(now))
	if err := p.checkout(repo, wt, branch, head.Hash()); err != nil {
		return err
	}

	full, err := curator.Supplement(cs, p.read, now)
	if err != nil {
		return err
	}
	if err := p.write(ctx, full, summary); err != nil {
		return err
	}

	for _, f := range full.Files {
		if _, err := wt.Add(filepath.ToSlash(f.Path)); err != nil {
			return fmt.Errorf("stage %s: %w", f.Path, err)
		}
	}

	status, err := wt.Status()
	if err != nil {
		return err
	}
	if !staged(status, full) {
		p.Branch, p.Commit = branch.Short(), ""
		return nil
	}

	hash, err := wt.Commit(CommitMessage(now, cs), &git.CommitOptions{
		Author: &object.Signature{
			Name:  p.AuthorName,
			Email: p.AuthorEmail,
			When:  now,
		},
	})
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	p.Branch, p.Commit = branch.Short(), hash.String()
	return nil
}

func (p *Publisher) checkout(repo *git.Repository, wt *git.Worktree, branch plumbing.ReferenceName, from plumbing.Hash) error {
	_, err := repo.Reference(branch, true)
	switch {
	case err == nil:
		err = wt.Checkout(&git.CheckoutOptions{Branch: branch, Keep: true})
	case errors.Is(err, plumbing.ErrReferenceNotFound):
		err = wt.Checkout(&git.CheckoutOptions{Branch: branch, Hash: from, Create: true, Keep: true})
	}
	if err != nil {
		return fmt.Errorf("checkout %s: %w", branch.Short(), err)
	}
	return nil
}

func (p *Publisher) read(rel string) ([]byte, error) {
	return os.ReadFile(filepath.Join(p.dir, filepath.FromSlash(rel)))
}

func (p *Publisher) write(ctx context.Context, cs *curator.Changeset, summary *curator.Summary) error {
	if p.Writer != nil {
		return p.Writer.Publish(ctx, cs, summary)
	}
	for _, f := range cs.Files {
		path := filepath.Join(p.dir, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(f.Content), 0644); err != nil {
			return err
		}
	}
	return nil
}

// staged reports whether any file of cs differs from HEAD in the index.
func staged(status git.Status, cs *curator.Changeset) bool {
	for _, f := range cs.Files {
		st, ok := status[filepath.ToSlash(f.Path)]
		if ok && st.Staging != git.Unmodified && st.Staging != git.Untracked {
			return true
		}
	}
	return false
}

// CommitMessage lists the first MaxListedFiles files of cs.
func CommitMessage(now time.Time, cs *curator.Changeset) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Automated gallery update - %s\n\n", now.Format("2006-01-02"))
	fmt.Fprintf(&b, "Added %d new examples scraped and processed from package documentation:\n\n", cs.Len())
	for i, f := range cs.Files {
		if i == MaxListedFiles {
			fmt.Fprintf(&b, "- ... and %d more\n", cs.Len()-MaxListedFiles)
			break
		}
		fmt.Fprintf(&b, "- %s\n", f.Path)
	}
	return b.String()
}
