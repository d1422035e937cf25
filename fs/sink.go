// Package fs publishes gallery files to a local directory and guards runs
// with a lock file.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/curator"
	"github.com/google/uuid"
	"github.com/inful/mdfp"
)

// Ensure Sink implements curator.Publisher at compile time.
var _ curator.Publisher = (*Sink)(nil)

// Sink writes changesets below a root directory. Files are staged in a
// temporary directory first and moved into place only once every file
// was written; if a move fails, the files already moved are restored.
type Sink struct {
	root string

	// Now dates the gallery readme notice. Defaults to time.Now.
	Now func() time.Time

	// Written and Skipped count the files of the last publish.
	Written int
	Skipped int
}

// NewSink creates a Sink rooted at dir. Changeset paths are relative to
// dir.
func NewSink(dir string) *Sink {
	return &Sink{root: dir, Now: time.Now}
}

// Publish implements curator.Publisher. The requirements file and gallery
// readme are updated alongside the examples when they exist. Files whose
// content fingerprint matches the file on disk are left untouched.
func (s *Sink) Publish(ctx context.Context, cs *curator.Changeset, _ *curator.Summary) error {
	s.Written, s.Skipped = 0, 0
	if cs.Len() == 0 {
		return nil
	}
	cs, err := curator.Supplement(cs, s.read, s.now())
	if err != nil {
		return err
	}

	staging := filepath.Join(s.root, ".curator-"+uuid.NewString()+".tmp")
	if err := os.MkdirAll(staging, 0755); err != nil {
		return err
	}
	defer func() { _ = os.RemoveAll(staging) }()

	var pending []curator.FileChange
	for _, f := range cs.Files {
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := cleanRel(f.Path)
		if err != nil {
			return err
		}
		if unchanged(filepath.Join(s.root, rel), f.Content) {
			s.Skipped++
			continue
		}
		tmp := filepath.Join(staging, "new", rel)
		if err := os.MkdirAll(filepath.Dir(tmp), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(tmp, []byte(f.Content), 0644); err != nil {
			return fmt.Errorf("stage %s: %w", rel, err)
		}
		f.Path = rel
		pending = append(pending, f)
	}

	if err := s.commit(staging, pending); err != nil {
		return err
	}
	s.Written = len(pending)
	return nil
}

// commit moves staged files into place, backing up files they replace.
func (s *Sink) commit(staging string, files []curator.FileChange) (err error) {
	type moved struct{ dst, backup string }
	var done []moved

	defer func() {
		if err == nil {
			return
		}
		for i := len(done) - 1; i >= 0; i-- {
			_ = os.Remove(done[i].dst)
			if done[i].backup != "" {
				_ = os.Rename(done[i].backup, done[i].dst)
			}
		}
	}()

	for _, f := range files {
		dst := filepath.Join(s.root, f.Path)
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return err
		}

		var backup string
		if _, statErr := os.Stat(dst); statErr == nil {
			backup = filepath.Join(staging, "old", f.Path)
			if err := os.MkdirAll(filepath.Dir(backup), 0755); err != nil {
				return err
			}
			if err := os.Rename(dst, backup); err != nil {
				return fmt.Errorf("back up %s: %w", f.Path, err)
			}
		}

		if err := os.Rename(filepath.Join(staging, "new", f.Path), dst); err != nil {
			if backup != "" {
				_ = os.Rename(backup, dst)
			}
			return fmt.Errorf("move %s: %w", f.Path, err)
		}
		done = append(done, moved{dst: dst, backup: backup})
	}
	return nil
}

func (s *Sink) read(rel string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.root, filepath.FromSlash(rel)))
}

func (s *Sink) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// unchanged reports whether the file at path has the same content
// fingerprint as content.
func unchanged(path, content string) bool {
	existing, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return fingerprint(string(existing)) == fingerprint(content)
}

func fingerprint(content string) string {
	return mdfp.CalculateFingerprintFromParts("", content)
}

// cleanRel rejects paths that would escape the sink root.
func cleanRel(p string) (string, error) {
	if p == "" {
		return "", curator.Errorf(curator.EINVALID, "empty file path")
	}
	rel := filepath.Clean(filepath.FromSlash(p))
	if filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", curator.Errorf(curator.EINVALID, "path %q escapes the gallery root", p)
	}
	return rel, nil
}
