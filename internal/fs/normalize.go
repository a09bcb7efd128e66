package fs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"tuto-go/internal/tuto"
)

// Normalizer prunes ignored entries from extracted submissions and
// collapses nested folders. Both walks use an explicit worklist, so a
// failure leaves every directory visited before it fully processed and
// every later one untouched.
type Normalizer struct {
	matcher *IgnoreMatcher
	logger  tuto.Logger
}

var _ tuto.Normalizer = (*Normalizer)(nil)

// NewNormalizer creates a Normalizer. A nil matcher prunes nothing.
func NewNormalizer(matcher *IgnoreMatcher, logger tuto.Logger) *Normalizer {
	if matcher == nil {
		matcher = NewIgnoreMatcher(nil)
	}
	if logger == nil {
		logger = tuto.NewNopLogger()
	}
	return &Normalizer{matcher: matcher, logger: logger}
}

// Prune removes every file and directory below root whose name matches the
// ignore list. Directories go with their full contents. root itself is
// never removed.
func (n *Normalizer) Prune(root string) error {
	stack := []string{root}
	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(dir)
		if err != nil {
			return fmt.Errorf("reading directory: %w", err)
		}

		for _, entry := range entries {
			p := filepath.Join(dir, entry.Name())
			if n.matcher.Match(entry.Name()) {
				if err := os.RemoveAll(p); err != nil {
					return fmt.Errorf("removing %s: %w", p, err)
				}
				n.logger.Debug("removed", "path", p)
				continue
			}
			if entry.IsDir() {
				stack = append(stack, p)
			}
		}
	}
	return nil
}

// Flatten collapses the tree below root. The non-ignored files of every
// subdirectory are copied into root and the subdirectories are removed.
// Deeper files overwrite shallower ones of the same name, and any nested
// file overwrites a file already in root. A root without subdirectories is
// left as is.
//
// The subdirectories are first moved into a staging directory inside root,
// so a file may share its name with the folder it lives in (ex1/ex1). A
// failure after that point leaves the unprocessed files in the staging
// directory.
func (n *Normalizer) Flatten(root string) error {
	root = filepath.Clean(root)

	entries, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("reading directory: %w", err)
	}
	var top []string
	for _, entry := range entries {
		if entry.IsDir() && !n.matcher.Match(entry.Name()) {
			top = append(top, entry.Name())
		}
	}
	if len(top) == 0 {
		return nil
	}

	staging, err := os.MkdirTemp(root, ".flatten-")
	if err != nil {
		return fmt.Errorf("creating staging directory: %w", err)
	}
	for _, name := range top {
		if err := os.Rename(filepath.Join(root, name), filepath.Join(staging, name)); err != nil {
			return fmt.Errorf("staging %s: %w", name, err)
		}
	}

	dirs, err := n.subdirectories(staging)
	if err != nil {
		return err
	}

	// dirs is breadth-first, so deeper files are copied last and win.
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return fmt.Errorf("reading directory: %w", err)
		}
		for _, entry := range entries {
			if !entry.Type().IsRegular() || n.matcher.Match(entry.Name()) {
				continue
			}
			src := filepath.Join(dir, entry.Name())
			dst := filepath.Join(root, entry.Name())
			if err := copyFile(src, dst); err != nil {
				return err
			}
			rel, _ := filepath.Rel(staging, src)
			n.logger.Debug("moved", "from", filepath.Join(root, rel), "to", dst)
		}
	}

	if err := os.RemoveAll(staging); err != nil {
		return fmt.Errorf("removing %s: %w", staging, err)
	}
	for _, name := range top {
		n.logger.Debug("removed", "path", filepath.Join(root, name))
	}
	return nil
}

// subdirectories lists every non-ignored directory below root, breadth-first.
func (n *Normalizer) subdirectories(root string) ([]string, error) {
	var dirs []string
	queue := []string{filepath.Clean(root)}
	for len(queue) > 0 {
		dir := queue[0]
		queue = queue[1:]

		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("reading directory: %w", err)
		}
		for _, entry := range entries {
			if !entry.IsDir() || n.matcher.Match(entry.Name()) {
				continue
			}
			p := filepath.Join(dir, entry.Name())
			dirs = append(dirs, p)
			queue = append(queue, p)
		}
	}
	return dirs, nil
}

// copyFile copies src to dst, replacing dst and keeping src's permissions.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", dst, err)
	}
	return nil
}
