package tuto

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// BundleName is the outer feedback bundle written by Pack.
const BundleName = "feedbacks"

// ZipOptions selects the submission root, the base name of the per-student
// feedback archives and the directory of the outer bundle. Empty Name uses
// the configured feedback name; empty OutDir uses the parent of Root.
type ZipOptions struct {
	Root   string
	Name   string
	OutDir string
}

// PackResult describes a finished Pack run.
type PackResult struct {
	BundlePath string
	Packed     int // submissions that received a feedback archive
	Skipped    int // submissions without loose files
}

// Pack bundles the loose feedback files of every submission folder under
// opts.Root into <name>.zip inside that folder and deletes the loose
// entries, leaving only archives behind. The immediate entries of the root
// are then bundled into feedbacks.zip in the output directory. An entry
// named feedbacks is left out of both steps.
//
// Only archives directly inside a submission folder count as submissions.
// Archives inside loose subfolders are tutor material and go into the
// feedback archive with the rest of the folder.
//
// If any folder with loose entries already holds a file named <name>.zip,
// Pack fails with ErrFeedbackExists before anything is written. Loose
// entries are deleted only after their archive is written. A later failure
// leaves earlier folders packed and later ones untouched.
func (s *TutoService) Pack(opts ZipOptions) (*PackResult, error) {
	root, err := s.resolveDir(opts.Root)
	if err != nil {
		return nil, err
	}

	name := opts.Name
	if name == "" {
		name = s.cfg.Grading.FeedbackName
	}
	outDir := opts.OutDir
	if outDir == "" {
		outDir = filepath.Dir(root.String())
	}

	dirs, err := s.fsmgr.Subdirectories(root)
	if err != nil {
		return nil, fmt.Errorf("listing submissions: %w", err)
	}

	result := &PackResult{}
	var plans []packPlan
	for _, dir := range dirs {
		if dir.Base() == BundleName {
			continue
		}
		plan, err := s.planSubmission(dir.String(), name)
		if err != nil {
			return nil, err
		}
		if len(plan.loose) == 0 {
			s.logger.Debug("nothing to pack", "path", dir.String())
			result.Skipped++
			continue
		}
		plans = append(plans, plan)
	}

	for _, plan := range plans {
		if err := s.packSubmission(plan); err != nil {
			return nil, err
		}
		result.Packed++
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	bundle := filepath.Join(outDir, BundleName+s.cfg.Filesystem.ArchiveExtension)

	entries, err := os.ReadDir(root.String())
	if err != nil {
		return nil, fmt.Errorf("reading submission root: %w", err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.Name() == BundleName || entry.Name() == filepath.Base(bundle) {
			continue
		}
		paths = append(paths, filepath.Join(root.String(), entry.Name()))
	}

	n, err := s.archiver.Create(bundle, root.String(), paths)
	if err != nil {
		return nil, fmt.Errorf("creating feedback bundle: %w", err)
	}

	s.logger.Info("feedback packed", "bundle", bundle, "files", n, "packed", result.Packed, "skipped", result.Skipped)
	result.BundlePath = bundle
	return result, nil
}

// packPlan is the feedback archive of one submission folder and the loose
// entries that go into it.
type packPlan struct {
	dir   string
	dest  string
	loose []string
}

// planSubmission collects the non-archive entries of dir. It fails with
// ErrFeedbackExists when dir has loose entries and dest is already taken.
func (s *TutoService) planSubmission(dir, name string) (packPlan, error) {
	plan := packPlan{dir: dir, dest: filepath.Join(dir, name+s.cfg.Filesystem.ArchiveExtension)}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return plan, fmt.Errorf("reading directory: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() && s.archiver.IsArchive(entry.Name()) {
			continue
		}
		plan.loose = append(plan.loose, filepath.Join(dir, entry.Name()))
	}
	if len(plan.loose) == 0 {
		return plan, nil
	}

	if _, err := os.Lstat(plan.dest); err == nil {
		return plan, fmt.Errorf("%w: %s", ErrFeedbackExists, plan.dest)
	} else if !errors.Is(err, os.ErrNotExist) {
		return plan, fmt.Errorf("stat %s: %w", plan.dest, err)
	}
	return plan, nil
}

// packSubmission writes the feedback archive of plan and removes its loose entries.
func (s *TutoService) packSubmission(plan packPlan) error {
	if _, err := s.archiver.Create(plan.dest, plan.dir, plan.loose); err != nil {
		return fmt.Errorf("packing %s: %w", plan.dir, err)
	}

	for _, p := range plan.loose {
		if err := os.RemoveAll(p); err != nil {
			return fmt.Errorf("removing %s: %w", p, err)
		}
		s.logger.Debug("removed", "path", p)
	}
	return nil
}

// SealBundle encrypts the bundle at path into path+".age" and removes the
// plaintext. Returns the sealed path.
func (s *TutoService) SealBundle(path string, enc Encryptor) (string, error) {
	in, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening bundle: %w", err)
	}
	defer in.Close()

	sealed := path + ".age"
	out, err := os.OpenFile(sealed, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return "", fmt.Errorf("creating sealed bundle: %w", err)
	}

	if err := enc.Encrypt(in, out); err != nil {
		out.Close()
		os.Remove(sealed)
		return "", fmt.Errorf("encrypting bundle: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(sealed)
		return "", fmt.Errorf("closing sealed bundle: %w", err)
	}

	in.Close()
	if err := os.Remove(path); err != nil {
		return "", fmt.Errorf("removing plaintext bundle: %w", err)
	}

	s.logger.Info("bundle sealed", "path", sealed)
	return sealed, nil
}

// PublishBundle hands the bundle at path to pub under its base name.
func (s *TutoService) PublishBundle(path string, pub Publisher) error {
	if err := pub.ValidateSetup(); err != nil {
		return fmt.Errorf("publisher not ready: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening bundle: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat bundle: %w", err)
	}

	if err := pub.Put(filepath.Base(path), f, info.Size()); err != nil {
		return fmt.Errorf("publishing bundle: %w", err)
	}

	s.logger.Info("bundle published", "name", filepath.Base(path), "size", info.Size())
	return nil
}
