package repair

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/vvka-141/flywaysum/internal/checksum"
	"github.com/vvka-141/flywaysum/internal/files/filesystem"
	"github.com/vvka-141/flywaysum/pkg/flywaysum"
)

// Searcher finds a comment that gives content the target checksum when
// appended as its last line. *search.Forcer implements it.
type Searcher interface {
	FindMatchingComment(ctx context.Context, content []byte, target flywaysum.Checksum) (comment string, found bool, err error)
}

// Options controls a single repair.
type Options struct {
	// BackupSuffix is appended to the path of the original file.
	BackupSuffix string
	// DryRun stops after verification; nothing is written.
	DryRun bool
}

// Result describes what Repair did.
type Result struct {
	Path           string
	Target         flywaysum.Checksum
	Original       flywaysum.Checksum
	AlreadyMatches bool
	Comment        string
	Repaired       flywaysum.Checksum
	BackupPath     string
	Written        bool
}

// Service repairs migration files.
type Service struct {
	fs         filesystem.FileSystemProvider
	calculator checksum.Calculator
	searcher   Searcher
	approver   flywaysum.Approver
	logger     flywaysum.Logger
}

// NewService creates a Service. Panics if any dependency is nil.
func NewService(
	fsProvider filesystem.FileSystemProvider,
	calculator checksum.Calculator,
	searcher Searcher,
	approver flywaysum.Approver,
	logger flywaysum.Logger,
) *Service {
	if fsProvider == nil {
		panic("fsProvider cannot be nil")
	}
	if calculator == nil {
		panic("calculator cannot be nil")
	}
	if searcher == nil {
		panic("searcher cannot be nil")
	}
	if approver == nil {
		panic("approver cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Service{
		fs:         fsProvider,
		calculator: calculator,
		searcher:   searcher,
		approver:   approver,
		logger:     logger,
	}
}

// Checksum reads path and returns its Flyway checksum.
func (s *Service) Checksum(path string) (flywaysum.Checksum, error) {
	content, err := s.fs.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", path, err)
	}
	sum, err := s.calculator.Calculate(content)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	return sum, nil
}

// Repair makes the file at path produce target.
//
// A file that already matches is left untouched. Otherwise the returned
// error wraps flywaysum.ErrNotFound when no comment matches,
// flywaysum.ErrVerificationFailed when the rewritten content does not
// checksum to target, and flywaysum.ErrApprovalDenied when the approver
// declines. In all of those cases the file is unchanged.
func (s *Service) Repair(ctx context.Context, path string, target flywaysum.Checksum, opts Options) (Result, error) {
	if opts.BackupSuffix == "" {
		opts.BackupSuffix = flywaysum.DefaultBackupSuffix
	}
	result := Result{Path: path, Target: target}

	content, err := s.fs.ReadFile(path)
	if err != nil {
		return result, fmt.Errorf("failed to read %s: %w", path, err)
	}
	original, err := s.calculator.Calculate(content)
	if err != nil {
		return result, fmt.Errorf("%s: %w", path, err)
	}
	result.Original = original

	if original == target {
		result.AlreadyMatches = true
		return result, nil
	}

	s.logger.Verbose("searching comment for %s: current %s, target %s", path, original, target)
	comment, found, err := s.searcher.FindMatchingComment(ctx, TrimTrailingNewlines(content), target)
	if err != nil {
		return result, err
	}
	if !found {
		return result, fmt.Errorf("%w: no printable comment for %s produces %s", flywaysum.ErrNotFound, path, target)
	}
	result.Comment = comment

	modified := AppendComment(content, comment)
	repaired, err := s.calculator.Calculate(modified)
	if err != nil {
		return result, fmt.Errorf("%s: %w", path, err)
	}
	result.Repaired = repaired
	if repaired != target {
		return result, fmt.Errorf("%w: %s with %q checksums to %s, want %s",
			flywaysum.ErrVerificationFailed, path, comment, repaired, target)
	}

	result.BackupPath = path + opts.BackupSuffix
	if opts.DryRun {
		return result, nil
	}

	approved, err := s.approver.RequestApproval(ctx, path)
	if err != nil {
		return result, err
	}
	if !approved {
		return result, fmt.Errorf("%w: %s was not modified", flywaysum.ErrApprovalDenied, path)
	}

	if err := s.write(path, result.BackupPath, modified); err != nil {
		return result, err
	}
	result.Written = true
	return result, nil
}

// write moves path to backup and writes modified in its place, keeping the
// original permissions. If the write fails the backup is moved back.
func (s *Service) write(path, backup string, modified []byte) error {
	info, err := s.fs.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if _, err := s.fs.Stat(backup); err == nil {
		return fmt.Errorf("backup %s: %w", backup, fs.ErrExist)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to stat %s: %w", backup, err)
	}

	if err := s.fs.Rename(path, backup); err != nil {
		return fmt.Errorf("failed to back up %s: %w", path, err)
	}
	s.logger.Verbose("original backed up to %s", backup)

	if err := s.fs.WriteFile(path, modified, info.Mode().Perm()); err != nil {
		if restoreErr := s.fs.Rename(backup, path); restoreErr != nil {
			return fmt.Errorf("failed to write %s: %w (restoring backup also failed: %v)", path, err, restoreErr)
		}
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
