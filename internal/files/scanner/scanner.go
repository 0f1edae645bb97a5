package scanner

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/vvka-141/flywaysum/internal/checksum"
	"github.com/vvka-141/flywaysum/internal/files/filesystem"
	"github.com/vvka-141/flywaysum/pkg/flywaysum"
)

// Scanner discovers migrations and checksums them.
// Scanner is safe for concurrent use as long as the filesystem provider is.
type Scanner struct {
	calculator checksum.Calculator
	fsProvider filesystem.FileSystemProvider
}

// NewScanner creates a scanner over the OS filesystem.
// Panics if calculator is nil.
func NewScanner(calculator checksum.Calculator) *Scanner {
	return NewScannerWithFS(calculator, filesystem.NewOSFileSystem())
}

// NewScannerWithFS creates a scanner with a custom filesystem provider.
// Panics if calculator or fsProvider is nil.
func NewScannerWithFS(calculator checksum.Calculator, fsProvider filesystem.FileSystemProvider) *Scanner {
	if calculator == nil {
		panic("calculator cannot be nil")
	}
	if fsProvider == nil {
		panic("fsProvider cannot be nil")
	}
	return &Scanner{
		calculator: calculator,
		fsProvider: fsProvider,
	}
}

// ScanDirectory walks sourcePath and checksums every .sql file below it.
//
// Files that fail are skipped and their errors are returned as a
// *multierror.Error alongside the files that succeeded. A directory that
// cannot be opened is returned as a plain error with an empty result.
func (s *Scanner) ScanDirectory(sourcePath string) (flywaysum.ScanResult, error) {
	dir, err := s.fsProvider.Open(sourcePath)
	if err != nil {
		return flywaysum.ScanResult{}, fmt.Errorf("failed to open directory: %w", err)
	}

	var (
		files []flywaysum.MigrationFile
		errs  *multierror.Error
	)

	err = dir.Walk(func(file filesystem.File, walkErr error) error {
		if walkErr != nil {
			errs = multierror.Append(errs, fmt.Errorf("error walking path: %w", walkErr))
			return nil
		}
		if file.Info().IsDir() || !IsSQLFile(file.Info().Name()) {
			return nil
		}

		content, err := file.ReadContent()
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: failed to read file: %w", file.RelativePath(), err))
			return nil
		}

		migration, err := s.describe(file.Path(), content)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", file.RelativePath(), err))
			return nil
		}
		migration.RelativePath = file.RelativePath()
		files = append(files, migration)
		return nil
	})
	if err != nil {
		return flywaysum.ScanResult{Files: files}, err
	}

	return flywaysum.ScanResult{Files: files}, errs.ErrorOrNil()
}

// ScanFile checksums a single file regardless of its name.
func (s *Scanner) ScanFile(filePath string) (flywaysum.MigrationFile, error) {
	info, err := s.fsProvider.Stat(filePath)
	if err != nil {
		return flywaysum.MigrationFile{}, err
	}
	if info.IsDir() {
		return flywaysum.MigrationFile{}, fmt.Errorf("%s is a directory", filePath)
	}

	content, err := s.fsProvider.ReadFile(filePath)
	if err != nil {
		return flywaysum.MigrationFile{}, fmt.Errorf("failed to read %s: %w", filePath, err)
	}

	migration, err := s.describe(filePath, content)
	if err != nil {
		return flywaysum.MigrationFile{}, fmt.Errorf("%s: %w", filePath, err)
	}
	migration.RelativePath = info.Name()
	return migration, nil
}

func (s *Scanner) describe(filePath string, content []byte) (flywaysum.MigrationFile, error) {
	sum, err := s.calculator.Calculate(content)
	if err != nil {
		return flywaysum.MigrationFile{}, err
	}

	kind, version, description := ParseName(filePath)
	return flywaysum.MigrationFile{
		Path:        filePath,
		Kind:        kind,
		Version:     version,
		Description: description,
		Size:        int64(len(content)),
		Checksum:    sum,
	}, nil
}
