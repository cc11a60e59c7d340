// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package sweep

import (
	"context"
	"fmt"
	"os"
)

// Summary holds the result counts of a sweep run.
type Summary struct {
	// ArchivesFound is the number of archives discovered at the start of the run
	ArchivesFound int64 `json:"archives_found"`

	// ArchivesProcessed is the number of archives fully extracted and deleted
	ArchivesProcessed int64 `json:"archives_processed"`
}

// Run discovers all archives in root, extracts each one into root and
// deletes the original archive after successful extraction. Archives are
// processed strictly sequentially in ascending lexicographic order of their
// file name.
//
// If no archive is found, [ErrNoArchives] is returned. Any extraction or
// filesystem error aborts the run at the point it occurs; the failing
// archive is never deleted and archives processed before it stay extracted
// and deleted. One log line is emitted per lifecycle event (discovery,
// extraction, deletion, summary) through the configured logger.
func Run(ctx context.Context, root string, cfg *Config) (*Summary, error) {
	if cfg == nil {
		cfg = NewConfig()
	}

	archives, err := Discover(root, cfg)
	if err != nil {
		return nil, fmt.Errorf("cannot discover archives: %w", err)
	}

	summary := &Summary{ArchivesFound: int64(len(archives))}
	if len(archives) == 0 {
		cfg.Logger().Info("no archives found", "dir", root)
		return summary, ErrNoArchives
	}

	t := NewTargetDisk()
	for _, archive := range archives {
		// check if context is canceled
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		cfg.Logger().Info("extracting archive", "name", archive.Name())
		if cfg.DryRun() {
			cfg.Logger().Info("dry run, archive left untouched", "name", archive.Name())
			continue
		}

		if err := sweepArchive(ctx, t, root, archive, cfg); err != nil {
			return summary, err
		}
		summary.ArchivesProcessed++
	}

	cfg.Logger().Info("finished sweep", "processed", summary.ArchivesProcessed)
	return summary, nil
}

// sweepArchive extracts one archive into root and deletes it afterwards.
// The archive reader is closed on all paths before any deletion is
// attempted. If the extraction fails, the archive is left on disk.
func sweepArchive(ctx context.Context, t Target, root string, archive Archive, cfg *Config) error {
	src, err := os.Open(archive.Path())
	if err != nil {
		return fmt.Errorf("cannot open archive %s: %w", archive.Name(), err)
	}

	err = unpackArchive(ctx, t, root, src, archive.Type(), cfg)

	// release the archive handle before deletion, on all paths
	cerr := src.Close()
	if err != nil {
		return fmt.Errorf("cannot extract archive %s: %w", archive.Name(), err)
	}
	if cerr != nil {
		return fmt.Errorf("cannot close archive %s: %w", archive.Name(), cerr)
	}
	cfg.Logger().Info("extracted archive", "name", archive.Name())

	if cfg.KeepArchives() {
		cfg.Logger().Info("keeping archive", "name", archive.Name())
		return nil
	}

	if err := t.Remove(archive.Path()); err != nil {
		return fmt.Errorf("cannot remove archive %s: %w", archive.Name(), err)
	}
	cfg.Logger().Info("removed archive", "name", archive.Name())

	return nil
}
