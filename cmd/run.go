// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/hashicorp/go-sweep"
)

// CLI are the cli parameters for the gosweep binary
type CLI struct {
	Directory         string           `arg:"" optional:"" default:"." help:"Directory to sweep for archives." type:"existingdir"`
	DenyTraversal     bool             `short:"D" help:"Refuse entries whose path escapes the directory instead of warning."`
	DryRun            bool             `short:"n" help:"List matching archives without extracting or deleting them."`
	Keep              bool             `short:"k" help:"Extract archives but keep them on disk."`
	MaxExtractionSize int64            `optional:"" default:"-1" help:"Maximum extraction size per archive (in bytes). (disable check: -1)"`
	MaxFiles          int64            `optional:"" default:"-1" help:"Maximum number of entries per archive. (disable check: -1)"`
	MaxInputSize      int64            `optional:"" default:"-1" help:"Maximum size per input archive (in bytes). (disable check: -1)"`
	NoOverwrite       bool             `short:"O" help:"Fail instead of overwriting existing files."`
	NoUntar           bool             `optional:"" help:"Do not untar compressed tar archives after decompression."`
	Telemetry         bool             `short:"T" optional:"" default:"false" help:"Log telemetry data after each archive."`
	Types             []string         `short:"t" default:"zip" help:"Archive extensions to sweep (case-sensitive, without leading dot)."`
	Verbose           bool             `short:"v" optional:"" help:"Verbose logging."`
	Version           kong.VersionFlag `short:"V" optional:"" help:"Print release version information."`
}

// exit codes of the gosweep binary
const (
	exitOK         = 0 // all archives extracted and deleted
	exitNoArchives = 1 // nothing to do
	exitFailure    = 2 // extraction or filesystem error
)

// Run is the entrypoint into gosweep as a cli tool. The returned value is
// the process exit code.
func Run(version, commit, date string) int {
	ctx := context.Background()
	var cli CLI
	kong.Parse(&cli,
		kong.Description("Extract all archives in a directory and delete them afterwards"),
		kong.UsageOnError(),
		kong.Vars{
			"version": fmt.Sprintf("%s (%s), commit %s, built at %s", filepath.Base(os.Args[0]), version, commit, date),
		},
	)

	// Check for verbose output
	logLevel := slog.LevelInfo
	if cli.Verbose {
		logLevel = slog.LevelDebug
	}

	// setup logger, lifecycle output goes to stdout
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))

	// setup telemetry hook
	telemetryToLog := func(ctx context.Context, td *sweep.TelemetryData) {
		if cli.Telemetry {
			logger.Info("archive processed", "telemetry", td)
		}
	}

	// process cli params
	cfg := sweep.NewConfig(
		sweep.WithArchiveExtensions(cli.Types...),
		sweep.WithDenyPathTraversal(cli.DenyTraversal),
		sweep.WithDryRun(cli.DryRun),
		sweep.WithKeepArchives(cli.Keep),
		sweep.WithLogger(logger),
		sweep.WithMaxExtractionSize(cli.MaxExtractionSize),
		sweep.WithMaxFiles(cli.MaxFiles),
		sweep.WithMaxInputSize(cli.MaxInputSize),
		sweep.WithNoUntarAfterDecompression(cli.NoUntar),
		sweep.WithOverwrite(!cli.NoOverwrite),
		sweep.WithTelemetryHook(telemetryToLog),
	)

	// sweep the directory
	if _, err := sweep.Run(ctx, cli.Directory, cfg); err != nil {

		// nothing to do is a distinguished outcome, not a failure
		if errors.Is(err, sweep.ErrNoArchives) {
			return exitNoArchives
		}

		fmt.Fprintf(os.Stderr, "error during sweep: %s\n", err)
		return exitFailure
	}

	return exitOK
}
