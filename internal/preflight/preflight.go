package preflight

import (
	"context"

	"recoder/internal/config"
	"recoder/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the filesystem checks for cfg. Output roots are checked
// through their nearest existing ancestor since the lifecycle creates them.
func RunAll(_ context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	results := []Result{
		CheckDirectoryAccess("Input directory", cfg.Paths.InputDir),
		CheckWritableAncestor("Encoded directory", cfg.Paths.EncodedDir),
		CheckWritableAncestor("Archive directory", cfg.Paths.ArchiveDir),
		CheckWritableAncestor("State directory", cfg.Paths.StateDir),
	}
	if cfg.Encoding.MinFreeGiB > 0 {
		results = append(results, CheckFreeSpace("Encoded free space", cfg.Paths.EncodedDir, uint64(cfg.Encoding.MinFreeGiB)<<30))
	}
	results = append(results, CheckSameFilesystem("Archive moves", cfg.Paths.InputDir, cfg.Paths.ArchiveDir))
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, result := range results {
		if !result.Passed {
			failed = append(failed, result)
		}
	}
	return failed
}

// CheckSystemDeps evaluates the external binaries the encoder and prober use.
func CheckSystemDeps(ctx context.Context, cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Required for encoding",
			VersionArg:  "-version",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Required for media inspection",
			VersionArg:  "-version",
		},
	}
	return deps.CheckBinaries(ctx, requirements)
}
