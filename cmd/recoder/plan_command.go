package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"recoder/internal/encoding"
	"recoder/internal/lifecycle"
	"recoder/internal/media/ffprobe"
	"recoder/internal/media/hdr"
	"recoder/internal/media/streams"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "plan <file>",
		Short: "Show the streams and ffmpeg command recoder would use for a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			source, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}

			prober := ffprobe.Client{Binary: cfg.FFprobeBinary()}
			raw, err := prober.Streams(cmd.Context(), source)
			if err != nil {
				return fmt.Errorf("probe %s: %w", source, err)
			}
			catalog := streams.Partition(raw)
			builder := encoding.NewBuilder(encoding.OptionsFromConfig(cfg))

			var meta *hdr.Metadata
			if builder.NeedsHDRMetadata(catalog) {
				frame, err := prober.FirstFrame(cmd.Context(), source)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: hdr frame probe failed: %v\n", err)
				} else {
					extracted := hdr.Extract(frame)
					meta = &extracted
				}
			}
			plan := builder.Build(catalog, meta)

			output := "<output>"
			layout := lifecycle.Layout{
				InputRoot:   cfg.Paths.InputDir,
				EncodedRoot: cfg.Paths.EncodedDir,
				ArchiveRoot: cfg.Paths.ArchiveDir,
				DateSubdir:  cfg.Archive.DateSubdir,
			}
			paths, layoutErr := layout.Plan(source, time.Now())
			if layoutErr == nil {
				output = paths.Temp
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderStreams(catalog, plan))
			fmt.Fprintf(out, "Maps:     %s\n", strings.Join(plan.MapSpecs(), " "))
			if plan.AudioFallback {
				fmt.Fprintln(out, "Audio:    no stream matched the configured languages; keeping all")
			}
			if plan.SubtitleFallback {
				fmt.Fprintln(out, "Subtitle: no stream matched the configured languages; keeping all")
			}
			switch {
			case plan.HDR != nil:
				fmt.Fprintf(out, "HDR:      %s\n", plan.HDR.X265Params)
			case plan.HDRSkipped != nil:
				fmt.Fprintf(out, "HDR:      skipped (%v)\n", plan.HDRSkipped)
			}
			if layoutErr == nil {
				fmt.Fprintf(out, "Final:    %s\n", paths.Final)
				fmt.Fprintf(out, "Archive:  %s\n", paths.Archive)
			}
			fmt.Fprintf(out, "Command:  %s\n", plan.Command(cfg.FFmpegBinary(), source, output))
			return nil
		},
	}
}

func renderStreams(catalog streams.Catalog, plan encoding.Plan) string {
	selected := make(map[string]bool, len(plan.Selectors))
	for _, spec := range plan.MapSpecs() {
		selected[spec] = true
	}
	var rows [][]string
	if catalog.Video != nil {
		rows = append(rows, streamRow(*catalog.Video, "0:V", selected["0:V"]))
	}
	for _, record := range catalog.Audio {
		spec := "0:a:" + strconv.Itoa(record.Ordinal)
		rows = append(rows, streamRow(record, spec, selected[spec]))
	}
	for _, record := range catalog.Subtitle {
		spec := "0:s:" + strconv.Itoa(record.Ordinal)
		rows = append(rows, streamRow(record, spec, selected[spec]))
	}
	return renderTable(
		[]string{"Map", "Kind", "Codec", "Language", "Channels", "Title", "Keep"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
	)
}

func streamRow(record streams.Record, spec string, keep bool) []string {
	channels := ""
	if record.Channels > 0 {
		channels = strconv.Itoa(record.Channels)
	}
	language := record.Language
	if language == "" {
		language = "-"
	}
	return []string{spec, string(record.Kind), record.Codec, language, channels, record.Title, yesNo(keep)}
}
