package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"substream/internal/asr"
	"substream/internal/config"
	"substream/internal/decode"
	"substream/internal/logging"
	"substream/internal/pipeline"
	"substream/internal/subtitles"
	"substream/internal/vad"
)

// newTranscribeCommand runs one file through the pipeline in-process,
// without a daemon.
func newTranscribeCommand(cmdCtx *commandContext) *cobra.Command {
	var outputFlag string
	cmd := &cobra.Command{
		Use:   "transcribe <media-file>",
		Short: "Transcribe one file to SRT without the daemon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			source, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			output := outputFlag
			if output == "" {
				output = subtitles.SiblingPath(source)
			} else if output, err = config.ExpandPath(output); err != nil {
				return err
			}

			logger, err := logging.New(logging.Options{
				Level:       cfg.Logging.Level,
				Format:      cfg.Logging.Format,
				OutputPaths: []string{"stdout"},
			})
			if err != nil {
				return err
			}

			asr.RegisterCommandBackends(cfg.Models.Recognizer)
			recognizer, err := asr.NewRecognizer(asr.ModelConfig{
				Variant:  asr.Variant(cfg.Models.Variant),
				Dir:      cfg.Models.Dir,
				Language: cfg.Models.Language,
			})
			if err != nil {
				return err
			}
			defer recognizer.Close()

			gate := logging.NewProgressGate()
			p := pipeline.New(pipeline.Options{
				SampleRate:    cfg.Audio.SampleRate,
				WindowSamples: cfg.Audio.WindowSamples,
				BufferSeconds: cfg.Audio.BufferSeconds,
				Merge: subtitles.MergeOptions{
					MaxPause:    cfg.Merge.MaxPauseSeconds,
					MaxDuration: cfg.Merge.MaxDurationSeconds,
				},
				StopGrace: time.Duration(cfg.Workflow.GracePeriodSeconds) * time.Second,
				Start: func(ctx context.Context, src string) (pipeline.Source, error) {
					return decode.Start(ctx, src, decode.Options{
						Binary:     cfg.FFmpegBinary(),
						SampleRate: cfg.Audio.SampleRate,
					})
				},
				Probe: func(ctx context.Context, src string) (float64, error) {
					return decode.Duration(ctx, cfg.FFprobeBinary(), src)
				},
				Engine: vad.NewEnergyGate(vad.EnergyGateOptions{}),
				Recog:  recognizer,
				Logger: logger,
				Progress: func(pr pipeline.Progress) {
					if gate.ShouldEmit(pr.Percent) {
						cmd.PrintErrf("\r%3.0f%% (%.1fs / %.1fs, %.1fx)",
							pr.Percent, pr.ProcessedSeconds, pr.TotalSeconds, pr.Speed)
					}
				},
			})

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			if err := p.Run(ctx, source, output); err != nil {
				cmd.PrintErrln()
				return err
			}
			cmd.PrintErrln()
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output subtitle path (default: next to the source)")
	return cmd
}
