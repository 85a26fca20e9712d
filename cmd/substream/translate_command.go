package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"substream/internal/config"
	"substream/internal/logging"
	"substream/internal/subtitles"
	"substream/internal/translate"
)

// newTranslateCommand rewrites one SRT file in another language,
// in-process.
func newTranslateCommand(cmdCtx *commandContext) *cobra.Command {
	var outputFlag string
	var sourceLang string
	var targetLang string
	cmd := &cobra.Command{
		Use:   "translate <subtitle-file>",
		Short: "Translate an SRT file without the daemon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			input, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			if sourceLang == "" {
				sourceLang = cfg.Translation.SourceLanguage
			}
			if targetLang == "" {
				targetLang = cfg.Translation.TargetLanguage
			}
			output := outputFlag
			if output == "" {
				output = subtitles.TranslatedSiblingPath(input, targetLang)
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

			cache := translate.NewCache(cfg.Translation.CachePath, logger)
			client, err := translate.NewClient(translate.Options{
				Endpoint:     cfg.Translation.Endpoint,
				Source:       sourceLang,
				Target:       targetLang,
				ChunkBytes:   cfg.Translation.ChunkBytes,
				RequestDelay: time.Duration(cfg.Translation.RequestDelayMS) * time.Millisecond,
				Timeout:      time.Duration(cfg.Translation.TimeoutSeconds) * time.Second,
			}, cache, logger)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			gate := logging.NewProgressGate()
			err = client.TranslateFile(ctx, input, output, func(percent float64) {
				if gate.ShouldEmit(percent) {
					cmd.PrintErrf("\r%3.0f%%", percent)
				}
			})
			cmd.PrintErrln()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output path (default: <input>.<lang>.srt)")
	cmd.Flags().StringVar(&sourceLang, "from", "", "Source language (default: from config)")
	cmd.Flags().StringVar(&targetLang, "to", "", "Target language (default: from config)")
	return cmd
}
