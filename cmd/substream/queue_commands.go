package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"substream/internal/config"
	"substream/internal/ipc"
	"substream/internal/jobs"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and modify the job queues",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newQueueListCommand(ctx))
	cmd.AddCommand(newQueueAddCommand(ctx))
	cmd.AddCommand(newQueueCancelCommand(ctx))
	cmd.AddCommand(newQueueCancelAllCommand(ctx))
	return cmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List known jobs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.List()
				if err != nil {
					return err
				}
				if len(resp.Jobs) == 0 {
					cmd.Println("no jobs")
					return nil
				}
				rows := make([][]string, 0, len(resp.Jobs))
				for _, job := range resp.Jobs {
					progress := ""
					if job.Status == jobs.StatusProcessing {
						progress = fmt.Sprintf("%.0f%%", job.Progress.Percent)
					}
					rows = append(rows, []string{
						shortID(job.ID),
						string(job.Kind),
						string(job.Status),
						progress,
						job.SourcePath,
					})
				}
				cmd.Println(renderTable(
					[]string{"ID", "Kind", "Status", "Progress", "Source"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft}))
				return nil
			})
		},
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func newQueueAddCommand(ctx *commandContext) *cobra.Command {
	var kindFlag string
	var outputFlag string
	cmd := &cobra.Command{
		Use:   "add <media-file>",
		Short: "Enqueue a transcription or translation job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			kind := jobs.Kind(kindFlag)
			switch kind {
			case jobs.KindTranscription, jobs.KindTranslation:
			default:
				return fmt.Errorf("unknown kind %q (transcription or translation)", kindFlag)
			}
			output := outputFlag
			if output != "" {
				if output, err = config.ExpandPath(output); err != nil {
					return err
				}
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Enqueue(kind, source, output)
				if err != nil {
					return err
				}
				cmd.Printf("enqueued %s job %s for %s\n",
					resp.Job.Kind, shortID(resp.Job.ID), resp.Job.SourcePath)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&kindFlag, "kind", string(jobs.KindTranscription), "Job kind: transcription or translation")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output subtitle path")
	return cmd
}

func newQueueCancelCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <job-id>",
		Short: "Cancel one job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Cancel(args[0])
				if err != nil {
					return err
				}
				if !resp.Cancelled {
					return fmt.Errorf("cancel failed: %s", resp.Message)
				}
				cmd.Println("cancelled")
				return nil
			})
		},
	}
}

func newQueueCancelAllCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel-all",
		Short: "Cancel every pending and running job",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.CancelAll()
				if err != nil {
					return err
				}
				cmd.Printf("cancelled %d job(s)\n", resp.Count)
				return nil
			})
		},
	}
}
