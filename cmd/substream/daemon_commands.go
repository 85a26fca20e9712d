package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"substream/internal/ipc"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Status()
				if err != nil {
					return err
				}
				cmd.Println(renderStatus(resp.Status))
				return nil
			})
		},
	}
}

func renderStatus(s ipc.StatusSnapshot) string {
	rows := [][]string{
		{"PID", fmt.Sprintf("%d", s.PID)},
		{"Running", fmt.Sprintf("%t", s.Running)},
		{"Socket", s.SocketPath},
	}
	if s.WatchDir != "" {
		rows = append(rows, []string{"Watch dir", s.WatchDir})
	}
	statuses := make([]string, 0, len(s.QueueStats))
	for status := range s.QueueStats {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)
	for _, status := range statuses {
		rows = append(rows, []string{"Jobs " + status, fmt.Sprintf("%d", s.QueueStats[status])})
	}
	return renderTable([]string{"Field", "Value"}, rows, []columnAlignment{alignLeft, alignLeft})
}

func newStopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Ask the daemon to shut down",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Shutdown()
				if err != nil {
					return err
				}
				if resp.Stopping {
					cmd.Println("daemon is shutting down")
				}
				return nil
			})
		},
	}
}

func newEventsCommand(ctx *commandContext) *cobra.Command {
	var after int64
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Print job events newer than a sequence number",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Events(after)
				if err != nil {
					return err
				}
				for _, ev := range resp.Events {
					switch ev.Type {
					case "progress":
						cmd.Printf("%d %s %s %s %.0f%%\n",
							ev.Seq, ev.Time.Format("15:04:05"), ev.JobID, ev.Type, ev.Percent)
					default:
						line := fmt.Sprintf("%d %s %s %s %s",
							ev.Seq, ev.Time.Format("15:04:05"), ev.JobID, ev.Type, ev.Status)
						if ev.Message != "" {
							line += " " + ev.Message
						}
						cmd.Println(line)
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&after, "after", 0, "Only show events with a larger sequence number")
	return cmd
}
