package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"clipd/internal/api"
)

// jobName accepts either a full job name or a bare clip identifier.
func jobName(arg string) string {
	trimmed := strings.TrimSpace(arg)
	if strings.HasPrefix(trimmed, "clip-") {
		return trimmed
	}
	return "clip-" + strings.ToLower(trimmed)
}

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var (
		clipID       string
		gameID       string
		videoID      string
		source       string
		destination  string
		start        string
		end          string
		ttl          int
		backoffLimit int
		jsonOut      bool
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a clip extraction job",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := api.SubmitRequest{
				ClipID:          clipID,
				GameID:          gameID,
				VideoID:         videoID,
				SourcePath:      source,
				DestinationPath: destination,
				StartOffset:     start,
				EndOffset:       end,
			}
			if cmd.Flags().Changed("ttl") {
				req.TTLSecondsAfterFinished = &ttl
			}
			if cmd.Flags().Changed("backoff-limit") {
				req.BackoffLimit = &backoffLimit
			}

			resp, err := ctx.client().Submit(cmd.Context(), req)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, resp)
			}
			if resp.Created {
				fmt.Fprintf(cmd.OutOrStdout(), "Submitted job %s (clip %s)\n", resp.Job.Name, resp.Job.ClipID)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Job %s already exists in phase %s\n", resp.Job.Name, resp.Job.Phase)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&clipID, "clip", "", "Clip identifier (required)")
	cmd.Flags().StringVar(&gameID, "game", "", "Game identifier (required)")
	cmd.Flags().StringVar(&videoID, "video", "", "Video identifier (required)")
	cmd.Flags().StringVar(&source, "source", "", "Source recording object path (required)")
	cmd.Flags().StringVar(&destination, "dest", "", "Destination object path (defaults to the clips prefix)")
	cmd.Flags().StringVar(&start, "start", "", "Clip start offset, mm:ss or hh:mm:ss (required)")
	cmd.Flags().StringVar(&end, "end", "", "Clip end offset, mm:ss or hh:mm:ss (required)")
	cmd.Flags().IntVar(&ttl, "ttl", 0, "Seconds to retain the job after it finishes")
	cmd.Flags().IntVar(&backoffLimit, "backoff-limit", 0, "Retry attempts before the job fails")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON output")

	_ = cmd.MarkFlagRequired("clip")
	_ = cmd.MarkFlagRequired("game")
	_ = cmd.MarkFlagRequired("video")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var (
		phases  []string
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List clip extraction jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			jobs, err := ctx.client().List(cmd.Context(), phases...)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, api.JobListResponse{Jobs: jobs})
			}
			if len(jobs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No jobs found.")
				return nil
			}

			rows := make([][]string, 0, len(jobs))
			for _, j := range jobs {
				rows = append(rows, []string{
					j.Name,
					j.ClipID,
					j.Phase,
					fmt.Sprintf("%d", j.Attempts),
					j.StartOffset + " - " + j.EndOffset,
					j.FailureReason,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"NAME", "CLIP", "PHASE", "ATTEMPTS", "RANGE", "REASON"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&phases, "phase", nil, "Filter by phase (Pending, Running, Succeeded, Failed)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON output")
	return cmd
}

func newDescribeCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "describe <job|clip-id>",
		Short: "Show one job in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := ctx.client().Describe(cmd.Context(), jobName(args[0]))
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, view)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name:         %s\n", view.Name)
			fmt.Fprintf(out, "Clip:         %s\n", view.ClipID)
			fmt.Fprintf(out, "Game/Video:   %s / %s\n", view.GameID, view.VideoID)
			fmt.Fprintf(out, "Source:       %s\n", view.SourcePath)
			fmt.Fprintf(out, "Destination:  %s\n", view.DestinationPath)
			fmt.Fprintf(out, "Range:        %s - %s\n", view.StartOffset, view.EndOffset)
			fmt.Fprintf(out, "Phase:        %s\n", view.Phase)
			fmt.Fprintf(out, "Attempts:     %d (limit %d)\n", view.Attempts, view.BackoffLimit)
			if view.FailureReason != "" {
				fmt.Fprintf(out, "Last error:   %s\n", view.FailureReason)
			}
			if view.StartedAt != "" {
				fmt.Fprintf(out, "Started:      %s\n", view.StartedAt)
			}
			if view.CompletedAt != "" {
				fmt.Fprintf(out, "Completed:    %s\n", view.CompletedAt)
			}
			if view.RetryAt != "" {
				fmt.Fprintf(out, "Next retry:   %s\n", view.RetryAt)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON output")
	return cmd
}

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <job|clip-id>",
		Short: "Cancel and remove a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := jobName(args[0])
			if err := ctx.client().Delete(cmd.Context(), name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted job %s\n", name)
			return nil
		},
	}
	return cmd
}

func newResubmitCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "resubmit <job|clip-id>",
		Short: "Delete a finished job and submit its clip again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := ctx.client()
			name := jobName(args[0])

			view, err := client.Describe(cmd.Context(), name)
			if err != nil {
				return err
			}
			if view.Phase == "Pending" || view.Phase == "Running" {
				return fmt.Errorf("job %s is still %s; delete it first if you want to restart it", name, view.Phase)
			}

			if err := client.Delete(cmd.Context(), name); err != nil {
				return err
			}
			resp, err := client.Submit(cmd.Context(), api.SubmitRequest{
				ClipID:                  view.ClipID,
				GameID:                  view.GameID,
				VideoID:                 view.VideoID,
				SourcePath:              view.SourcePath,
				DestinationPath:         view.DestinationPath,
				StartOffset:             view.StartOffset,
				EndOffset:               view.EndOffset,
				TTLSecondsAfterFinished: &view.TTLSecondsAfterFinished,
				BackoffLimit:            &view.BackoffLimit,
			})
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, resp)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Resubmitted job %s (clip %s)\n", resp.Job.Name, resp.Job.ClipID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON output")
	return cmd
}
