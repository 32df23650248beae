package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"descant/internal/config"
	"descant/internal/queue"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the work queue",
	}

	queueCmd.AddCommand(newQueueAddCommand(ctx))
	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueStatusCommand(ctx))
	queueCmd.AddCommand(newQueueRetryCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))
	queueCmd.AddCommand(newQueueRemoveCommand(ctx))

	return queueCmd
}

func newQueueAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <video-file>...",
		Short: "Add video files to the queue",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				for _, arg := range args {
					source, err := filepath.Abs(arg)
					if err != nil {
						return fmt.Errorf("resolve %s: %w", arg, err)
					}
					existing, err := store.FindBySourcePath(cmd.Context(), source)
					if err != nil {
						return err
					}
					if existing != nil {
						fmt.Fprintf(cmd.OutOrStdout(), "Already queued as #%d: %s\n", existing.ID, source)
						continue
					}
					item, err := store.NewSource(cmd.Context(), source)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Queued #%d: %s\n", item.ID, source)
				}
				return nil
			})
		},
	}
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var listStatuses []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queue items",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				var statuses []queue.Status
				for _, raw := range listStatuses {
					status, ok := queue.ParseStatus(raw)
					if !ok {
						return fmt.Errorf("unknown status %q", raw)
					}
					statuses = append(statuses, status)
				}

				items, err := store.List(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}

				rows := make([][]string, 0, len(items))
				for _, item := range items {
					detail := item.ProgressMessage
					if item.ErrorMessage != "" {
						detail = item.ErrorMessage
					}
					rows = append(rows, []string{
						strconv.FormatInt(item.ID, 10),
						item.Title,
						string(item.Status),
						item.CreatedAt.Local().Format(time.DateTime),
						truncate(detail, 60),
					})
				}
				table := renderTable(
					[]string{"ID", "Title", "Status", "Created", "Detail"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&listStatuses, "status", nil, "Filter by status (repeatable)")
	return cmd
}

func newQueueStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show queue status summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				summary, err := store.Health(cmd.Context())
				if err != nil {
					return err
				}
				if summary.Total == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}
				rows := [][]string{
					{"pending", strconv.Itoa(summary.Pending)},
					{"processing", strconv.Itoa(summary.Processing)},
					{"review", strconv.Itoa(summary.Review)},
					{"failed", strconv.Itoa(summary.Failed)},
					{"completed", strconv.Itoa(summary.Completed)},
					{"total", strconv.Itoa(summary.Total)},
				}
				table := renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}
}

func newQueueRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry [item-id]...",
		Short: "Reset failed items so they run again",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				ids := make([]int64, 0, len(args))
				for _, arg := range args {
					id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
					if err != nil {
						return fmt.Errorf("invalid item id %q", arg)
					}
					ids = append(ids, id)
				}
				count, err := store.RetryFailed(cmd.Context(), ids...)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reset %d item(s) to pending\n", count)
				return nil
			})
		},
	}
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	var clearFailed bool
	var clearAll bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove completed items from the queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				var count int64
				var err error
				switch {
				case clearAll:
					count, err = store.Clear(cmd.Context())
				case clearFailed:
					count, err = store.ClearFailed(cmd.Context())
				default:
					count, err = store.ClearCompleted(cmd.Context())
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d item(s)\n", count)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&clearFailed, "failed", false, "Remove failed items instead of completed ones")
	cmd.Flags().BoolVar(&clearAll, "all", false, "Remove every item regardless of status")
	return cmd
}

func newQueueRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <item-id>",
		Short: "Remove a single item from the queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				id, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
				if err != nil {
					return fmt.Errorf("invalid item id %q", args[0])
				}
				removed, err := store.Remove(cmd.Context(), id)
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("item %d not found", id)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed item %d\n", id)
				return nil
			})
		},
	}
}

func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 3 || len(value) <= limit {
		return value
	}
	return value[:limit-3] + "..."
}
