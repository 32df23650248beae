package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"descant/internal/config"
	"descant/internal/deps"
	"descant/internal/queue"
	"descant/internal/workflow"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "process <video-file>",
		Short: "Run a single video through the full description pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				source, err := filepath.Abs(args[0])
				if err != nil {
					return fmt.Errorf("resolve source path: %w", err)
				}
				if _, err := os.Stat(source); err != nil {
					return fmt.Errorf("source file: %w", err)
				}
				if missing := deps.MissingRequired(deps.CheckBinaries(deps.Requirements(cfg))); len(missing) > 0 {
					for _, status := range missing {
						fmt.Fprintf(cmd.ErrOrStderr(), "missing dependency: %s (%s)\n", status.Name, status.Detail)
					}
					return fmt.Errorf("missing required dependencies; see `descant deps`")
				}

				logger, err := ctx.newLogger(cfg)
				if err != nil {
					return err
				}

				item, err := store.FindBySourcePath(cmd.Context(), source)
				if err != nil {
					return err
				}
				if item == nil {
					item, err = store.NewSource(cmd.Context(), source)
					if err != nil {
						return err
					}
				}

				runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				manager := workflow.NewManager(cfg, store, logger, workflow.DefaultStages(cfg, store, logger))
				if err := manager.RunUntilIdle(runCtx); err != nil {
					return err
				}

				final, err := store.GetByID(cmd.Context(), item.ID)
				if err != nil {
					return err
				}
				switch final.Status {
				case queue.StatusCompleted:
					fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", final.FinalFile)
					return nil
				case queue.StatusReview:
					return fmt.Errorf("needs review: %s", final.ReviewReason)
				default:
					return fmt.Errorf("processing ended with status %s: %s", final.Status, final.ErrorMessage)
				}
			})
		},
	}
}
