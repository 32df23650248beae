package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"descant/internal/config"
	"descant/internal/detection"
	"descant/internal/extraction"
	"descant/internal/queue"
)

func newSegmentsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "segments <video-file>",
		Short: "Print the non-dialogue windows detected in a video",
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

				plans, err := item.Windows()
				if err != nil || len(plans) == 0 {
					extractor := extraction.NewExtractor(cfg, store, logger)
					detector := detection.NewDetector(cfg, store, logger)
					if err := extractor.Prepare(cmd.Context(), item); err != nil {
						return err
					}
					if err := extractor.Execute(cmd.Context(), item); err != nil {
						return err
					}
					if err := detector.Prepare(cmd.Context(), item); err != nil {
						return err
					}
					if err := detector.Execute(cmd.Context(), item); err != nil {
						return err
					}
					item.Status = queue.StatusDetected
					if err := store.Update(cmd.Context(), item); err != nil {
						return err
					}
					plans, err = item.Windows()
					if err != nil {
						return err
					}
				}

				if len(plans) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No non-dialogue windows found")
					return nil
				}
				rows := make([][]string, 0, len(plans))
				for i, plan := range plans {
					rows = append(rows, []string{
						fmt.Sprintf("%d", i+1),
						fmt.Sprintf("%.2f", plan.Start),
						fmt.Sprintf("%.2f", plan.End),
						fmt.Sprintf("%.2f", plan.Duration()),
					})
				}
				table := renderTable(
					[]string{"#", "Start", "End", "Duration"},
					rows,
					[]columnAlignment{alignRight, alignRight, alignRight, alignRight},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}
}
