package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"descant/internal/config"
	"descant/internal/daemon"
	"descant/internal/queue"
	"descant/internal/workflow"
)

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Process queued items continuously until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				logger, err := ctx.newLogger(cfg)
				if err != nil {
					return err
				}

				manager := workflow.NewManager(cfg, store, logger, workflow.DefaultStages(cfg, store, logger))
				d, err := daemon.New(cfg, store, logger, manager)
				if err != nil {
					return err
				}

				for _, check := range manager.HealthChecks(cmd.Context()) {
					if !check.Ready {
						fmt.Fprintf(cmd.ErrOrStderr(), "warning: stage %s not ready: %s\n", check.Name, check.Detail)
					}
				}

				runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				if err := d.Start(runCtx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "descant daemon running; press Ctrl-C to stop")
				<-runCtx.Done()
				d.Stop()
				return nil
			})
		},
	}
}
