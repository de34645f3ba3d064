package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"daycard/internal/capture"
	appLog "daycard/internal/log"
	"daycard/internal/refresh"
	"daycard/internal/web"
)

func newServeCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web card and the refresh scheduler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.close()

			// CLI --listen overrides config file listen if provided.
			if listen != "" {
				a.cfg.Listen = listen
			}

			appLog.Info("daycard starting",
				"version", version,
				"listen", a.cfg.Listen,
				"timezone", a.loc.String(),
				"refresh", a.cfg.RefreshCron,
				"overlap_policy", a.cfg.Layout.OverlapPolicy,
				"capture", a.cfg.Capture.Enabled,
			)

			src, err := a.buildSource()
			if err != nil {
				return err
			}
			srv := web.NewServer(a.cfg, src)

			sched, err := refresh.New(a.cfg.RefreshCron)
			if err != nil {
				return err
			}
			sched.Add("invalidate", func(context.Context) error {
				srv.Invalidate()
				return nil
			})
			if a.cfg.Capture.Enabled {
				sched.Add("capture", func(ctx context.Context) error {
					return capture.CaptureCardPNG(ctx, captureOptions(a))
				})
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := sched.Start(); err != nil {
				return err
			}
			defer sched.Stop()

			err = srv.Run(ctx)
			appLog.Info("daycard exiting")
			return err
		},
	}
	cmd.Flags().StringVarP(&listen, "listen", "l", "", "HTTP listen address (overrides config if set)")
	return cmd
}
