package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"knowledge-hub-be/internal/config"
	"knowledge-hub-be/pkg/events"
	pktNats "knowledge-hub-be/pkg/nats"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var watchSubject string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print note lifecycle events as they are published",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		sub, err := pktNats.NewSubscriber(cfg.Queue.NatsURL, cfg.Queue.PingTimeout)
		if err != nil {
			return fmt.Errorf("connect to %s: %w", cfg.Queue.NatsURL, err)
		}
		defer sub.Close()

		color.Cyan("Watching %s on %s (Ctrl+C to stop)", watchSubject, cfg.Queue.NatsURL)
		return sub.Subscribe(ctx, watchSubject, "", func(ctx context.Context, event events.Event) error {
			if jsonOutput {
				return printJSON(event)
			}
			fmt.Printf("%s %s %v\n",
				event.Timestamp().Local().Format("15:04:05"),
				color.GreenString(event.EventType()),
				event.Payload(),
			)
			return nil
		})
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchSubject, "subject", "events.>", "Subject filter")
	rootCmd.AddCommand(watchCmd)
}
