package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/iliyamo/food-ordering-assistant/internal/config"
	"github.com/iliyamo/food-ordering-assistant/internal/queue"
)

func newConsumeCmd(v *viper.Viper) *cobra.Command {
	var logDir string
	cmd := &cobra.Command{
		Use:   "consume",
		Short: "Log placed orders from the order.placed queue",
		RunE: func(cmd *cobra.Command, _ []string) error {
			v.AutomaticEnv()
			logger := newLogger(v.GetString("APP_ENV"), v.GetString("LOG_LEVEL"))
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return queue.StartOrderConsumer(ctx, config.LoadRabbitURL(v), logDir, logger)
		},
	}
	cmd.Flags().StringVar(&logDir, "log-dir", "logs", "directory of orders.log")
	return cmd
}
