// Command server runs the clinic front-desk service and its helpers.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "clinic-desk",
		Short:        "Dental clinic front desk: encounters and billing",
		SilenceUsage: true,
	}
	root.AddCommand(serveCmd(), consumeCmd(), migrateCmd(), recommendCmd())
	return root
}
