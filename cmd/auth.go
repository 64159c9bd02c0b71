package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"workspacemcp/internal/google"
	"workspacemcp/internal/logging"
)

func newAuthCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize access to Google Workspace",
		Long: `Run the Google OAuth authorization flow from the terminal.

Prints a consent URL to open in a browser, waits for the callback on a
local port, and stores the resulting credentials on disk. Requires the
GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET environment variables.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuth(logLevel)
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, or error")

	return cmd
}

func runAuth(logLevel string) error {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := logging.Setup(logLevel)

	store, err := google.NewStore()
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}

	flow, err := google.StartFlow(ctx, store, logger)
	if err != nil {
		return fmt.Errorf("failed to start authorization flow: %w", err)
	}
	defer flow.Close()

	fmt.Println("Open this URL in a browser to authorize access:")
	fmt.Println()
	fmt.Println(flow.AuthURL())
	fmt.Println()
	fmt.Printf("Waiting for authorization (times out after %s)...\n", google.FlowTimeout)

	select {
	case <-ctx.Done():
		return fmt.Errorf("authorization cancelled")
	case err := <-flow.Done():
		if err != nil {
			return fmt.Errorf("authorization failed: %w", err)
		}
	}

	fmt.Printf("Authorized. Credentials stored at %s\n", store.Path())
	return nil
}
