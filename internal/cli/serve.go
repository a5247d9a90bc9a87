package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/tuannm99/fallbackdb/server/fallbackwire"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the store over TCP until SIGINT or SIGTERM",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := opts.Addr
	if addr == "" {
		addr = opts.Config.Server.Addr
	}

	store, err := opts.openStore(ctx)
	if err != nil {
		return err
	}

	srv := fallbackwire.NewServer(store, opts.Logger)
	srv.IdleTimeout = opts.Config.Server.IdleTimeout
	serveErr := srv.ListenAndServe(ctx, addr)

	// flush even when the listener failed
	return multierr.Append(serveErr, store.End(context.Background()))
}
