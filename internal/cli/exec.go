package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// ExecOptions holds flags for the exec command.
type ExecOptions struct {
	*RootOptions
	Output string
	Addr   string
}

// NewExecCommand creates the exec command.
func NewExecCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExecOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "exec <sql> [params...]",
		Short: "Run one statement and print the result",
		Long: `Run one statement against the local snapshot directory, or against a
running server with --addr. Extra arguments bind to $1, $2, ...

Example:
  fallbackdb exec 'INSERT INTO payments (amount, status) VALUES ($1, $2)' 50000 pending
  fallbackdb exec -o yaml 'SELECT * FROM payments WHERE status = $1' pending`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(cmd.Context(), opts, cmd, args[0], args[1:])
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "json", "output format (table|json|yaml)")
	cmd.Flags().StringVar(&opts.Addr, "addr", "", "server address; empty runs against the local store")

	return cmd
}

func runExec(ctx context.Context, opts *ExecOptions, cmd *cobra.Command, sql string, rawParams []string) error {
	if !slices.Contains(ValidOutputs, opts.Output) {
		return fmt.Errorf("invalid output %q: must be one of %v", opts.Output, ValidOutputs)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	q, release, err := opts.connect(ctx, opts.Addr)
	if err != nil {
		return err
	}

	params := make([]any, len(rawParams))
	for i, p := range rawParams {
		params[i] = ParseParam(p)
	}

	res, qerr := q.Query(ctx, sql, params...)
	if res != nil {
		if err := WriteResult(cmd.OutOrStdout(), res, opts.Output); err != nil {
			qerr = err
		}
	}
	if err := release(); err != nil && qerr == nil {
		qerr = err
	}
	return qerr
}
