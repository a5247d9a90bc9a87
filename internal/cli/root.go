package cli

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/tuannm99/fallbackdb/internal"
	"github.com/tuannm99/fallbackdb/internal/engine"
	"github.com/tuannm99/fallbackdb/internal/sql/executor"
	"github.com/tuannm99/fallbackdb/sqlclient"
)

// RootOptions holds global flags and the configuration they resolve to.
type RootOptions struct {
	ConfigPath string
	DataDir    string
	LogLevel   string
	LogFormat  string

	Config *internal.FallbackConfig
	Logger *slog.Logger
}

// ValidLogFormats defines the allowed --log-format values.
var ValidLogFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the fallbackdb CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "fallbackdb",
		Short: "Embedded fallback SQL store",
		Long: `fallbackdb is a small disk-persisted table store that answers a subset of
SQL with $n parameters, for use when the real database is unreachable.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "YAML config file")
	cmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", "", "snapshot directory (overrides storage.dir)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", "", "log format (text|json)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewExecCommand(opts))
	cmd.AddCommand(NewShellCommand(opts))
	cmd.AddCommand(NewTablesCommand(opts))

	return cmd
}

func (o *RootOptions) resolve(cmd *cobra.Command) error {
	var (
		cfg *internal.FallbackConfig
		err error
	)
	if o.ConfigPath != "" {
		cfg, err = internal.LoadConfig(o.ConfigPath)
	} else {
		cfg, err = internal.DefaultConfig()
	}
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("data-dir") {
		cfg.Storage.Dir = o.DataDir
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = o.LogLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Log.Format = o.LogFormat
	}
	if !slices.Contains(ValidLogFormats, cfg.Log.Format) {
		return fmt.Errorf("invalid log format %q: must be one of %v", cfg.Log.Format, ValidLogFormats)
	}

	logger, err := NewLogger(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	o.Config = cfg
	o.Logger = logger
	return nil
}

func (o *RootOptions) openStore(ctx context.Context) (*engine.Store, error) {
	return engine.Open(ctx, engine.Options{
		Dir:           o.Config.Storage.Dir,
		DefaultTables: o.Config.Storage.DefaultTables,
		LatencyMin:    o.Config.Latency.Min,
		LatencyMax:    o.Config.Latency.Max,
		Logger:        o.Logger,
	})
}

// querier is what exec and shell run statements against: a local Store
// or a remote server.
type querier interface {
	Query(ctx context.Context, sql string, params ...any) (*executor.Result, error)
}

type remote struct {
	client *sqlclient.Client
}

func (r remote) Query(ctx context.Context, sql string, params ...any) (*executor.Result, error) {
	return r.client.ExecContext(ctx, sql, params...)
}

// connect opens a local store, or dials addr when it is set. The returned
// func releases whichever was opened.
func (o *RootOptions) connect(ctx context.Context, addr string) (querier, func() error, error) {
	if addr == "" {
		store, err := o.openStore(ctx)
		if err != nil {
			return nil, nil, err
		}
		return store, func() error { return store.End(context.Background()) }, nil
	}

	timeout := o.Config.Server.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	c, err := sqlclient.DialContext(ctx, addr, timeout)
	if err != nil {
		return nil, nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	c.SetRWTimeout(timeout)
	return remote{client: c}, c.Close, nil
}
