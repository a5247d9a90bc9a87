package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

// TablesOptions holds flags for the tables command.
type TablesOptions struct {
	*RootOptions
	JSON bool
}

type tableInfo struct {
	Name   string `json:"name"`
	Rows   int    `json:"rows"`
	Schema string `json:"schema,omitempty"`
}

// NewTablesCommand creates the tables command.
func NewTablesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TablesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "tables",
		Short: "List tables in the local snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTables(cmd, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "print as JSON")
	return cmd
}

func runTables(cmd *cobra.Command, opts *TablesOptions) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := opts.openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, store.End(context.Background())) }()

	var infos []tableInfo
	for _, name := range store.Tables() {
		res, qerr := store.Query(ctx, "SELECT * FROM "+name)
		if qerr != nil {
			return qerr
		}
		schema, _ := store.Schema(name)
		infos = append(infos, tableInfo{Name: name, Rows: res.RowCount, Schema: schema})
	}

	out := cmd.OutOrStdout()
	if opts.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TABLE\tROWS\tSCHEMA")
	for _, t := range infos {
		schema := "-"
		if t.Schema != "" {
			schema = "recorded"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\n", t.Name, t.Rows, schema)
	}
	return tw.Flush()
}
