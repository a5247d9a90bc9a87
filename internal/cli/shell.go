package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/tuannm99/fallbackdb/internal/engine"
)

const (
	prompt     = "fallbackdb> "
	contPrompt = "        ... "
)

// ShellOptions holds flags for the shell command.
type ShellOptions struct {
	*RootOptions
	Addr       string
	Output     string
	History    string
	HistoryMax int
}

// NewShellCommand creates the shell command.
func NewShellCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShellOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Interactive SQL shell",
		Long: `Interactive SQL shell against the local store, or a server with --addr.
Statements end with ';' and may span lines. Type \help for meta commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "server address; empty opens the local store")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "table", "output format (table|json|yaml)")
	cmd.Flags().StringVar(&opts.History, "history", defaultHistoryPath(), "history file path")
	cmd.Flags().IntVar(&opts.HistoryMax, "history-max", 2000, "max history entries kept")

	return cmd
}

func runShell(cmd *cobra.Command, opts *ShellOptions) error {
	if !slices.Contains(ValidOutputs, opts.Output) {
		return fmt.Errorf("invalid output %q: must be one of %v", opts.Output, ValidOutputs)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	q, release, err := opts.connect(ctx, opts.Addr)
	if err != nil {
		return err
	}
	defer func() { _ = release() }()

	hist := NewHistory(nil, opts.History, opts.HistoryMax)
	if err := hist.Load(); err != nil {
		opts.Logger.Warn("load history", "path", opts.History, "err", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		Stdout:          cmd.OutOrStdout(),
	})
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer func() { _ = rl.Close() }()

	// preload history so the arrow keys work immediately
	for _, line := range hist.Lines() {
		_ = rl.SaveHistory(line)
	}

	sh := &shell{q: q, out: cmd.OutOrStdout(), hist: hist, output: opts.Output}
	if store, ok := q.(*engine.Store); ok {
		sh.tables = store.Tables
		fmt.Fprintf(sh.out, "opened %s\n", store.Dir())
	} else {
		fmt.Fprintf(sh.out, "connected to %s\n", opts.Addr)
	}
	fmt.Fprintln(sh.out, `type \help for help`)

	return sh.run(ctx, rl)
}

type lineReader interface {
	Readline() (string, error)
	SetPrompt(string)
}

type shell struct {
	q      querier
	out    io.Writer
	hist   *History
	output string
	// params bind to $1, $2, ... of every statement until rebound.
	params []any
	// tables is nil on remote connections.
	tables func() []string
}

func (s *shell) run(ctx context.Context, rl lineReader) error {
	var buf strings.Builder

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			// Ctrl+C clears the current buffer
			if buf.Len() > 0 {
				buf.Reset()
				rl.SetPrompt(prompt)
				continue
			}
			fmt.Fprintln(s.out, "^C")
			continue
		}
		if err != nil {
			return nil
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if buf.Len() == 0 && isMetaCommand(line) {
			if s.meta(line) {
				return nil
			}
			continue
		}

		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(line)
		if !statementComplete(buf.String()) {
			rl.SetPrompt(contPrompt)
			continue
		}

		stmt := buf.String()
		buf.Reset()
		rl.SetPrompt(prompt)

		_ = s.hist.Append(stmt)
		s.execute(ctx, stmt)
	}
}

func (s *shell) execute(ctx context.Context, stmt string) {
	res, err := s.q.Query(ctx, stmt, s.params...)
	if res != nil {
		if werr := WriteResult(s.out, res, s.output); werr != nil {
			fmt.Fprintf(s.out, "error: %v\n", werr)
		}
	}
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
	}
}

// meta runs a backslash command and reports whether the shell should exit.
func (s *shell) meta(line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case `\q`, "quit", "exit":
		return true
	case `\help`:
		fmt.Fprintln(s.out, `meta commands:
  \q | quit | exit       quit
  \bind [v1 v2 ...]      bind $1, $2, ... for following statements (no args clears)
  \o table|json|yaml     set output format
  \tables                list tables (local store only)
  \history               print history
  \help                  show help

sql:
  end statements with ';'; multiline input waits for it`)
	case `\history`:
		s.hist.Print(s.out, 50)
	case `\bind`:
		s.params = s.params[:0]
		for _, f := range fields[1:] {
			s.params = append(s.params, ParseParam(f))
		}
		fmt.Fprintf(s.out, "bound %d parameter(s)\n", len(s.params))
	case `\o`:
		if len(fields) != 2 || !slices.Contains(ValidOutputs, fields[1]) {
			fmt.Fprintf(s.out, "usage: \\o %s\n", strings.Join(ValidOutputs, "|"))
			break
		}
		s.output = fields[1]
	case `\tables`:
		if s.tables == nil {
			fmt.Fprintln(s.out, `\tables is only available on a local store`)
			break
		}
		for _, name := range s.tables() {
			fmt.Fprintln(s.out, name)
		}
	default:
		fmt.Fprintf(s.out, "unknown command: %s\n", line)
	}
	return false
}

func isMetaCommand(line string) bool {
	return strings.HasPrefix(line, `\`) || line == "quit" || line == "exit"
}

// statementComplete checks for a terminating ';' outside single quotes.
func statementComplete(buf string) bool {
	inQuote := false
	for _, r := range buf {
		switch {
		case r == '\'':
			// '' inside a literal toggles twice and stays quoted
			inQuote = !inQuote
		case r == ';' && !inQuote:
			return true
		}
	}
	return false
}
