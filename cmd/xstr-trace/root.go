package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/kurahaupo/libxstr/diag"
	"github.com/kurahaupo/libxstr/internal/scenario"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "xstr-trace",
		Short: "Replay ownership walkthroughs and print their lifecycle trace",
		Long: `xstr-trace runs scripted producer/consumer walkthroughs of the libxstr
transfer protocol and prints one line per Loan, Borrow, Give, Take, Finish
and Ignore, with the value's state before and after.

Settings come from flags, XSTR_* environment variables (XSTR_BACKEND,
XSTR_PAGES, XSTR_LOG_LEVEL, ...) and an optional xstr-trace.yaml in the
working directory.

Example:
  xstr-trace --scenario relay
  xstr-trace --backend linear --pages 2
  xstr-trace --scenario stale-loan --interactive`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Flags(), ".")
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.String(cfgKeyBackend, backendGo, "allocator backend: go or linear")
	f.Uint32(cfgKeyPages, 1, "linear memory size in 64KiB pages")
	f.String(cfgKeyLogLevel, "warn", "log level: debug, info, warn or error")
	f.StringSlice(cfgKeyScenario, nil, "walkthroughs to run (default: all)")
	f.BoolP(cfgKeyInteractive, "i", false, "step through the trace in a TUI")
	f.Bool(cfgKeyNoColor, false, "disable styled output")

	cmd.AddCommand(newListCmd())
	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available walkthroughs",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			for _, sc := range scenario.All() {
				mark := ""
				if sc.Fails {
					mark = " (ends in a fatal error)"
				}
				fmt.Fprintf(w, "%-16s %s%s\n", sc.Name, sc.Summary, mark)
			}
		},
	}
}

func run(ctx context.Context, cfg *config, w io.Writer) error {
	log, err := cfg.newLogger()
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck
	defer diag.SetLogger(log)()

	names := cfg.Scenarios
	if len(names) == 0 {
		for _, sc := range scenario.All() {
			names = append(names, sc.Name)
		}
	}

	results := make([]*scenario.Result, 0, len(names))
	for _, name := range names {
		res, err := replay(ctx, cfg, log, name)
		if err != nil {
			return err
		}
		results = append(results, res)
	}

	if cfg.Interactive {
		return runInteractive(results, cfg.Backend)
	}

	st := newStyles(!cfg.NoColor && isTerminal(w))
	for i, res := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprint(w, st.render(res, cfg.Backend))
	}
	return nil
}

// replay runs one walkthrough on a fresh allocator and checks that the
// allocator ends empty.
func replay(ctx context.Context, cfg *config, log *zap.Logger, name string) (*scenario.Result, error) {
	alloc, err := cfg.newAllocator(ctx, log)
	if err != nil {
		return nil, fmt.Errorf("%s backend: %w", cfg.Backend, err)
	}

	res, err := scenario.Run(name, alloc)
	if cerr := alloc.Close(); cerr != nil {
		log.Warn("allocator not empty after walkthrough",
			zap.String("scenario", name), zap.Error(cerr))
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
