package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MrSavageBanana/Study-Assistant/internal/checker"
	"github.com/MrSavageBanana/Study-Assistant/internal/graph"
	"github.com/MrSavageBanana/Study-Assistant/internal/storage"
	"github.com/MrSavageBanana/Study-Assistant/internal/watch"
)

var (
	strict      bool
	showHistory bool
)

var errIssuesFound = errors.New("validation found issues")

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check links.json against pdf_pairs.json and suggest fixes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		report, err := runValidation(w)
		if err != nil || report == nil {
			return err
		}
		if err := report.Render(w); err != nil {
			return err
		}
		if strict && !report.Clean() {
			return errIssuesFound
		}
		return nil
	},
}

// runValidation loads both files as they are on disk, without repair. A
// missing input prints the same message as the standalone validator and
// yields a nil report.
func runValidation(w io.Writer) (*checker.Report, error) {
	for _, path := range []string{cfg.Files.Pairs, cfg.Files.Links} {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(w, "Error: %s not found.\n", path)
			return nil, nil
		}
	}
	sess, err := openSession(w, false)
	if err != nil {
		return nil, err
	}
	return checker.ValidateStore(sess.idx, sess.links), nil
}

var repairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Fix link rule violations left by manual edits of links.json",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession(cmd.OutOrStdout(), false)
		if err != nil {
			return err
		}
		fixes, err := sess.links.Repair()
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if len(fixes) == 0 {
			fmt.Fprintln(w, "✅ No rule violations found.")
			return nil
		}
		for _, f := range fixes {
			fmt.Fprintf(w, "🔧 %s\n", f)
		}
		fmt.Fprintf(w, "💾 Applied %d corrections to %s\n", len(fixes), sess.links.Path())
		return nil
	},
}

var stateColors = map[graph.LinkState]lipgloss.Color{
	graph.StateUnlinked:       lipgloss.Color("#E74C3C"),
	graph.StateAnswered:       lipgloss.Color("#2ECC71"),
	graph.StateStem:           lipgloss.Color("#FF00FF"),
	graph.StateMemberAnswered: lipgloss.Color("#006400"),
	graph.StateMemberOpen:     lipgloss.Color("#8B0000"),
}

var statusCmd = &cobra.Command{
	Use:   "status [PAIR_ID]",
	Short: "Show the link state of every selection",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession(cmd.OutOrStdout(), true)
		if err != nil {
			return err
		}
		pairID := ""
		if len(args) > 0 {
			pairID = args[0]
			if _, ok := sess.doc.Pair(pairID); !ok {
				return fmt.Errorf("pair %s not found", pairID)
			}
		}

		w := cmd.OutOrStdout()
		re := lipgloss.NewRenderer(w)
		g := graph.FromStore(sess.idx, sess.links)
		for _, s := range g.States(pairID) {
			state := re.NewStyle().Foreground(stateColors[s.State]).Render(string(s.State))
			fmt.Fprintf(w, "%s\t%s\t%s\n", s.ID, s.Location, state)
		}

		counts := g.StateCounts(pairID)
		fmt.Fprintf(w, "\n📊 %d answered, %d stems, %d stem members answered, %d stem members open, %d unlinked\n",
			counts[graph.StateAnswered], counts[graph.StateStem],
			counts[graph.StateMemberAnswered], counts[graph.StateMemberOpen], counts[graph.StateUnlinked])
		if d := g.DanglingCounts(); len(d) > 0 {
			fmt.Fprintf(w, "⚠️  %d answer and %d stem references do not resolve; run validate\n",
				d[graph.EdgeAnswer], d[graph.EdgeStem])
		}
		return nil
	},
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Mirror pairs, selections and links into the SQLite database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		w := cmd.OutOrStdout()

		store, err := storage.NewSQLiteStore(cfg.Snapshot.DB)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer store.Close()

		if showHistory {
			history, err := store.History(ctx)
			if err != nil {
				return err
			}
			for _, h := range history {
				fmt.Fprintf(w, "#%d\t%s\tpairs: %d\tselections: %d\tlinks: %d\n", h.ID, h.TakenAt, h.Pairs, h.Selections, h.Links)
			}
			return nil
		}

		sess, err := openSession(w, true)
		if err != nil {
			return err
		}
		snap := storage.NewSnapshot(sess.doc, sess.links.Snapshot())
		if err := store.SaveSnapshot(ctx, snap); err != nil {
			return fmt.Errorf("failed to save snapshot: %w", err)
		}
		fmt.Fprintf(w, "💾 Saved %d pairs, %d selections and %d links to %s\n",
			len(snap.Pairs), len(snap.Selections), len(snap.Links), cfg.Snapshot.DB)
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-validate whenever pdf_pairs.json or links.json changes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		w, err := watch.New([]string{cfg.Files.Pairs, cfg.Files.Links}, cfg.Watch.Debounce, logger)
		if err != nil {
			return err
		}
		go w.Run(ctx)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "👀 Watching %s and %s (Ctrl+C to stop)\n", cfg.Files.Pairs, cfg.Files.Links)
		revalidate(ctx, out)
		for changed := range w.Changes() {
			logger.Info("reloading after change", zap.Strings("files", changed))
			revalidate(ctx, out)
		}
		return nil
	},
}

// revalidate reloads, optionally repairs, and prints the report. Load
// errors are printed and the watch continues, since the next save usually
// fixes a half-written file.
func revalidate(ctx context.Context, w io.Writer) {
	if ctx.Err() != nil {
		return
	}
	if cfg.Repair.OnLoad {
		if _, err := openSession(w, true); err != nil {
			fmt.Fprintf(w, "⚠️  %v\n", err)
			return
		}
	}
	report, err := runValidation(w)
	if err != nil {
		fmt.Fprintf(w, "⚠️  %v\n", err)
		return
	}
	if report == nil {
		return
	}
	if err := report.Render(w); err != nil {
		logger.Warn("failed to print report", zap.Error(err))
	}
}

func init() {
	validateCmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when any issue is found")
	snapshotCmd.Flags().BoolVar(&showHistory, "history", false, "List previous snapshots instead of taking one")
}
