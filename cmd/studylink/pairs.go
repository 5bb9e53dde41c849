package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/MrSavageBanana/Study-Assistant/internal/analysis"
	"github.com/MrSavageBanana/Study-Assistant/internal/annotation"
	"github.com/MrSavageBanana/Study-Assistant/internal/graph"
	"github.com/MrSavageBanana/Study-Assistant/internal/links"
	"github.com/MrSavageBanana/Study-Assistant/internal/selection"
)

var (
	pairDescription string
	dryRun          bool
	pageIndexMode   bool
)

var pairCmd = &cobra.Command{
	Use:   "pair",
	Short: "Manage PDF pairs",
}

var pairListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved pairs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadPairs(true)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		ids := doc.PairIDs()
		if len(ids) == 0 {
			fmt.Fprintln(w, "No pairs saved.")
			return nil
		}
		for _, id := range ids {
			p := doc.Pairs[id]
			fmt.Fprintf(w, "%s\t%s\tquestions: %d\tanswers: %d\n", id, p.Name,
				len(p.Annotations(annotation.SideQuestion)), len(p.Annotations(annotation.SideAnswer)))
			if p.Description != "" {
				fmt.Fprintf(w, "\t%s\n", p.Description)
			}
		}
		return nil
	},
}

var pairAddCmd = &cobra.Command{
	Use:   "add NAME QUESTION_PDF ANSWER_PDF",
	Short: "Save a new pair",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadPairs(true)
		if err != nil {
			return err
		}
		p, err := doc.AddPair(args[0], pairDescription, args[1], args[2])
		if err != nil {
			return err
		}
		if err := doc.Save(cfg.Files.Pairs); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Saved pair %q as %s\n", p.Name, p.PairID)
		return nil
	},
}

var pairDeleteCmd = &cobra.Command{
	Use:   "delete PAIR_ID",
	Short: "Delete a pair and all of its annotations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession(cmd.OutOrStdout(), false)
		if err != nil {
			return err
		}
		if _, ok := sess.doc.Pair(args[0]); !ok {
			return fmt.Errorf("%w: %s", annotation.ErrPairNotFound, args[0])
		}

		analyzer := analysis.NewAnalyzer(graph.FromStore(sess.idx, sess.links))
		printImpact(cmd.OutOrStdout(), analyzer.PairDeletion(sess.doc, args[0]))
		if dryRun {
			return nil
		}

		p, err := sess.doc.DeletePair(args[0])
		if err != nil {
			return err
		}
		if err := sess.doc.Save(cfg.Files.Pairs); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Deleted pair %q\n", p.Name)
		return nil
	},
}

var annotationCmd = &cobra.Command{
	Use:   "annotation",
	Short: "Add or remove annotations",
}

var annotationAddCmd = &cobra.Command{
	Use:   "add PAIR_ID SIDE PAGE X Y WIDTH HEIGHT",
	Short: "Add a rectangular selection; SIDE is pdf1 (questions) or pdf2 (answers)",
	Args:  cobra.ExactArgs(7),
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("page %q: %w", args[2], err)
		}
		r, err := parseRect(args[3:])
		if err != nil {
			return err
		}

		doc, err := loadPairs(false)
		if err != nil {
			return err
		}
		a, err := doc.AddAnnotation(args[0], annotation.Side(args[1]), page, r)
		if err != nil {
			return err
		}
		if err := doc.Save(cfg.Files.Pairs); err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "✅ Added %s on page %d\n", a.SelectionID, a.Page)
		if locs := doc.Index().Locations(a.SelectionID); len(locs) > 1 {
			fmt.Fprintf(w, "⚠️  %s also exists at %s; validate will report it as a duplicate\n", a.SelectionID, locs[0])
		}
		return nil
	},
}

var annotationRemoveCmd = &cobra.Command{
	Use:   "remove SELECTION_ID",
	Short: "Remove an annotation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession(cmd.OutOrStdout(), false)
		if err != nil {
			return err
		}
		if _, ok := sess.idx.Resolve(args[0]); !ok {
			return fmt.Errorf("%w: %s", annotation.ErrSelectionNotFound, args[0])
		}

		analyzer := analysis.NewAnalyzer(graph.FromStore(sess.idx, sess.links))
		printImpact(cmd.OutOrStdout(), analyzer.SelectionDeletion(args[0]))
		if dryRun {
			return nil
		}

		loc, err := sess.doc.RemoveAnnotation(args[0])
		if err != nil {
			return err
		}
		if err := sess.doc.Save(cfg.Files.Pairs); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Removed %s (%s)\n", args[0], loc)
		return nil
	},
}

var idCmd = &cobra.Command{
	Use:   "id X Y WIDTH HEIGHT PAGE",
	Short: "Print the selection ID derived from normalized coordinates",
	Args:  cobra.ExactArgs(5),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := parseRect(args[:4])
		if err != nil {
			return err
		}
		page, err := strconv.Atoi(args[4])
		if err != nil {
			return fmt.Errorf("page %q: %w", args[4], err)
		}
		id := selection.FromRect(r, page)
		if pageIndexMode {
			id = selection.LegacyID(r, page)
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

func init() {
	pairAddCmd.Flags().StringVar(&pairDescription, "description", "", "Free-text description of the pair")
	pairDeleteCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Only report which links would break")
	annotationRemoveCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Only report which links would break")
	idCmd.Flags().BoolVar(&pageIndexMode, "page-index", false, "PAGE is a 0-based page index, as in pdf_pairs.json keys")

	pairCmd.AddCommand(pairListCmd, pairAddCmd, pairDeleteCmd)
	annotationCmd.AddCommand(annotationAddCmd, annotationRemoveCmd)
}

func parseRect(args []string) (selection.Rect, error) {
	var v [4]float64
	for i, s := range args[:4] {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return selection.Rect{}, fmt.Errorf("coordinate %q: %w", s, err)
		}
		v[i] = f
	}
	return selection.Rect{X: v[0], Y: v[1], Width: v[2], Height: v[3]}, nil
}

func printImpact(w io.Writer, r *analysis.ImpactReport) {
	if r.Empty() {
		fmt.Fprintf(w, "No links reference the %d selection(s) being removed.\n", len(r.Deleted))
		return
	}
	if n := len(r.DirectlyAffected); n > 0 {
		fmt.Fprintf(w, "  -> %d link records belong to removed selections:\n", n)
		for _, node := range r.DirectlyAffected {
			fmt.Fprintf(w, "     %s (%s)\n", node.ID, describeRecord(node.Record))
		}
	}
	if n := len(r.IndirectlyAffected); n > 0 {
		fmt.Fprintf(w, "  -> %d link records would point at a removed selection:\n", n)
		for _, e := range r.Broken {
			fmt.Fprintf(w, "     %s -%s-> %s\n", e.From, e.Kind, e.To)
		}
	}
	fmt.Fprintln(w, "Run `studylink validate` afterwards to review the dangling links.")
}

func describeRecord(rec *links.Record) string {
	if rec == nil {
		return "no record"
	}
	return rec.Role().String()
}
