package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrSavageBanana/Study-Assistant/internal/links"
	"github.com/MrSavageBanana/Study-Assistant/internal/selection"
)

// engineCmd builds a command that runs one link engine operation.
func engineCmd(use, short string, nargs int, op func(s *links.Store, args []string) (links.Outcome, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd.OutOrStdout(), true)
			if err != nil {
				return err
			}
			out, err := op(sess.links, args)
			if out.Code == links.CodeUnknownSelection {
				for _, id := range args {
					if !selection.Valid(id) {
						out.Corrections = append(out.Corrections,
							fmt.Sprintf("%s is not a well-formed selection ID (sel_ followed by 12 hex digits)", id))
					}
				}
			}
			return printOutcome(cmd.OutOrStdout(), out, err)
		},
	}
}

var linkCmd = engineCmd("link QUESTION ANSWER", "Link a question selection to an answer selection", 2,
	func(s *links.Store, args []string) (links.Outcome, error) {
		return s.CreateLink(args[0], args[1])
	})

var unlinkCmd = engineCmd("unlink ID", "Remove the link held by a question, or the question linked to an answer", 1,
	func(s *links.Store, args []string) (links.Outcome, error) {
		return s.Unlink(args[0])
	})

var stemCmd = &cobra.Command{
	Use:   "stem",
	Short: "Manage stems: shared prompts several questions belong to",
}

var stemMembersCmd = &cobra.Command{
	Use:   "members STEM",
	Short: "List the questions linked to a stem",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession(cmd.OutOrStdout(), true)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if rec, ok := sess.links.Get(args[0]); !ok || !rec.IsStem {
			fmt.Fprintf(w, "⚠️  Selection %s is not marked as Stem\n", args[0])
		}
		members := sess.links.MembersOf(args[0])
		if len(members) == 0 {
			fmt.Fprintln(w, "No questions reference this stem.")
			return nil
		}
		for _, id := range members {
			rec, _ := sess.links.Get(id)
			answer := rec.AnswerID()
			if answer == "" {
				answer = "-"
			}
			fmt.Fprintf(w, "%s\tanswer: %s\n", id, answer)
		}
		return nil
	},
}

func init() {
	stemCmd.AddCommand(
		engineCmd("mark QUESTION", "Mark a question selection as a stem", 1,
			func(s *links.Store, args []string) (links.Outcome, error) {
				return s.MarkAsStem(args[0])
			}),
		engineCmd("unmark STEM", "Clear the stem flag", 1,
			func(s *links.Store, args []string) (links.Outcome, error) {
				return s.UnmarkStem(args[0])
			}),
		engineCmd("add QUESTION STEM", "Link a question to a stem", 2,
			func(s *links.Store, args []string) (links.Outcome, error) {
				return s.AddQuestionToStem(args[0], args[1])
			}),
		engineCmd("remove QUESTION", "Remove a question from its stem", 1,
			func(s *links.Store, args []string) (links.Outcome, error) {
				return s.RemoveQuestionFromStem(args[0])
			}),
		stemMembersCmd,
	)
}
