package checker

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	colorInvalid = lipgloss.Color("#E74C3C")
	colorWarning = lipgloss.Color("#F39C12")
	colorOK      = lipgloss.Color("#2ECC71")
)

// Render writes the human-readable report. Colors are applied only when w
// is a terminal that supports them.
func (r *Report) Render(w io.Writer) error {
	re := lipgloss.NewRenderer(w)
	bold := re.NewStyle().Bold(true)
	heading := func(c lipgloss.Color, s string) string {
		return bold.Foreground(c).Render(s)
	}

	var b strings.Builder
	if r.NothingToValidate {
		b.WriteString("No questions/links found in links.json. Nothing to validate.\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	b.WriteString("\n" + bold.Render("=== Validation Report ===") + "\n")
	if r.Clean() {
		b.WriteString(re.NewStyle().Foreground(colorOK).Render("All links are valid. No issues found.") + "\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	if len(r.InvalidLinks) > 0 {
		b.WriteString("\n" + heading(colorInvalid, "INVALID LINKS (Missing IDs - These need immediate fixing):") + "\n")
		for _, is := range r.InvalidLinks {
			fmt.Fprintf(&b, "- ID: %s\n", is.ID)
			fmt.Fprintf(&b, "  Issue: %s\n", is.Issue)
			if is.RelatedLocation != "" {
				fmt.Fprintf(&b, "  Related Location: %s\n", is.RelatedLocation)
			}
			fmt.Fprintf(&b, "  Suggestion: %s\n\n", is.Suggestion)
		}
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\n" + heading(colorWarning, "WARNINGS (Mismatches/Duplicates - Review and fix):") + "\n")
		for _, is := range r.Warnings {
			fmt.Fprintf(&b, "- Type: %s\n", is.Kind.Label())
			fmt.Fprintf(&b, "  ID: %s\n", is.ID)
			if len(is.Locations) > 0 {
				b.WriteString("  Locations:\n")
				for _, loc := range is.Locations {
					fmt.Fprintf(&b, "    - %s\n", loc)
				}
			}
			if is.Current != "" {
				fmt.Fprintf(&b, "  Current: %s\n", is.Current)
			}
			if is.Location != "" {
				fmt.Fprintf(&b, "  Location: %s\n", is.Location)
			}
			if is.QuestionPair != "" {
				fmt.Fprintf(&b, "  Question Pair: %s\n", is.QuestionPair)
				fmt.Fprintf(&b, "  Other Pair: %s\n", is.OtherPair)
			}
			if is.LinkedFrom != "" {
				fmt.Fprintf(&b, "  Linked from: %s\n", is.LinkedFrom)
			}
			fmt.Fprintf(&b, "  Suggestion: %s\n\n", is.Suggestion)
		}
	}

	if len(r.Violations) > 0 {
		b.WriteString("\n" + heading(colorInvalid, "RULE VIOLATIONS (Breaks app rules - Must fix):") + "\n")
		for _, is := range r.Violations {
			fmt.Fprintf(&b, "- ID: %s\n", is.ID)
			fmt.Fprintf(&b, "  Issue: %s\n", is.Issue)
			fmt.Fprintf(&b, "  Location: %s\n", is.Location)
			fmt.Fprintf(&b, "  Suggestion: %s\n\n", is.Suggestion)
		}
	}

	b.WriteString("\nEnd of report. Fix suggestions provided for each issue.\n")
	_, err := io.WriteString(w, b.String())
	return err
}
