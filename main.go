package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/MrSavageBanana/Study-Assistant/internal/annotation"
	"github.com/MrSavageBanana/Study-Assistant/internal/checker"
	"github.com/MrSavageBanana/Study-Assistant/internal/links"
)

// Standalone validator: reads both files from the working directory and
// prints the report. No flags; use cmd/studylink for anything else.
func main() {
	for _, name := range []string{annotation.DefaultFile, links.DefaultFile} {
		if _, err := os.Stat(name); errors.Is(err, os.ErrNotExist) {
			fmt.Printf("Error: %s not found.\n", name)
			return
		}
	}

	doc, err := annotation.Load(annotation.DefaultFile)
	if err != nil {
		fmt.Println(err)
		return
	}
	store, err := links.Load(links.DefaultFile)
	if err != nil {
		fmt.Println(err)
		return
	}

	report := checker.ValidateStore(doc.Index(), store)
	if err := report.Render(os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}
