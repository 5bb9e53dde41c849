package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MrSavageBanana/Study-Assistant/internal/annotation"
	"github.com/MrSavageBanana/Study-Assistant/internal/config"
	"github.com/MrSavageBanana/Study-Assistant/internal/links"
	"github.com/MrSavageBanana/Study-Assistant/internal/logging"
)

var (
	rootCmd = &cobra.Command{
		Use:               "studylink",
		Short:             "Link question selections to answers across annotated PDF pairs",
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	flags struct {
		pairs    string
		links    string
		config   string
		db       string
		logLevel string
	}

	cfg    *config.Config
	logger = zap.NewNop()
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.pairs, "pairs", "", "Path to pdf_pairs.json (overrides config)")
	pf.StringVar(&flags.links, "links", "", "Path to links.json (overrides config)")
	pf.StringVarP(&flags.config, "config", "c", config.DefaultFile, "Path to the YAML config file")
	pf.StringVarP(&flags.db, "db", "d", "", "Path to the snapshot database (SQLite)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(validateCmd, repairCmd, statusCmd, snapshotCmd, watchCmd)
	rootCmd.AddCommand(linkCmd, unlinkCmd, stemCmd)
	rootCmd.AddCommand(pairCmd, annotationCmd, idCmd)
}

// setup loads config, applies flag overrides and builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.LoadConfig(flags.config)
	if err != nil {
		return err
	}

	if flags.pairs != "" {
		cfg.Files.Pairs = flags.pairs
	}
	if flags.links != "" {
		cfg.Files.Links = flags.links
	}
	if flags.db != "" {
		cfg.Snapshot.DB = flags.db
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err = logging.New(cfg.Log.Level, cfg.Log.Development)
	return err
}

// loadPairs reads pdf_pairs.json. With allowMissing an absent file yields an
// empty document, for commands that create the file.
func loadPairs(allowMissing bool) (*annotation.Document, error) {
	doc, err := annotation.Load(cfg.Files.Pairs)
	if allowMissing && errors.Is(err, os.ErrNotExist) {
		return annotation.NewDocument(), nil
	}
	if err != nil {
		return nil, err
	}
	if doc.Migrated > 0 {
		logger.Info("derived selection IDs for legacy annotations",
			zap.String("file", cfg.Files.Pairs), zap.Int("count", doc.Migrated))
	}
	return doc, nil
}

// session is the loaded pair of data files.
type session struct {
	doc   *annotation.Document
	idx   *annotation.Index
	links *links.Store
}

// openSession loads both files. The link store resolves IDs through the
// annotation index; repair runs first when configured and repair is true.
func openSession(w io.Writer, repair bool) (*session, error) {
	doc, err := loadPairs(false)
	if err != nil {
		return nil, err
	}
	idx := doc.Index()

	store, err := links.Load(cfg.Files.Links, links.WithResolver(idx), links.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	if repair && cfg.Repair.OnLoad {
		fixes, err := store.Repair()
		if err != nil {
			return nil, err
		}
		for _, f := range fixes {
			fmt.Fprintf(w, "🔧 Repaired %s\n", f)
		}
	}
	return &session{doc: doc, idx: idx, links: store}, nil
}

// printOutcome writes an engine result as a status line. Rejections are not
// errors; a failed write is.
func printOutcome(w io.Writer, out links.Outcome, err error) error {
	switch {
	case out.Rejected():
		fmt.Fprintf(w, "⚠️  %s\n", out.Message)
	case out.Changed:
		fmt.Fprintf(w, "✅ %s\n", out.Message)
	default:
		fmt.Fprintf(w, "ℹ️  %s\n", out.Message)
	}
	for _, c := range out.Corrections {
		fmt.Fprintf(w, "   ↳ %s\n", c)
	}
	return err
}
