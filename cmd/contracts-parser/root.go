package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/gops/agent"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/contracts-parser/internal/common"
)

type options struct {
	input      string
	output     string
	workers    int
	db         string
	sections   string
	ner        string
	extensions []string
	recursive  bool
	noProgress bool
	logLevel   string
	logFormat  string
	gops       bool
}

// cli carries the resolved configuration from PersistentPreRunE to the commands.
type cli struct {
	opts   options
	cfg    *common.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "contracts-parser",
		Short: "Extract names, dates, work and payments from contract documents",
		Long: `contracts-parser converts every document in the input folder to text, extracts
the party name, date, contracted work and the initial and second payment amounts,
and writes one row per document to a CSV or XLSX table. Documents that cannot be
read still get a row with only the filename filled in.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		RunE:              c.runParse,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&c.opts.input, "input", "i", "", "input folder or URL (env CONTRACTS_INPUT)")
	pf.StringVarP(&c.opts.output, "output", "o", "", "output table, .csv or .xlsx (env CONTRACTS_OUTPUT)")
	pf.IntVarP(&c.opts.workers, "workers", "w", 0, "concurrent documents (env CONTRACTS_WORKERS)")
	pf.StringVar(&c.opts.db, "db", "", "run store: SQLite path or postgres:// URL (env DB_URL)")
	pf.StringVar(&c.opts.sections, "sections", "", "YAML file overriding section phrases (env CONTRACTS_SECTIONS_FILE)")
	pf.StringVar(&c.opts.ner, "ner", "", "entity recognizer: rules, http or openai (env NER_PROVIDER)")
	pf.StringSliceVar(&c.opts.extensions, "ext", nil, "document extensions to process (env CONTRACTS_EXTENSIONS)")
	pf.BoolVarP(&c.opts.recursive, "recursive", "r", false, "descend into sub-folders (env CONTRACTS_RECURSIVE)")
	pf.BoolVar(&c.opts.noProgress, "no-progress", false, "disable the progress bar")
	pf.StringVar(&c.opts.logLevel, "log-level", "", "debug, info, warn or error (env LOG_LEVEL)")
	pf.StringVar(&c.opts.logFormat, "log-format", "", "json or text (env LOG_FORMAT)")
	pf.BoolVar(&c.opts.gops, "gops", false, "start the gops diagnostics agent")

	root.AddCommand(
		c.newWatchCmd(),
		c.newTextCmd(),
		c.newEntitiesCmd(),
		c.newRunsCmd(),
		c.newDBHealthCmd(),
	)
	return root
}

// setup loads env configuration and lets explicitly set flags override it.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	cfg := common.LoadConfig()
	flags := cmd.Flags()

	if flags.Changed("input") {
		cfg.Pipeline.Input = c.opts.input
	}
	if flags.Changed("output") {
		cfg.Pipeline.Output = c.opts.output
	}
	if flags.Changed("workers") {
		cfg.Pipeline.Workers = c.opts.workers
	}
	if flags.Changed("db") {
		cfg.Database.DSN = c.opts.db
	}
	if flags.Changed("sections") {
		cfg.Pipeline.SectionsFile = c.opts.sections
	}
	if flags.Changed("ner") {
		cfg.NER.Provider = strings.ToLower(c.opts.ner)
	}
	if flags.Changed("ext") {
		cfg.Pipeline.Extensions = c.opts.extensions
	}
	if flags.Changed("recursive") {
		cfg.Pipeline.Recursive = c.opts.recursive
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = c.opts.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = c.opts.logFormat
	}

	c.logger = common.NewLogger(cfg.Log, cmd.ErrOrStderr())
	slog.SetDefault(c.logger)

	if err := cfg.Validate(); err != nil {
		c.logger.Error("config.invalid", "error", err)
		return err
	}
	c.cfg = cfg

	if c.opts.gops {
		if err := agent.Listen(agent.Options{ShutdownCleanup: true}); err != nil {
			c.logger.Warn("gops.listen.failed", "error", err)
		}
	}
	return nil
}

// kinds renders the configured extensions for user messages, e.g. "PDF".
func (c *cli) kinds() string {
	exts := make([]string, 0, len(c.cfg.Pipeline.Extensions))
	for _, e := range c.cfg.Pipeline.Extensions {
		exts = append(exts, strings.ToUpper(strings.TrimPrefix(e, ".")))
	}
	return strings.Join(exts, "/")
}

func printErr(cmd *cobra.Command, format string, args ...any) {
	if _, err := fmt.Fprintf(cmd.ErrOrStderr(), format, args...); err != nil {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
