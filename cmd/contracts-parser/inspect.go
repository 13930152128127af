package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/contracts-parser/constants"
	"github.com/joseph-ayodele/contracts-parser/internal/common"
	"github.com/joseph-ayodele/contracts-parser/internal/core/pipeline"
	"github.com/joseph-ayodele/contracts-parser/internal/entity"
	"github.com/joseph-ayodele/contracts-parser/internal/export"
	"github.com/joseph-ayodele/contracts-parser/internal/ingest"
)

func documentFor(path string) (entity.Document, error) {
	u, err := ingest.NormalizeLocation(path)
	if err != nil {
		return entity.Document{}, err
	}
	return entity.Document{Name: filepath.Base(path), URL: u}, nil
}

func (c *cli) newTextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "text <file>",
		Short: "Print the text extracted from one document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, c.cfg, c.logger, false)
			if err != nil {
				return err
			}
			defer a.Close()

			doc, err := documentFor(args[0])
			if err != nil {
				return err
			}
			res, err := a.text.Run(ctx, doc)
			if err != nil {
				return err
			}
			printErr(cmd, "method=%s pages=%d chars=%d confidence=%.2f elapsed=%s\n",
				res.Method, res.Pages, len(res.Text), res.Confidence, res.Duration)
			for _, w := range res.Warnings {
				printErr(cmd, "warning: %s\n", w)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), res.Text)
			return err
		},
	}
}

func (c *cli) newEntitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "entities <file>",
		Short: "Print the entity spans recognised in one document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, c.cfg, c.logger, false)
			if err != nil {
				return err
			}
			defer a.Close()

			doc, err := documentFor(args[0])
			if err != nil {
				return err
			}
			res, err := a.text.Run(ctx, doc)
			if err != nil {
				return err
			}
			ents, err := a.recognizer.Recognize(ctx, res.Text)
			if err != nil {
				return err
			}
			table := export.Table{Columns: []string{"Kind", "Text", "Start", "End"}}
			for _, e := range ents {
				table.Rows = append(table.Rows, []any{string(e.Kind), e.Text, e.Start, e.End})
			}
			export.Preview(cmd.OutOrStdout(), table, 60)
			return nil
		},
	}
}

func (c *cli) newRunsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "List stored runs, or show the records of one run (latest by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if c.cfg.Database.DSN == "" {
				return fmt.Errorf("%w: --db or DB_URL is required", common.ErrInvalidInput)
			}
			a, err := newApp(ctx, c.cfg, c.logger, true)
			if err != nil {
				return err
			}
			defer a.Close()
			out := cmd.OutOrStdout()

			if limit > 0 {
				runs, err := a.runs.ListRuns(ctx, limit)
				if err != nil {
					return err
				}
				table := export.Table{Columns: []string{"Run", "Input", "Started", "Documents", "OK", "Failed", "Omitted"}}
				for _, r := range runs {
					table.Rows = append(table.Rows, []any{
						r.ID.String(), r.Input, r.StartedAt.Local().Format("2006-01-02 15:04:05"),
						r.Discovered, r.Succeeded, r.Failed, r.Omitted,
					})
				}
				export.Preview(out, table, export.PreviewWidth)
				return nil
			}

			var run *entity.Run
			if len(args) == 1 {
				id, err := uuid.Parse(args[0])
				if err != nil {
					return fmt.Errorf("%w: run id: %v", common.ErrInvalidInput, err)
				}
				run = &entity.Run{ID: id}
			} else if run, err = a.runs.LatestRun(ctx); err != nil {
				return err
			}

			records, err := a.runs.ListRecords(ctx, run.ID)
			if err != nil {
				return err
			}
			rows, err := pipeline.Assemble(records, constants.Columns)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Run %s: %d records\n", run.ID, len(records))
			export.Preview(out, export.Table{Columns: constants.Columns, Rows: rows}, export.PreviewWidth)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "list", 0, "list the N most recent runs instead")
	return cmd
}

func (c *cli) newDBHealthCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "db-health",
		Short: "Ping the run store and report the number of stored runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if c.cfg.Database.DSN == "" {
				return fmt.Errorf("%w: --db or DB_URL is required", common.ErrInvalidInput)
			}
			a, err := newApp(ctx, c.cfg, c.logger, true)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			if err := a.db.HealthCheck(ctx, timeout); err != nil {
				fmt.Fprintf(out, "DB health: FAIL (%v)\n", err)
				return err
			}
			fmt.Fprintf(out, "DB health: OK (%s)\n", a.db.Dialect)

			runs, err := a.runs.ListRuns(ctx, 1000)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "stored runs: %d\n", len(runs))
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", time.Second, "ping timeout")
	return cmd
}
