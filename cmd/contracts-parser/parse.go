package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/contracts-parser/internal/common"
	"github.com/joseph-ayodele/contracts-parser/internal/core/pipeline"
	"github.com/joseph-ayodele/contracts-parser/internal/entity"
	"github.com/joseph-ayodele/contracts-parser/internal/export"
)

func (c *cli) runParse(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, c.cfg, c.logger, true)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := c.batch(ctx, cmd, a)
	if err != nil {
		return err
	}
	return c.publish(ctx, cmd.OutOrStdout(), a, res)
}

// batch runs the pipeline once over the configured input. An invalid input
// location is reported as an empty result.
func (c *cli) batch(ctx context.Context, cmd *cobra.Command, a *app) (*pipeline.BatchResult, error) {
	out := cmd.OutOrStdout()
	bar := &progress{w: cmd.ErrOrStderr(), enabled: !c.opts.noProgress}
	defer bar.finish()

	p := a.pipeline(
		pipeline.WithDiscovered(func(docs []entity.Document) {
			fmt.Fprintf(out, "%d files found. Processing...\n", len(docs))
			bar.start(len(docs))
		}),
		pipeline.WithProgress(bar.step),
	)
	res, err := p.Run(ctx, c.cfg.Pipeline.Input)
	if errors.Is(err, common.ErrInvalidInput) {
		c.logger.Warn("parse.input.invalid", "input", c.cfg.Pipeline.Input, "error", err)
		fmt.Fprintf(out, "No %s files found in '%s'\n", c.kinds(), c.cfg.Pipeline.Input)
		return &pipeline.BatchResult{NoDocuments: true}, nil
	}
	if err != nil {
		return nil, err
	}
	if res.NoDocuments {
		fmt.Fprintf(out, "No %s files found in '%s'\n", c.kinds(), c.cfg.Pipeline.Input)
	}
	return res, nil
}

// publish writes the table, records the run and prints the preview.
func (c *cli) publish(ctx context.Context, out io.Writer, a *app, res *pipeline.BatchResult) error {
	if a.runs != nil && !res.NoDocuments {
		if err := a.runs.SaveRun(ctx, res.Run, res.Records); err != nil {
			c.logger.Error("parse.run.save_failed", "run_id", res.RunID, "error", err)
		}
	}
	if res.Empty() {
		fmt.Fprintln(out, "Whoops, no data was found. Check your files")
		return nil
	}

	table := export.Table{Columns: res.Columns, Rows: res.Rows}
	if err := a.writer.Write(ctx, table, c.cfg.Pipeline.Output); err != nil {
		return err
	}
	fmt.Fprintf(out, "Saved results to %s\n", c.cfg.Pipeline.Output)
	export.Preview(out, table, export.PreviewWidth)
	return nil
}

// progress is the terminal side channel: count/total and the file just finished.
type progress struct {
	w       io.Writer
	enabled bool
	bar     *progressbar.ProgressBar
}

const progressNameWidth = 30

func (p *progress) start(total int) {
	if !p.enabled || total <= 0 {
		return
	}
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.w),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("Processing"),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionClearOnFinish(),
	)
}

func (p *progress) step(done, _ int, filename string) {
	if p.bar == nil {
		return
	}
	p.bar.Describe(shorten(filename, progressNameWidth))
	_ = p.bar.Set(done)
}

func (p *progress) finish() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
	p.bar = nil
}

func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
