package main

import (
	"fmt"
	"net"
	"time"

	"github.com/spf13/cobra"
	"github.com/viant/afs/url"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/joseph-ayodele/contracts-parser/internal/ingest"
)

func (c *cli) newWatchCmd() *cobra.Command {
	var (
		healthAddr string
		debounce   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run the batch whenever documents in the input folder change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runWatch(cmd, healthAddr, debounce)
		},
	}
	cmd.Flags().StringVar(&healthAddr, "health-addr", ":8081", "gRPC health service listen address")
	cmd.Flags().DurationVar(&debounce, "debounce", 2*time.Second, "quiet period before a change triggers a run")
	return cmd
}

func (c *cli) runWatch(cmd *cobra.Command, healthAddr string, debounce time.Duration) error {
	ctx := cmd.Context()
	input, err := ingest.NormalizeLocation(c.cfg.Pipeline.Input)
	if err != nil {
		return err
	}
	if url.Scheme(input, "file") != "file" {
		return fmt.Errorf("watch needs a local folder, got %q", c.cfg.Pipeline.Input)
	}

	a, err := newApp(ctx, c.cfg, c.logger, true)
	if err != nil {
		return err
	}
	defer a.Close()

	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:      []string{url.Path(input)},
		Extensions: c.cfg.Pipeline.Extensions,
		Recursive:  c.cfg.Pipeline.Recursive,
		SkipHidden: c.cfg.Pipeline.SkipHidden,
		Debounce:   debounce,
	}, c.logger)
	if err != nil {
		return err
	}

	lis, err := net.Listen("tcp", healthAddr)
	if err != nil {
		c.logger.Error("watch.health.listen_failed", "addr", healthAddr, "error", err)
		return err
	}
	srv := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c.logger.Info("watch.health.serving", "addr", lis.Addr().String())
		return srv.Serve(lis)
	})
	g.Go(func() error {
		<-gctx.Done()
		hs.Shutdown()
		srv.GracefulStop()
		return nil
	})
	g.Go(func() error {
		rerun := func(reason string) {
			c.logger.Info("watch.run.start", "reason", reason, "input", c.cfg.Pipeline.Input)
			status := healthpb.HealthCheckResponse_SERVING
			res, err := c.batch(gctx, cmd, a)
			if err == nil {
				err = c.publish(gctx, cmd.OutOrStdout(), a, res)
			}
			if err != nil {
				c.logger.Error("watch.run.failed", "error", err)
				status = healthpb.HealthCheckResponse_NOT_SERVING
			}
			hs.SetServingStatus("", status)
		}

		rerun("startup")
		for {
			select {
			case <-gctx.Done():
				return nil
			case paths, ok := <-events:
				if !ok {
					return nil
				}
				c.logger.Info("watch.change", "paths", len(paths))
				rerun("change")
			case err, ok := <-errs:
				if !ok {
					errs = nil
					continue
				}
				c.logger.Warn("watch.error", "error", err)
			}
		}
	})

	err = g.Wait()
	c.logger.Info("watch.stopped")
	if ctx.Err() != nil {
		return nil
	}
	return err
}
