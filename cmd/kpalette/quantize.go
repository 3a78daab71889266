package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/hupe1980/kpalette"
	"github.com/hupe1980/kpalette/blobstore"
	"github.com/hupe1980/kpalette/frames"
	"github.com/hupe1980/kpalette/raster"
	"github.com/hupe1980/kpalette/report"
)

// quantizer runs one decode, cluster, render, write cycle.
type quantizer struct {
	cfg     *Config
	stores  storeFactory
	logger  *kpalette.Logger
	metrics *kpalette.BasicMetricsCollector
	out     io.Writer
}

func newQuantizer(cfg *Config, logger *kpalette.Logger, out io.Writer) *quantizer {
	return &quantizer{
		cfg:     cfg,
		stores:  storeFactory{cfg: cfg.Storage},
		logger:  logger,
		metrics: &kpalette.BasicMetricsCollector{},
		out:     out,
	}
}

func (q *quantizer) Run(ctx context.Context, input, output string) (*kpalette.Result, error) {
	outFormat, err := raster.OutputFormat(output)
	if err != nil {
		return nil, err
	}

	img, err := q.load(ctx, input)
	if err != nil {
		return nil, err
	}

	opts, err := q.cfg.Options()
	if err != nil {
		return nil, err
	}
	opts = append(opts,
		kpalette.WithLogger(q.logger),
		kpalette.WithMetricsCollector(q.metrics),
	)

	if q.cfg.Frames != "" {
		store, dir, err := q.stores.openDir(ctx, q.cfg.Frames)
		if err != nil {
			return nil, fmt.Errorf("frames: %w", err)
		}
		fw, err := frames.New(store, frames.WithDir(dir))
		if err != nil {
			return nil, err
		}
		opts = append(opts, kpalette.WithObserver(fw))
	}

	res, err := kpalette.Cluster(ctx, kpalette.PixelSetFromImage(img), q.cfg.K, opts...)
	if err != nil {
		if res == nil || ctx.Err() == nil {
			return nil, err
		}
		return res, q.savePartial(ctx, res, output, outFormat, err)
	}

	if err := q.save(ctx, res, output, outFormat); err != nil {
		return nil, err
	}

	if q.cfg.Report != "" {
		store, name, err := q.stores.open(ctx, q.cfg.Report)
		if err != nil {
			return nil, fmt.Errorf("report: %w", err)
		}
		if err := report.Write(ctx, store, name, report.New(res)); err != nil {
			return nil, err
		}
	}

	q.printSummary(res)
	return res, nil
}

// savePartial writes the last completed pass of an interrupted run and
// returns cause. The write ignores the cancellation of ctx.
func (q *quantizer) savePartial(ctx context.Context, res *kpalette.Result, output string, f raster.Format, cause error) error {
	if err := q.save(context.WithoutCancel(ctx), res, output, f); err != nil {
		q.logger.WarnContext(ctx, "interrupted, partial result discarded", "output", output, "error", err)
		return errors.Join(cause, fmt.Errorf("save partial result: %w", err))
	}
	q.logger.WarnContext(ctx, "interrupted, saved partial result",
		"output", output, "iterations", res.Iterations)
	return cause
}

func (q *quantizer) load(ctx context.Context, input string) (image.Image, error) {
	store, name, err := q.stores.open(ctx, input)
	if err != nil {
		return nil, err
	}

	data, err := blobstore.ReadAll(ctx, store, name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", input, err)
	}

	img, _, err := raster.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", input, err)
	}
	return img, nil
}

func (q *quantizer) save(ctx context.Context, res *kpalette.Result, output string, f raster.Format) error {
	var (
		img image.Image
		err error
	)
	if len(q.cfg.Isolate) > 0 {
		img, err = raster.Isolate(res, q.cfg.Isolate...)
	} else {
		img, err = raster.Render(res)
	}
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := raster.Encode(&buf, img, f); err != nil {
		return err
	}

	store, name, err := q.stores.open(ctx, output)
	if err != nil {
		return err
	}
	if err := store.Put(ctx, name, buf.Bytes()); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	return nil
}

func (q *quantizer) printSummary(res *kpalette.Result) {
	status := "converged"
	if !res.Converged {
		status = "stopped at iteration limit"
	}
	fmt.Fprintf(q.out, "%d colors, %d iterations, %s (seed %d)\n", res.K(), res.Iterations, status, res.Seed)

	for _, s := range report.New(res).Swatches {
		fmt.Fprintf(q.out, "  %2d  %s  %5.1f%%  %d px\n", s.Index, s.Hex, s.Share*100, s.Pixels)
	}
}
