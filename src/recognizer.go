package main

import (
	// stdlib
	"context"
	"fmt"
	"log/slog"
	"time"

	// internal
	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/config"
	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/indexed"
	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/recognition"

	// external
	"gocv.io/x/gocv"
	"golang.org/x/sync/errgroup"
)

// Runs cfg.Workers.Recognizers workers on the frames. out is closed
// once every worker returned
func recognizers(
	ctx context.Context,
	parent_logger *slog.Logger,
	cfg *config.ConfigFile,
	in_chan <-chan indexed.Indexed[gocv.Mat],
	out_chan chan<- indexed.Indexed[Detections],
) error {
	defer close(out_chan)

	opts, err := cfg.RecognitionOptions()
	if err != nil {
		return fmt.Errorf("%w: %w", ERR_INVALID_CONFIG, err)
	}
	if opts.MultiColor.AutoCorrect && opts.Correction == nil {
		parent_logger.Warn("Auto correction needs a camera model, recognized points stay uncorrected")
	}

	eg, child_ctx := errgroup.WithContext(ctx)
	for worker := range cfg.Workers.Recognizers {
		logger := parent_logger.With("coroutine", "recognizer", "worker", worker)
		r, err := recognition.New(opts, logger)
		if err != nil {
			return fmt.Errorf("%w: %w", ERR_INVALID_CONFIG, err)
		}
		eg.Go(func() error {
			return recognizer(child_ctx, logger, cfg, r, in_chan, out_chan)
		})
	}
	return eg.Wait()
}

func recognizer(
	ctx context.Context,
	logger *slog.Logger,
	cfg *config.ConfigFile,
	r *recognition.Recognizer,
	in_chan <-chan indexed.Indexed[gocv.Mat],
	out_chan chan<- indexed.Indexed[Detections],
) error {
	for {
		select {
		case <-ctx.Done():
			logger.Info("Cancelled by context")
			return context.Canceled
		case frame, ok := <-in_chan:
			if !ok {
				logger.Debug("Input closed")
				return nil
			}
			img := frame.Value()
			roi := cfg.Recognition.ROI.Rect(img.Cols(), img.Rows())

			recognition_start := time.Now()
			points, err := r.MarkerPositions(img, roi)
			detections := Detections{
				Points:  points,
				Method:  r.Method(),
				Elapsed: time.Since(recognition_start),
			}
			if err != nil {
				// forwarded anyway, the sorter waits for every frame id
				logger.Warn("Recognition failed", "frame", frame.Id(), "error", err)
				detections.Points, detections.Failed = nil, true
			}
			logger.Debug("Recognized", "frame", frame.Id(), "points", len(points), "elapsed", detections.Elapsed)

			if cfg.Webserver.Enabled {
				detections.Mat = &img
			} else {
				img.Close()
			}

			select {
			case out_chan <- indexed.Map(frame, detections):
			case <-ctx.Done():
				detections.Close()
				logger.Info("Cancelled by context")
				return context.Canceled
			}
		}
	}
}
