package main

import (
	"context"
	"log/slog"

	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/indexed"
)

type sink struct {
	name string
	// only one sink receives the frame itself
	with_mat bool
	out      chan<- indexed.Indexed[Detections]
}

// Fans sorted detections out to the enabled sinks and closes them when
// the input is drained
func dispatcher(
	ctx context.Context,
	parent_logger *slog.Logger,
	in_chan <-chan indexed.Indexed[Detections],
	sinks []sink,
) error {
	defer func() {
		for _, s := range sinks {
			close(s.out)
		}
	}()

	logger := parent_logger.With("coroutine", "dispatcher")
	names := make([]string, 0, len(sinks))
	for _, s := range sinks {
		names = append(names, s.name)
	}
	logger.Info("Started", "sinks", names)

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
			mat_sent := false
			for _, s := range sinks {
				out := indexed.Map(frame, frame.Value().Bare())
				if s.with_mat {
					out = frame
				}
				select {
				case s.out <- out:
					mat_sent = mat_sent || s.with_mat
				case <-ctx.Done():
					if !mat_sent {
						frame.Value().Close()
					}
					logger.Info("Cancelled by context")
					return context.Canceled
				}
			}
			if !mat_sent {
				frame.Value().Close()
			}
		}
	}
}
