package main

import (
	"context"
	"log/slog"

	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/gheap"
	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/indexed"
)

// Restores frame order behind the parallel recognizers
func sorter(
	ctx context.Context,
	parent_logger *slog.Logger,
	unsorted_frames_chan <-chan indexed.Indexed[Detections],
	sorted_frames_chan chan<- indexed.Indexed[Detections],
) error {
	defer close(sorted_frames_chan)

	logger := parent_logger.With("coroutine", "sorter")

	queue := gheap.Heap[indexed.Indexed[Detections]]{}
	var expected_frame uint64 = 0

	send := func(frames []indexed.Indexed[Detections]) error {
		for i, frame := range frames {
			select {
			case <-ctx.Done():
				for _, f := range frames[i:] {
					f.Value().Close()
				}
				logger.Info("Cancelled by context")
				return context.Canceled
			case sorted_frames_chan <- frame:
				expected_frame = frame.Id() + 1
			}
		}
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("Cancelled by context")
			return context.Canceled
		case frame, ok := <-unsorted_frames_chan:
			if !ok {
				// input drained, the rest goes out in order even with gaps
				logger.Debug("Input closed", "queued", queue.Len())
				return send(queue.PopWhile(func(indexed.Indexed[Detections]) bool { return true }))
			}
			if frame.Id() < expected_frame {
				logger.Warn("Bad index", "expected", expected_frame, "got", frame.Id())
				frame.Value().Close()
				continue
			}
			queue.Push(frame)
			ready := queue.PopWhile(func(f indexed.Indexed[Detections]) bool {
				if f.Id() != expected_frame {
					return false
				}
				expected_frame++
				return true
			})
			if err := send(ready); err != nil {
				return err
			}
			logger.Debug("Queue", "len", queue.Len())
		}
	}
}
