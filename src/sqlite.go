package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/detstore"
	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/indexed"
)

// Archives detections of the run in the SQLite store
func sqlitesink(
	ctx context.Context,
	parent_logger *slog.Logger,
	path string,
	run uuid.UUID,
	in_chan <-chan indexed.Indexed[Detections],
) error {
	logger := parent_logger.With("coroutine", "sqlitesink")

	db, err := detstore.NewDB(path)
	if err != nil {
		logger.Error("Can't open store", "path", path, "error", err)
		return fmt.Errorf("%w: %w", ERR_BAD_OUTPUT, err)
	}
	defer db.Close()
	logger.Info("Recording", "path", path, "run", run)

	var recorded uint64
	defer func() {
		logger.Info("Stopped", "frames recorded", recorded)
	}()

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
			d := frame.Value()
			// the write completes even when cancellation arrives meanwhile
			err := db.RecordFrame(context.WithoutCancel(ctx), run, frame.Id(), frame.Time(), d.Method.String(), d.Points)
			if err != nil {
				logger.Error("Can't record frame", "frame", frame.Id(), "error", err)
				return err
			}
			recorded++
		}
	}
}
