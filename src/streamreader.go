package main

import (
	// stdlib
	"context"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	// internal
	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/config"
	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/enums"
	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/indexed"

	// external
	"gocv.io/x/gocv"
)

// Source of frames, false once the input is exhausted
type frameSource interface {
	Read(img *gocv.Mat) bool
	Close() error
}

// Still images of a folder in name order
type folderSource struct {
	names []string
	next  int
}

func (f *folderSource) Read(img *gocv.Mat) bool {
	if f.next >= len(f.names) {
		return false
	}
	read := gocv.IMRead(f.names[f.next], gocv.IMReadColor)
	defer read.Close()
	f.next++
	read.CopyTo(img)
	return true
}

func (f *folderSource) Close() error { return nil }

func openSource(logger *slog.Logger, cfg *config.ConfigFile) (frameSource, error) {
	input_type := enums.InputTypes.Parse(cfg.Input.Type)
	if input_type == nil {
		logger.Error(
			"No valid input type provided. Shutting down...",
			"provided value", cfg.Input.Type)
		return nil, ERR_INVALID_CONFIG
	}

	switch *input_type {
	case enums.InputFile:
		return gocv.VideoCaptureFile(cfg.Input.Path)
	case enums.InputWebcam:
		return gocv.VideoCaptureDevice(cfg.Input.Device)
	case enums.InputIPC:
		return gocv.OpenVideoCapture(cfg.Input.Path)
	default:
		names, err := filepath.Glob(filepath.Join(cfg.Input.Path, cfg.Input.Pattern))
		if err != nil {
			return nil, err
		}
		slices.Sort(names)
		logger.Info("Folder input", "images", len(names), "pattern", cfg.Input.Pattern)
		return &folderSource{names: names}, nil
	}
}

func streamreader(
	ctx context.Context,
	parent_logger *slog.Logger,
	cfg *config.ConfigFile,
	mat_chan chan<- indexed.Indexed[gocv.Mat],
) error {
	defer close(mat_chan)

	logger := parent_logger.With("coroutine", "streamreader")

	input_stream, err := openSource(logger, cfg)
	if err != nil {
		logger.Error(
			"Can't open input",
			"type", cfg.Input.Type,
			"address", cfg.Input.Path,
			"err", err)
		return ERR_BAD_INPUT
	}
	defer input_stream.Close()

	var frame_id uint64 = 0

	for {
		select {
		case <-ctx.Done():
			logger.Info("Cancelled by context")
			return context.Canceled
		default:
			// Reciever of this is responsible for closing
			img := gocv.NewMat()
			if !input_stream.Read(&img) {
				img.Close()
				logger.Info("Stream ended", "stream", cfg.Input.Path, "frames", frame_id)
				return nil
			}
			if img.Empty() {
				logger.Warn("Empty frame received, skipping", "stream", cfg.Input.Path)
				img.Close()
				continue
			}

			select {
			case <-ctx.Done():
				img.Close()
				logger.Info("Cancelled by context")
				return context.Canceled
			case mat_chan <- indexed.NewIndexed(frame_id, time.Now(), img):
				frame_id++
			}
		}
	}
}
