package main

import (
	// stdlib
	"context"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"time"

	// internal
	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/config"
	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/indexed"
	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/overlay"

	// external
	"github.com/hybridgroup/mjpeg"
	"gocv.io/x/gocv"
)

func webplayer(
	ctx context.Context,
	parent_logger *slog.Logger,
	cfg *config.ConfigFile,
	in_chan <-chan indexed.Indexed[Detections],
) error {
	logger := parent_logger.With("coroutine", "webplayer")

	output_stream := mjpeg.NewStream()

	mux := http.NewServeMux()
	mux.Handle("/", output_stream)

	server := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", cfg.Webserver.Port),
		Handler:      mux,
		ReadTimeout:  time.Duration(cfg.Webserver.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.Webserver.WriteTimeoutSec) * time.Second,
	}

	err_chan := make(chan error, 1)

	go func() {
		err_chan <- server.ListenAndServe()
	}()
	defer func() {
		shutdown_context, cancel := context.WithTimeout(
			context.Background(),
			time.Second*time.Duration(cfg.Webserver.ShutdownTimeoutSec))
		defer cancel()
		shutdown_initiated_timestamp := time.Now()
		err := server.Shutdown(shutdown_context)
		logger.Info(
			"Shut down",
			"shutdown time (sec)", time.Since(shutdown_initiated_timestamp).Seconds(),
			"error", err)
	}()

	logger.Info("Started", "port", cfg.Webserver.Port)

	trail := overlay.NewTrail(int(cfg.Webserver.Trail))
	resize := cfg.Webserver.W != 0 && cfg.Webserver.H != 0

	for {
		select {
		case <-ctx.Done():
			logger.Info("Cancelled by context", "timeout (sec)", cfg.Webserver.ShutdownTimeoutSec)
			return context.Canceled
		case err := <-err_chan:
			logger.Error("Error", "port", cfg.Webserver.Port, "error", err)
			return err
		case frame, ok := <-in_chan:
			if !ok {
				logger.Debug("Input closed")
				return nil
			}
			d := frame.Value()
			if d.Mat == nil {
				continue
			}
			img := d.Mat
			roi := cfg.Recognition.ROI.Rect(img.Cols(), img.Rows())
			overlay.Draw(img, roi, d.Points, trail)
			if cfg.Webserver.Trail > 0 {
				trail.Push(overlay.Pixels(d.Points))
			}

			if resize {
				gocv.Resize(*img, img, image.Pt(int(cfg.Webserver.W), int(cfg.Webserver.H)), 0, 0, gocv.InterpolationLinear)
			}
			buf, err := gocv.IMEncode(gocv.JPEGFileExt, *img)
			d.Close()
			if err != nil {
				logger.Error("Can't encode frame", "frame", frame.Id(), "error", err)
				return err
			}
			data := make([]byte, buf.Len())
			copy(data, buf.GetBytes())
			buf.Close()
			output_stream.UpdateJPEG(data)
		}
	}
}
