package main

import (
	// stdlib
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	// internal
	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/config"
	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/enums"
	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/indexed"
	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/rpath"

	// external
	"github.com/google/uuid"
	"github.com/lmittmann/tint"
	"gocv.io/x/gocv"
	"golang.org/x/sync/errgroup"
)

const (
	default_cfg_path string = "../cfg/config.default.toml"
)

var (
	cfg_path    string
	create_cfg  bool
	groups_path string
	exe_dir     string
)

func init() {
	var err error

	exe_dir, err = rpath.ExecutableDir()
	if err != nil {
		slog.Error("Can't find the executable's location", "error", err)
		return
	}

	flag.StringVar(
		&cfg_path, "config",
		default_cfg_path,
		"Path to config file")
	flag.BoolVar(
		&create_cfg, "create-config",
		false,
		"Write the default configuration to the -config path and exit")
	flag.StringVar(
		&groups_path, "groups",
		"",
		"Normalize this group configuration file instead of running recognition")
}

func newLogger(level string) *slog.Logger {
	var log_level slog.Level

	parsed := enums.LoggingLevels.Parse(level)
	switch {
	case parsed == nil:
		slog.Warn(
			"No valid logging level provided. Defaulting to LevelError",
			"provided value", level)
		log_level = slog.LevelError
	case *parsed == enums.LoggingLevelDebug:
		log_level = slog.LevelDebug
	case *parsed == enums.LoggingLevelInfo:
		log_level = slog.LevelInfo
	case *parsed == enums.LoggingLevelWarn:
		log_level = slog.LevelWarn
	default:
		log_level = slog.LevelError
	}

	return slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level:      log_level,
		TimeFormat: time.RFC3339,
		AddSource:  true,
	}))
}

func main() {
	flag.Parse()

	config_path := rpath.Convert(exe_dir, cfg_path)

	if create_cfg {
		if err := config.CreateDefault(config_path); err != nil {
			slog.Error("Can't create config file", "path", config_path, "error", err)
			os.Exit(1)
		}
		slog.Info("Default config written", "path", config_path)
		return
	}

	cfg, err := config.Unmarshal(config_path)
	if err != nil {
		slog.Error("Config file not loaded. Shutting down...", "provided path", config_path, "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging.Level)

	if err := cfg.Validate(); err != nil {
		logger.Error("Config file invalid. Shutting down...", "provided path", config_path, "error", err)
		os.Exit(1)
	}

	if groups_path != "" {
		err := groupsTool(logger, cfg,
			rpath.Convert(exe_dir, groups_path),
			rpath.Convert(exe_dir, cfg.Groups.Output))
		if err != nil {
			logger.Error("Group configuration failed", "error", err)
			os.Exit(1)
		}
		return
	}

	run := uuid.New()
	logger.Info("Starting...", "run", run, "method", cfg.Recognition.Method)

	if err := pipeline(context.Background(), logger, cfg, run); err != nil {
		logger.Error("Stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Stopped")
}

func pipeline(ctx context.Context, logger *slog.Logger, cfg *config.ConfigFile, run uuid.UUID) error {
	if cfg.Input.Type != enums.InputWebcam.Value {
		cfg.Input.Path = rpath.Convert(exe_dir, cfg.Input.Path)
	}

	eg, child_ctx := errgroup.WithContext(ctx)
	var stages sync.WaitGroup
	stage := func(f func() error) {
		stages.Add(1)
		eg.Go(func() error {
			defer stages.Done()
			return f()
		})
	}

	buffer := int(cfg.Workers.Buffer)
	frames_chan := make(chan indexed.Indexed[gocv.Mat], buffer)
	unsorted_chan := make(chan indexed.Indexed[Detections], buffer)
	sorted_chan := make(chan indexed.Indexed[Detections], buffer)

	new_sink := func(name string, with_mat bool, f func(<-chan indexed.Indexed[Detections]) error) sink {
		c := make(chan indexed.Indexed[Detections], buffer)
		stage(func() error { return f(c) })
		return sink{name: name, with_mat: with_mat, out: c}
	}

	sinks := []sink{
		new_sink("stat", false, func(in <-chan indexed.Indexed[Detections]) error {
			return stat(child_ctx, logger, cfg, in)
		}),
	}
	if cfg.Output.MQTT.Enabled {
		sinks = append(sinks, new_sink("mqtt", false, func(in <-chan indexed.Indexed[Detections]) error {
			return publisher(child_ctx, logger, cfg, run, in)
		}))
	}
	if cfg.Output.SQLite.Enabled {
		path := rpath.Convert(exe_dir, cfg.Output.SQLite.Path)
		sinks = append(sinks, new_sink("sqlite", false, func(in <-chan indexed.Indexed[Detections]) error {
			return sqlitesink(child_ctx, logger, path, run, in)
		}))
	}
	if cfg.Webserver.Enabled {
		sinks = append(sinks, new_sink("webplayer", true, func(in <-chan indexed.Indexed[Detections]) error {
			return webplayer(child_ctx, logger, cfg, in)
		}))
	}

	stage(func() error {
		return streamreader(child_ctx, logger, cfg, frames_chan)
	})
	stage(func() error {
		return recognizers(child_ctx, logger, cfg, frames_chan, unsorted_chan)
	})
	stage(func() error {
		return sorter(child_ctx, logger, unsorted_chan, sorted_chan)
	})
	stage(func() error {
		return dispatcher(child_ctx, logger, sorted_chan, sinks)
	})

	drained := make(chan struct{})
	go func() {
		stages.Wait()
		close(drained)
	}()

	eg.Go(func() error {
		return control(child_ctx, logger, drained)
	})

	err := eg.Wait()
	if errors.Is(err, ERR_INTERRUPTED_BY_USER) {
		return nil
	}
	return err
}

func control(ctx context.Context, parent_logger *slog.Logger, drained <-chan struct{}) error {
	logger := parent_logger.With("coroutine", "control")

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt,
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGINT)
	defer signal.Stop(interrupt)

	select {
	case <-ctx.Done():
		logger.Info("Cancelled by context")
		return context.Canceled
	case <-drained:
		logger.Info("Input processed")
		return nil
	case <-interrupt:
		logger.Info("Cancelled by user")
		return ERR_INTERRUPTED_BY_USER
	}
}
