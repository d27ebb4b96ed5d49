package main

import (
	"context"
	"log/slog"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/assoc"
	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/config"
	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/gset"
	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/gsma"
	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/indexed"
)

const stat_window = 64

type statistics struct {
	frames, failed uint64
	since_tick     uint64

	fps      *gsma.SMA[float64]
	elapsed  *gsma.SMA[float64]
	points   *gsma.SMA[int]
	jitter   *gsma.SMA[float64]
	matched  *gsma.SMA[float64]
	markers  gset.Set[int]
	previous []r2.Vec
	radius   float64
}

func newStatistics(jitter_radius float64) *statistics {
	s := &statistics{radius: jitter_radius}
	// capacities are constant and valid
	s.fps, _ = gsma.NewSMA[float64](5)
	s.elapsed, _ = gsma.NewSMA[float64](stat_window)
	s.points, _ = gsma.NewSMA[int](stat_window)
	s.jitter, _ = gsma.NewSMA[float64](stat_window)
	s.matched, _ = gsma.NewSMA[float64](stat_window)
	return s
}

func (s *statistics) add(d Detections) {
	s.frames++
	s.since_tick++
	if d.Failed {
		s.failed++
	}
	s.elapsed.Recalc(float64(d.Elapsed.Microseconds()) / 1000)
	s.points.Recalc(len(d.Points))

	current := make([]r2.Vec, 0, len(d.Points))
	for _, p := range d.Points {
		current = append(current, p.Pixel())
		if p.HasMarkerID() {
			s.markers.Add(p.MarkerID())
		}
	}
	if len(s.previous) > 0 && len(current) > 0 && s.radius > 0 {
		assocs := assoc.Associate(s.previous, current, s.radius)
		for _, a := range assocs {
			s.jitter.Recalc(a.Distance)
		}
		s.matched.Recalc(float64(len(assocs)) / float64(max(len(s.previous), len(current))))
	}
	s.previous = current
}

func (s *statistics) tick(logger *slog.Logger, period time.Duration) {
	s.fps.Recalc(float64(s.since_tick) / period.Seconds())
	s.since_tick = 0
	logger.Info(
		"Stats",
		"frames processed", s.frames,
		"failed", s.failed,
		"frames per second", s.fps.Show(),
		"recognition ms", s.elapsed.Show(),
		"points per frame", s.points.Show(),
		"jitter px", s.jitter.Show(),
		"matched share", s.matched.Show(),
		"marker ids", s.markers.String())
}

func stat(
	ctx context.Context,
	parent_logger *slog.Logger,
	cfg *config.ConfigFile,
	in_chan <-chan indexed.Indexed[Detections],
) error {
	logger := parent_logger.With("coroutine", "stat")

	period := time.Second * time.Duration(cfg.Logging.StatPeriodSec)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	stats := newStatistics(cfg.Logging.JitterRadius)
	for {
		select {
		case <-ctx.Done():
			logger.Info("Cancelled by context")
			return context.Canceled
		case frame, ok := <-in_chan:
			if !ok {
				stats.tick(logger, period)
				return nil
			}
			stats.add(frame.Value())
		case <-ticker.C:
			stats.tick(logger, period)
		}
	}
}
