package main

import (
	"time"

	"gocv.io/x/gocv"

	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/recognition"
	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/trackpoint"
)

// Result of recognizing one frame
type Detections struct {
	// original frame for the web player, nil when it is disabled. The
	// receiver closes it
	Mat     *gocv.Mat
	Points  []trackpoint.TrackPoint
	Method  recognition.Method
	Elapsed time.Duration
	// recognition failed, Points is empty
	Failed bool
}

func (d Detections) Close() {
	if d.Mat != nil {
		d.Mat.Close()
	}
}

// Copy without the frame
func (d Detections) Bare() Detections {
	d.Mat = nil
	return d
}
