package detstore

import (
	"context"
	"image/color"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/trackpoint"
)

func TestRecordFrame(t *testing.T) {
	db, err := NewDB(filepath.Join(t.TempDir(), "detections.db"))
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	run := uuid.New()

	coded := trackpoint.New(r2.Vec{X: 10, Y: 20}, trackpoint.QualityBest)
	coded.SetMarkerID(7)
	points := []trackpoint.TrackPoint{
		coded,
		trackpoint.NewWithColor(r2.Vec{X: 30, Y: 40}, trackpoint.QualityProbable, r2.Vec{X: 31, Y: 41}, color.RGBA{R: 255, A: 255}),
	}
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, db.RecordFrame(ctx, run, 3, now, "multicolor", points))
	require.NoError(t, db.RecordFrame(ctx, run, 4, now, "multicolor", nil))

	n, err := db.Frames(ctx, run)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows, err := db.Points(ctx, run, 3)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 10., rows[0].Point.X)
	require.NotNil(t, rows[0].Point.MarkerID)
	assert.Equal(t, 7, *rows[0].Point.MarkerID)
	assert.Nil(t, rows[0].Point.ColorX)
	assert.Equal(t, "multicolor", rows[0].Method)
	assert.True(t, now.Equal(rows[0].Time))

	assert.Equal(t, trackpoint.QualityProbable, rows[1].Point.Quality)
	require.NotNil(t, rows[1].Point.ColorX)
	assert.Equal(t, 31., *rows[1].Point.ColorX)
	assert.Equal(t, "#ff0000", rows[1].Point.Color)
	assert.Nil(t, rows[1].Point.MarkerID)

	assert.Error(t, db.RecordFrame(ctx, run, 3, now, "multicolor", nil), "frame recorded twice")
}
