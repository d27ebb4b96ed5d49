package synapse

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/trackpoint"
)

func TestPayload(t *testing.T) {
	run := uuid.New()
	points := []trackpoint.TrackPoint{trackpoint.New(r2.Vec{X: 1.5, Y: 2}, trackpoint.QualityBest)}
	cmd := NewDetections("reco", run, 42, time.Unix(10, 0).UTC(), "multicolor", points)

	payload, err := cmd.ToPayload()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, TypeDetections, decoded["type"])
	assert.Equal(t, run.String(), decoded["run"])
	assert.NotEqual(t, uuid.Nil.String(), decoded["id"])

	message := decoded["message"].(map[string]any)
	assert.EqualValues(t, 42, message["frame"])
	assert.Equal(t, "multicolor", message["method"])
	point := message["points"].([]any)[0].(map[string]any)
	assert.EqualValues(t, 1.5, point["x"])
	assert.EqualValues(t, 100, point["quality"])
	assert.NotContains(t, point, "marker_id")
}
