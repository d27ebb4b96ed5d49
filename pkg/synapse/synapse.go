package synapse

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/trackpoint"
)

const TypeDetections = "detections"

// Envelope of one recognized frame as published to the tracker
type Command struct {
	Id      uuid.UUID `json:"id"`
	Sender  string    `json:"sender"`
	Type    string    `json:"type"`
	Run     uuid.UUID `json:"run"`
	Message *Message  `json:"message"`
}

type Message struct {
	Frame  uint64                      `json:"frame"`
	Time   time.Time                   `json:"time"`
	Method string                      `json:"method"`
	Points []*trackpoint.ExportedPoint `json:"points"`
}

func NewDetections(sender string, run uuid.UUID, frame uint64, t time.Time, method string, points []trackpoint.TrackPoint) *Command {
	return &Command{
		Id:     uuid.New(),
		Sender: sender,
		Type:   TypeDetections,
		Run:    run,
		Message: &Message{
			Frame:  frame,
			Time:   t,
			Method: method,
			Points: trackpoint.ExportAll(points),
		},
	}
}

func (c *Command) ToPayload() ([]byte, error) {
	return json.Marshal(c)
}
