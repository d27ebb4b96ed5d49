package recognition

import (
	"errors"
	"fmt"

	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/marker"
)

var ERR_UNKNOWN_METHOD = errors.New("Can't find recognition method")

type Method uint8

const (
	Casern Method = iota
	Hermes
	Japan
	// single hsv range, point at the blob center
	Color
	// several hsv ranges, optionally refined by black dot or code
	MultiColor
	// aruco codes only
	Code
)

var method_names = [...]string{
	Casern:     "casern",
	Hermes:     "hermes",
	Japan:      "japan",
	Color:      "color",
	MultiColor: "multicolor",
	Code:       "code",
}

func (m Method) String() string {
	if int(m) < len(method_names) {
		return method_names[m]
	}
	return fmt.Sprintf("method(%d)", m)
}

func ParseMethod(name string) (Method, error) {
	for m, n := range method_names {
		if n == name {
			return Method(m), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ERR_UNKNOWN_METHOD, name)
}

// Threshold sweep methods working on whole contours
func (m Method) IsContour() bool {
	return m == Casern || m == Hermes || m == Japan
}

func (m Method) Family() (marker.Family, bool) {
	switch m {
	case Casern:
		return marker.Casern, true
	case Hermes:
		return marker.Hermes, true
	case Japan:
		return marker.Japan, true
	}
	return 0, false
}
