package geometry

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Direction is the side of an upcoming turn.
type Direction string

const (
	DirStraight Direction = "straight"
	DirLeft     Direction = "left"
	DirRight    Direction = "right"
)

// Band classifies the magnitude of a heading change.
type Band string

const (
	BandStraight Band = "straight" // < 15 degrees
	BandSlight   Band = "slight"   // 15 - 45
	BandNormal   Band = "normal"   // 45 - 120
	BandSharp    Band = "sharp"    // 120 - 170
	BandUTurn    Band = "u-turn"   // >= 170
	BandArrival  Band = "arrival"  // next node is the destination, no angle
)

// Band boundaries in degrees.
const (
	slightMin = 15
	normalMin = 45
	sharpMin  = 120
	uTurnMin  = 170
)

// Turn is a classified heading change at a route node.
// Angle is the absolute deviation in degrees; the side lives in Direction.
type Turn struct {
	Band      Band
	Direction Direction
	Angle     float64
}

func (t Turn) String() string {
	if t.Band == BandArrival {
		return "arrival"
	}
	if t.Band == BandStraight {
		return "straight"
	}
	return fmt.Sprintf("%s %s (%.1f deg)", t.Band, t.Direction, t.Angle)
}

// ClassifyTurn classifies a normalized heading delta in degrees.
// A positive delta is a right turn, negative is left; magnitudes under
// 15 degrees count as straight ahead.
func ClassifyTurn(delta float64) Turn {
	delta = NormalizeAngle(delta)
	abs := delta
	if abs < 0 {
		abs = -abs
	}

	t := Turn{Angle: abs}
	switch {
	case abs < slightMin:
		t.Band = BandStraight
		t.Direction = DirStraight
		return t
	case abs >= uTurnMin:
		t.Band = BandUTurn
	case abs >= sharpMin:
		t.Band = BandSharp
	case abs >= normalMin:
		t.Band = BandNormal
	default:
		t.Band = BandSlight
	}

	if delta > 0 {
		t.Direction = DirRight
	} else {
		t.Direction = DirLeft
	}
	return t
}

// TurnAt classifies the turn a traveler makes at positions[i]:
// the heading arriving from positions[i-1] against the heading leaving
// toward positions[i+1]. i must be an interior index.
func TurnAt(positions []r3.Vec, i int) Turn {
	in := Heading2D(positions[i-1], positions[i])
	out := Heading2D(positions[i], positions[i+1])
	return ClassifyTurn(out - in)
}

// TurnPoint marks a non-straight turn at a route index.
type TurnPoint struct {
	Index int
	Turn  Turn
}

// RouteTurns scans a polyline and reports every interior node whose
// heading change exceeds the straight band. Fewer than three positions
// cannot contain a turn.
func RouteTurns(positions []r3.Vec) []TurnPoint {
	if len(positions) < 3 {
		return nil
	}
	var turns []TurnPoint
	for i := 1; i < len(positions)-1; i++ {
		t := TurnAt(positions, i)
		if t.Band != BandStraight {
			turns = append(turns, TurnPoint{Index: i, Turn: t})
		}
	}
	return turns
}

// RouteHeadings synthesizes a heading for every node of a polyline.
// Endpoints take the heading of their single adjacent segment; interior
// nodes take the direction from the previous to the following node.
func RouteHeadings(positions []r3.Vec) []float64 {
	headings := make([]float64, len(positions))
	for i := range positions {
		switch {
		case len(positions) == 1:
			headings[i] = 0
		case i == 0:
			headings[i] = Heading2D(positions[0], positions[1])
		case i == len(positions)-1:
			headings[i] = headings[i-1]
		default:
			headings[i] = Heading2D(positions[i-1], positions[i+1])
		}
	}
	return headings
}
