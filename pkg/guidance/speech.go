package guidance

import (
	"fmt"
	"math"

	"github.com/wayfarer-nav/wayfarer/pkg/geometry"
)

// DescribeDistance renders a distance in meters as a spoken phrase.
// Precision degrades with range: exact under 10 m, nearest 5 m under
// 100 m, nearest 10 m under 1 km, kilometers beyond.
func DescribeDistance(meters float64) string {
	switch {
	case meters < 10:
		return fmt.Sprintf("%d meters", int(meters))
	case meters < 100:
		return fmt.Sprintf("%d meters", int(math.Round(meters/5)*5))
	case meters < 1000:
		return fmt.Sprintf("%d meters", int(math.Round(meters/10)*10))
	default:
		return fmt.Sprintf("%.1f kilometers", meters/1000)
	}
}

// TurnInstruction phrases an upcoming turn, optionally prefixed with the
// distance to it: "In 15 meters, sharp left" / "make a U-turn".
func TurnInstruction(t geometry.Turn, distance string) string {
	var action string
	switch t.Band {
	case geometry.BandUTurn:
		action = "make a U-turn"
	case geometry.BandStraight:
		action = "continue straight"
	default:
		action = fmt.Sprintf("%s %s", t.Band, t.Direction)
	}
	if distance != "" {
		return fmt.Sprintf("In %s, %s", distance, action)
	}
	return action
}

// DistanceUpdate phrases a remaining-distance announcement.
func DistanceUpdate(distance string) string {
	return fmt.Sprintf("Continue for %s", distance)
}

// ArrivalAnnouncement phrases the arrival message.
func ArrivalAnnouncement() string {
	return "You have reached your destination"
}

// OffRouteAnnouncement phrases the warning emitted when replanning fails
// and guidance continues on the stale route.
func OffRouteAnnouncement() string {
	return "You are off route, trying to get you back on track"
}
