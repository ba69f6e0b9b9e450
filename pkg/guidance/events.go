// Package guidance defines the events a navigation session emits and the
// user-facing phrasing a voice layer renders from them. Rendering to audio
// is an external concern; this package stops at text.
package guidance

import "github.com/wayfarer-nav/wayfarer/pkg/geometry"

// Kind tags a guidance event.
type Kind string

const (
	KindTurn     Kind = "turn"
	KindDistance Kind = "distance"
	KindArrived  Kind = "arrived"
	KindOffRoute Kind = "off_route"
)

// Event is one guidance fact produced for a pose update. Events are
// transient: the session emits them in order and never replays them.
//
// Turn is set for KindTurn. DistanceMeters carries the distance to the
// turn for KindTurn and the remaining route distance for KindDistance.
// Announce marks events whose spoken Instruction should actually be
// voiced; distance updates below the configured reporting delta keep
// Announce false so the voice layer stays quiet.
type Event struct {
	Kind           Kind
	Instruction    string
	Turn           *geometry.Turn
	DistanceMeters float64
	Announce       bool
}
