package session

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the guidance policy constants. The turn-band boundaries are
// structural (see pkg/geometry); everything here is tunable policy.
type Config struct {
	// ArrivalRadius is how close (meters) a pose must come to the next
	// route node before it counts as reached. Reaching the final node
	// within this radius ends the session in the arrived state.
	ArrivalRadius float64 `yaml:"arrival_radius"`

	// DeviationLimit is the maximum perpendicular distance (meters) from
	// the expected route segment before replanning triggers.
	DeviationLimit float64 `yaml:"deviation_limit"`

	// TurnLookahead is the along-route distance (meters) at which an
	// upcoming turn is announced.
	TurnLookahead float64 `yaml:"turn_lookahead"`

	// DistanceDelta is the minimum change in remaining distance (meters)
	// before a distance update is marked for announcement again.
	DistanceDelta float64 `yaml:"distance_delta"`

	// PoseBuffer and EventBuffer size the ordered intake and outbound
	// channels. Back-pressure beyond the buffers is the caller's problem;
	// ordering is guaranteed either way.
	PoseBuffer  int `yaml:"pose_buffer"`
	EventBuffer int `yaml:"event_buffer"`
}

// DefaultConfig returns the tuned defaults: arrive within 2 m, replan past
// 5 m of deviation, announce turns 10 m out, re-announce distance every
// 1 m of progress.
func DefaultConfig() Config {
	return Config{
		ArrivalRadius:  2.0,
		DeviationLimit: 5.0,
		TurnLookahead:  10.0,
		DistanceDelta:  1.0,
		PoseBuffer:     64,
		EventBuffer:    64,
	}
}

// LoadConfig reads a YAML config file over the defaults, so a file may set
// only the fields it cares about.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing session config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.ArrivalRadius <= 0 {
		return fmt.Errorf("arrival_radius must be positive, got %g", c.ArrivalRadius)
	}
	if c.DeviationLimit <= 0 {
		return fmt.Errorf("deviation_limit must be positive, got %g", c.DeviationLimit)
	}
	if c.TurnLookahead < 0 {
		return fmt.Errorf("turn_lookahead must not be negative, got %g", c.TurnLookahead)
	}
	if c.PoseBuffer < 1 || c.EventBuffer < 1 {
		return fmt.Errorf("pose_buffer and event_buffer must be at least 1")
	}
	return nil
}
