// Package session runs the live guidance loop: it owns the navigation
// state machine, consumes pose updates in arrival order, evaluates them
// against the planned route, and emits guidance events.
//
// One Session has one logical owner. Poses enter through OnPose and are
// delivered to a single loop goroutine over an ordered channel; guidance
// leaves through the Events channel in emission order. No other mutable
// state crosses the goroutine boundary.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wayfarer-nav/wayfarer/pkg/geometry"
	"github.com/wayfarer-nav/wayfarer/pkg/guidance"
	"github.com/wayfarer-nav/wayfarer/pkg/keyframe"
	"github.com/wayfarer-nav/wayfarer/pkg/metrics"
	"github.com/wayfarer-nav/wayfarer/pkg/planner"
)

// Status is the session state machine position.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusPlanning   Status = "planning"
	StatusNavigating Status = "navigating"
	StatusReplanning Status = "replanning"
	StatusArrived    Status = "arrived"
	StatusStopped    Status = "stopped"
)

var (
	// ErrNoPose reports that no pose has been received yet.
	ErrNoPose = errors.New("no pose received yet")
	// ErrNoDestination reports that no destination has been set.
	ErrNoDestination = errors.New("no destination set")
	// ErrNoRoute reports that navigation was started before a route existed.
	ErrNoRoute = errors.New("no route calculated")
	// ErrAlreadyRunning reports a second StartNavigation on a live session.
	ErrAlreadyRunning = errors.New("navigation already in progress")
)

// Session drives guidance for one user over one keyframe graph.
type Session struct {
	// ID uniquely identifies the session across logs and metrics.
	ID string

	cfg   Config
	graph *keyframe.Graph
	log   *slog.Logger

	mu          sync.Mutex
	status      Status
	destination string
	route       *planner.Route
	points      []geometry.RoutePoint
	turns       []geometry.TurnPoint
	next        int // route index of the next node to reach

	lastPose geometry.Pose
	havePose bool

	announcedTurn int // route index of the last announced turn, -1 for none
	lastReported  float64
	haveReported  bool
	running       bool

	poseCh    chan geometry.Pose
	events    chan guidance.Event
	closed    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New creates an idle session over an already-built graph.
// A nil logger falls back to slog.Default.
func New(g *keyframe.Graph, cfg Config, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.New().String()
	return &Session{
		ID:            id,
		cfg:           cfg,
		graph:         g,
		log:           logger.With("session", id),
		status:        StatusIdle,
		announcedTurn: -1,
		poseCh:        make(chan geometry.Pose, cfg.PoseBuffer),
		events:        make(chan guidance.Event, cfg.EventBuffer),
		closed:        make(chan struct{}),
	}
}

// State is a point-in-time snapshot of the navigation state owned by a
// session: the active route, progress along it, and the latest pose.
type State struct {
	Status      Status
	Destination string
	Route       *planner.Route
	NextIndex   int
	LastPose    geometry.Pose
}

// State returns a consistent snapshot of the session's navigation state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Status:      s.status,
		Destination: s.destination,
		Route:       s.route,
		NextIndex:   s.next,
		LastPose:    s.lastPose,
	}
}

// Status returns the current state machine position.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Route returns the active route, or nil before planning.
func (s *Session) Route() *planner.Route {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.route
}

// CurrentIndex returns the route index of the next node to reach.
func (s *Session) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}

// Events is the ordered outbound guidance stream. It is closed by
// StopNavigation; consumers should drain it continuously, as emission
// blocks once the buffer fills.
func (s *Session) Events() <-chan guidance.Event {
	return s.events
}

// SetDestination records the target keyframe for the next CalculatePath.
// Fails with planner.ErrUnknownNode when the ID is not on the map.
func (s *Session) SetDestination(id string) error {
	if _, ok := s.graph.Node(id); !ok {
		return fmt.Errorf("destination %q: %w", id, planner.ErrUnknownNode)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destination = id
	return nil
}

// OnPose ingests a localization sample. Before navigation starts it only
// records the latest pose (CalculatePath needs one); once the loop runs,
// samples are queued to it in arrival order.
func (s *Session) OnPose(p geometry.Pose) {
	s.mu.Lock()
	s.lastPose = p
	s.havePose = true
	running := s.running
	s.mu.Unlock()

	if !running {
		return
	}
	select {
	case s.poseCh <- p:
	case <-s.closed:
	}
}

// CalculatePath plans from the keyframe nearest the latest pose to the
// destination. On success the session holds the fresh route and is ready
// for StartNavigation; on planner errors it stays idle and surfaces them.
func (s *Session) CalculatePath() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.havePose {
		return ErrNoPose
	}
	if s.destination == "" {
		return ErrNoDestination
	}

	s.status = StatusPlanning
	start, _ := planner.NearestNode(s.graph, s.lastPose.Pos)

	route, err := s.timedPlan(start.ID)
	if err != nil {
		s.status = StatusIdle
		return err
	}

	s.installRoute(route)
	s.status = StatusNavigating
	s.log.Info("route planned",
		"start", start.ID,
		"destination", s.destination,
		"nodes", route.Len(),
		"weight", route.Weight())
	return nil
}

// StartNavigation launches the guidance loop over the calculated route.
func (s *Session) StartNavigation() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrAlreadyRunning
	}
	if s.route == nil {
		return ErrNoRoute
	}

	s.running = true
	metrics.ActiveSessions.Inc()
	s.wg.Add(1)
	go s.loop()
	s.log.Info("navigation started", "destination", s.destination)
	return nil
}

// StopNavigation terminates the session from any state. The loop observes
// the stop at its next iteration boundary, never mid-evaluation; after
// StopNavigation returns, the Events channel is closed and the session is
// permanently stopped.
func (s *Session) StopNavigation() {
	s.closeOnce.Do(func() {
		close(s.closed)
		s.wg.Wait()

		s.mu.Lock()
		wasRunning := s.running
		s.running = false
		s.status = StatusStopped
		s.mu.Unlock()

		close(s.events)
		if wasRunning {
			metrics.ActiveSessions.Dec()
		}
		s.log.Info("navigation stopped")
	})
}

func (s *Session) loop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.closed:
			return
		case p := <-s.poseCh:
			s.step(p)
		}
	}
}

// step processes one pose update. Runs only on the loop goroutine.
func (s *Session) step(p geometry.Pose) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusNavigating {
		return
	}
	metrics.PosesProcessed.Inc()
	s.lastPose = p

	// Advance over every node the pose has reached; index movement is
	// monotonic, which is why poses must arrive in order.
	for s.next < len(s.points) &&
		geometry.Distance(p.Pos, s.points[s.next].Pos) < s.cfg.ArrivalRadius {
		s.next++
	}
	if s.next >= len(s.points) {
		s.arrive()
		return
	}

	if s.deviation(p) > s.cfg.DeviationLimit {
		s.replan(p)
		if s.status != StatusNavigating || s.next >= len(s.points) {
			return
		}
	}

	a := geometry.Evaluate(s.points, s.next, p)

	if tp, ok := s.upcomingTurn(); ok && tp.Index != s.announcedTurn {
		toTurn := a.DistanceToNext
		for i := s.next + 1; i <= tp.Index; i++ {
			toTurn += s.points[i].EdgeWeight
		}
		if toTurn <= s.cfg.TurnLookahead {
			turn := tp.Turn
			s.emit(guidance.Event{
				Kind:           guidance.KindTurn,
				Instruction:    guidance.TurnInstruction(turn, guidance.DescribeDistance(toTurn)),
				Turn:           &turn,
				DistanceMeters: toTurn,
				Announce:       true,
			})
			s.announcedTurn = tp.Index
		}
	}

	announce := !s.haveReported ||
		math.Abs(a.DistanceToDestination-s.lastReported) >= s.cfg.DistanceDelta
	if announce {
		s.lastReported = a.DistanceToDestination
		s.haveReported = true
	}
	s.emit(guidance.Event{
		Kind:           guidance.KindDistance,
		Instruction:    guidance.DistanceUpdate(guidance.DescribeDistance(a.DistanceToDestination)),
		DistanceMeters: a.DistanceToDestination,
		Announce:       announce,
	})
}

// deviation measures how far the pose strays from the expected segment:
// the edge arriving at the next node, or the next node itself when the
// route has not been entered yet.
func (s *Session) deviation(p geometry.Pose) float64 {
	if s.next == 0 {
		return geometry.Distance(p.Pos, s.points[0].Pos)
	}
	return geometry.PointSegmentDistance(p.Pos, s.points[s.next-1].Pos, s.points[s.next].Pos)
}

// upcomingTurn returns the first turn at or past the next node.
func (s *Session) upcomingTurn() (geometry.TurnPoint, bool) {
	for _, tp := range s.turns {
		if tp.Index >= s.next {
			return tp, true
		}
	}
	return geometry.TurnPoint{}, false
}

// replan recomputes the route from the nearest keyframe to the original
// destination. On failure the stale route stays active and an off-route
// event warns the user; guidance never goes silent.
func (s *Session) replan(p geometry.Pose) {
	s.status = StatusReplanning
	start, _ := planner.NearestNode(s.graph, p.Pos)

	route, err := s.timedPlan(start.ID)
	if err != nil {
		metrics.Replans.WithLabelValues("stale_route").Inc()
		s.log.Warn("replanning failed, keeping stale route",
			"start", start.ID, "destination", s.destination, "error", err)
		s.emit(guidance.Event{
			Kind:        guidance.KindOffRoute,
			Instruction: guidance.OffRouteAnnouncement(),
			Announce:    true,
		})
		s.status = StatusNavigating
		return
	}

	metrics.Replans.WithLabelValues("rerouted").Inc()
	s.installRoute(route)
	s.status = StatusNavigating
	s.log.Info("rerouted", "start", start.ID, "nodes", route.Len(), "weight", route.Weight())
}

func (s *Session) arrive() {
	s.status = StatusArrived
	s.emit(guidance.Event{
		Kind:        guidance.KindArrived,
		Instruction: guidance.ArrivalAnnouncement(),
		Announce:    true,
	})
	s.log.Info("arrived", "destination", s.destination)
}

// installRoute swaps in a fresh route wholesale and resets progress.
func (s *Session) installRoute(route *planner.Route) {
	s.route = route
	s.points = route.Points()
	s.turns = geometry.RouteTurns(route.Positions())
	s.next = 0
	s.announcedTurn = -1
	s.haveReported = false
}

func (s *Session) timedPlan(startID string) (*planner.Route, error) {
	t0 := time.Now()
	route, err := planner.FindRoute(s.graph, startID, s.destination)
	metrics.PlanDuration.Observe(time.Since(t0).Seconds())
	return route, err
}

func (s *Session) emit(ev guidance.Event) {
	metrics.GuidanceEvents.WithLabelValues(string(ev.Kind)).Inc()
	select {
	case s.events <- ev:
	case <-s.closed:
	}
}
