// Command wayfarer replays a pose feed against a keyframe map and prints
// the guidance a voice layer would speak.
//
// The map is a keyframe CSV (id, ts, x, y, z[, neighbors...]); poses are
// JSON lines ({"x":..,"y":..,"z":..,"heading":..}) from a file or stdin.
// There is deliberately no network listener here: transport from the
// localization device is someone else's job.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/wayfarer-nav/wayfarer/pkg/geometry"
	"github.com/wayfarer-nav/wayfarer/pkg/keyframe"
	"github.com/wayfarer-nav/wayfarer/pkg/session"
)

type poseLine struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Z       float64 `json:"z"`
	Heading float64 `json:"heading"`
}

func main() {
	mapPath := flag.String("map", "", "Path to the keyframe CSV map")
	dest := flag.String("dest", "", "Destination keyframe ID")
	posesPath := flag.String("poses", "-", "Pose feed file (JSON lines), '-' for stdin")
	configPath := flag.String("config", "", "Optional session config YAML")
	radius := flag.Float64("proximity-radius", 0, "Build the graph by proximity with this radius instead of declared adjacency")

	flag.Parse()

	if *mapPath == "" || *dest == "" {
		fmt.Fprintln(os.Stderr, "usage: wayfarer -map keyframes.csv -dest <node-id> [-poses feed.jsonl]")
		os.Exit(2)
	}

	if err := run(*mapPath, *dest, *posesPath, *configPath, *radius); err != nil {
		slog.Error("wayfarer failed", "error", err)
		os.Exit(1)
	}
}

func run(mapPath, dest, posesPath, configPath string, radius float64) error {
	records, err := keyframe.LoadCSVFile(mapPath)
	if err != nil {
		return fmt.Errorf("loading map: %w", err)
	}

	var graph *keyframe.Graph
	if radius > 0 {
		graph, err = keyframe.BuildProximity(records, radius)
	} else {
		graph, err = keyframe.Build(records)
	}
	if err != nil {
		return fmt.Errorf("building graph: %w", err)
	}
	slog.Info("map loaded", "keyframes", graph.Len())

	cfg := session.DefaultConfig()
	if configPath != "" {
		cfg, err = session.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	}

	feed := os.Stdin
	if posesPath != "-" {
		feed, err = os.Open(posesPath)
		if err != nil {
			return fmt.Errorf("opening pose feed: %w", err)
		}
		defer feed.Close()
	}

	sess := session.New(graph, cfg, slog.Default())

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-shutdown
		sess.StopNavigation()
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range sess.Events() {
			if ev.Announce {
				fmt.Printf("[%s] %s\n", ev.Kind, ev.Instruction)
			}
		}
	}()

	scanner := bufio.NewScanner(feed)
	started := false
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var pl poseLine
		if err := json.Unmarshal(line, &pl); err != nil {
			slog.Warn("skipping bad pose line", "error", err)
			continue
		}
		pose := geometry.Pose{
			Pos:     r3.Vec{X: pl.X, Y: pl.Y, Z: pl.Z},
			Heading: pl.Heading,
		}
		sess.OnPose(pose)

		if !started {
			if err := sess.SetDestination(dest); err != nil {
				return err
			}
			if err := sess.CalculatePath(); err != nil {
				return fmt.Errorf("planning: %w", err)
			}
			if err := sess.StartNavigation(); err != nil {
				return err
			}
			started = true
			// First pose arrived before the loop existed; replay it so
			// guidance starts immediately.
			sess.OnPose(pose)
		}

		if sess.Status() == session.StatusArrived {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading pose feed: %w", err)
	}

	sess.StopNavigation()
	<-done
	return nil
}
