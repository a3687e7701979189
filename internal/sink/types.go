// Package sink streams per-tick hand state to external consumer processes.
// A sink is an executable discovered from a manifest; the engine writes one
// JSON line per tick to its stdin and never waits for it.
package sink

import (
	"github.com/felice68russo-ops/Suspended-Reality/internal/gesture"
)

// Manifest describes a sink's metadata.
type Manifest struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	Executable  string `json:"executable"`
}

// Sink represents a discovered sink with its manifest and location.
type Sink struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Frame is the per-tick payload written to each running sink, one JSON
// object per line.
type Frame struct {
	Time  float64                             `json:"time"`
	Hands [gesture.NumSlots]gesture.HandPoint `json:"hands"`
}
