// Package main provides a hand-logger sink.
// It reads one frame per line from stdin and appends a CSV row per hand
// to a log file, useful for tuning gesture thresholds offline.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"os"
)

// Fingertip mirrors the engine's fingertip payload.
type Fingertip struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Velocity float64 `json:"velocity"`
}

// HandPoint mirrors the engine's per-hand payload.
type HandPoint struct {
	Gesture  string    `json:"gesture"`
	X        float64   `json:"x"`
	Y        float64   `json:"y"`
	Z        float64   `json:"z"`
	IndexTip Fingertip `json:"indexTip"`
}

// Frame is one line of input from the engine.
type Frame struct {
	Time  float64     `json:"time"`
	Hands []HandPoint `json:"hands"`
}

func main() {
	out, err := os.OpenFile("hands.csv", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		log.Fatalf("open log file: %v", err)
	}
	defer out.Close()

	w := bufio.NewWriter(out)
	defer w.Flush()

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		var frame Frame
		if err := json.Unmarshal(scanner.Bytes(), &frame); err != nil {
			log.Printf("skipping malformed frame: %v", err)
			continue
		}

		for slot, hand := range frame.Hands {
			if hand.Gesture == "NONE" && hand.Z == 0 {
				continue
			}
			fmt.Fprintf(w, "%.3f,%d,%s,%.4f,%.4f,%.4f,%.4f,%.4f,%.4f\n",
				frame.Time, slot, hand.Gesture,
				hand.X, hand.Y, hand.Z,
				hand.IndexTip.X, hand.IndexTip.Y, hand.IndexTip.Velocity)
		}
		w.Flush()
	}

	if err := scanner.Err(); err != nil {
		log.Fatalf("read frames: %v", err)
	}
}
