// Package main provides an OSC bridge sink.
// It forwards hand state as OSC messages over UDP so lighting or audio
// software can react to gestures.
package main

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"flag"
	"log"
	"math"
	"net"
	"os"
)

// HandPoint mirrors the engine's per-hand payload.
type HandPoint struct {
	Gesture string  `json:"gesture"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Z       float64 `json:"z"`
}

// Frame is one line of input from the engine.
type Frame struct {
	Time  float64     `json:"time"`
	Hands []HandPoint `json:"hands"`
}

func main() {
	addr := flag.String("addr", "127.0.0.1:9000", "OSC destination address")
	flag.Parse()

	conn, err := net.Dial("udp", *addr)
	if err != nil {
		log.Fatalf("dial %s: %v", *addr, err)
	}
	defer conn.Close()

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		var frame Frame
		if err := json.Unmarshal(scanner.Bytes(), &frame); err != nil {
			continue
		}

		for slot, hand := range frame.Hands {
			msg := oscMessage(slot, hand)
			if _, err := conn.Write(msg); err != nil {
				log.Printf("send osc: %v", err)
			}
		}
	}
}

// oscMessage encodes /hand/<slot> with string gesture and three floats.
func oscMessage(slot int, hand HandPoint) []byte {
	var buf bytes.Buffer

	writePadded(&buf, []byte("/hand/"+string(rune('0'+slot))))
	writePadded(&buf, []byte(",sfff"))
	writePadded(&buf, []byte(hand.Gesture))
	for _, v := range []float64{hand.X, hand.Y, hand.Z} {
		binary.Write(&buf, binary.BigEndian, math.Float32bits(float32(v)))
	}

	return buf.Bytes()
}

// writePadded writes an OSC string: NUL terminated, padded to 4 bytes.
func writePadded(buf *bytes.Buffer, s []byte) {
	buf.Write(s)
	pad := 4 - len(s)%4
	for i := 0; i < pad; i++ {
		buf.WriteByte(0)
	}
}
