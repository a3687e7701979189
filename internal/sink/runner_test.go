package sink

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/felice68russo-ops/Suspended-Reality/internal/gesture"
)

// scriptSink writes an executable shell script sink and returns it.
func scriptSink(t *testing.T, name, script string) *Sink {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("shell script sinks are not supported on windows")
	}

	dir := filepath.Join(t.TempDir(), name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create sink dir: %v", err)
	}

	exe := filepath.Join(dir, name)
	if err := os.WriteFile(exe, []byte("#!/bin/sh\n"+script), 0755); err != nil {
		t.Fatalf("failed to write sink script: %v", err)
	}

	return &Sink{
		Manifest:   Manifest{Name: name, Executable: name},
		Path:       dir,
		Executable: exe,
	}
}

func testFrame(tm float64) Frame {
	f := Frame{Time: tm}
	f.Hands[0] = gesture.HandPoint{Gesture: "PINCH", X: 0.4, Y: 0.6, Z: 0.8}
	f.Hands[1] = gesture.HandPoint{Gesture: "NONE"}
	return f
}

func TestRunner_DeliversFrames(t *testing.T) {
	s := scriptSink(t, "copier", `cat > "$PWD/out.jsonl"`)

	r := NewRunner(s)
	if err := r.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		r.Send(testFrame(float64(i) * 0.016))
	}

	if err := r.Stop(); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(s.Path, "out.jsonl"))
	if err != nil {
		t.Fatalf("sink output not written: %v", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	var frames []Frame
	for dec.More() {
		var f Frame
		if err := dec.Decode(&f); err != nil {
			t.Fatalf("decode sink output: %v", err)
		}
		frames = append(frames, f)
	}

	if len(frames) != 3 {
		t.Fatalf("sink received %d frames, want 3", len(frames))
	}
	if frames[1].Hands[0].Gesture != "PINCH" {
		t.Errorf("frame gesture = %q, want PINCH", frames[1].Hands[0].Gesture)
	}
	if frames[2].Time < 0.03 {
		t.Errorf("frame time = %f, want ~0.032", frames[2].Time)
	}
}

func TestRunner_SendBeforeStart(t *testing.T) {
	s := scriptSink(t, "idle", `cat > /dev/null`)

	r := NewRunner(s)
	// Must not panic or block.
	r.Send(testFrame(0))

	if r.Running() {
		t.Error("runner reports running before Start()")
	}
}

func TestRunner_DropsWhenBehind(t *testing.T) {
	// A sink that never reads keeps the pipe full; once the channel fills
	// too, Send must drop instead of blocking.
	s := scriptSink(t, "stuck", `sleep 30`)

	r := NewRunner(s)
	if err := r.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	defer func() {
		// The script ignores stdin EOF, so kill it instead of waiting.
		r.mu.Lock()
		cmd := r.cmd
		r.mu.Unlock()
		if cmd != nil && cmd.Process != nil {
			cmd.Process.Kill()
		}
		r.Stop()
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Far more frames than the channel and pipe can buffer.
		for i := 0; i < 100000; i++ {
			r.Send(testFrame(0))
		}
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("Send blocked on a stuck sink")
	}

	if r.Dropped() == 0 {
		t.Error("expected dropped frames on a stuck sink")
	}
}

func TestRunner_SendConcurrentWithStop(t *testing.T) {
	// Senders racing Stop must neither panic on a closed channel nor
	// deliver into a stopped runner.
	s := scriptSink(t, "drain", `cat > /dev/null`)

	r := NewRunner(s)
	if err := r.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				r.Send(testFrame(float64(i)))
			}
		}()
	}

	if err := r.Stop(); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}
	wg.Wait()

	// Sends after Stop are discarded.
	r.Send(testFrame(0))
	if r.Running() {
		t.Error("runner reports running after Stop()")
	}
}

func TestPool_Broadcast(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script sinks are not supported on windows")
	}

	tmpDir := t.TempDir()
	for _, name := range []string{"first", "second"} {
		dir := filepath.Join(tmpDir, name)
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("failed to create sink dir: %v", err)
		}
		manifest, _ := json.Marshal(Manifest{Name: name, Executable: name})
		if err := os.WriteFile(filepath.Join(dir, "sink.json"), manifest, 0644); err != nil {
			t.Fatalf("failed to write manifest: %v", err)
		}
		script := "#!/bin/sh\ncat > \"$PWD/out.jsonl\"\n"
		if err := os.WriteFile(filepath.Join(dir, name), []byte(script), 0755); err != nil {
			t.Fatalf("failed to write sink script: %v", err)
		}
	}

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	pool := NewPool(manager)
	if pool.Len() != 2 {
		t.Fatalf("pool has %d sinks, want 2", pool.Len())
	}

	pool.Broadcast(testFrame(1.0))
	pool.Stop()

	for _, name := range []string{"first", "second"} {
		data, err := os.ReadFile(filepath.Join(tmpDir, name, "out.jsonl"))
		if err != nil {
			t.Fatalf("sink %s output not written: %v", name, err)
		}
		var f Frame
		if err := json.Unmarshal(data, &f); err != nil {
			t.Fatalf("sink %s output invalid: %v", name, err)
		}
		if f.Time != 1.0 {
			t.Errorf("sink %s frame time = %f, want 1.0", name, f.Time)
		}
	}
}
