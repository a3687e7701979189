package sink

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os/exec"
	"sync"
)

// frameBuffer is the per-runner queue depth. A sink that falls behind by
// more than this many ticks starts losing frames instead of stalling the
// pipeline.
const frameBuffer = 16

// Runner keeps one sink process alive and feeds it frames. Writes are
// decoupled from the engine tick through a bounded channel; a full channel
// drops the frame.
type Runner struct {
	sink *Sink

	mu      sync.Mutex
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	frames  chan Frame
	done    chan struct{}
	dropped uint64
}

// NewRunner creates a runner for the given sink. Start must be called
// before frames are delivered.
func NewRunner(s *Sink) *Runner {
	return &Runner{sink: s}
}

// Start launches the sink process and the writer goroutine.
func (r *Runner) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cmd != nil {
		return nil
	}

	cmd := exec.Command(r.sink.Executable)
	cmd.Dir = r.sink.Path

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("sink %s: stdin pipe: %w", r.sink.Manifest.Name, err)
	}

	if err := cmd.Start(); err != nil {
		stdin.Close()
		return fmt.Errorf("sink %s: start: %w", r.sink.Manifest.Name, err)
	}

	r.cmd = cmd
	r.stdin = stdin
	r.frames = make(chan Frame, frameBuffer)
	r.done = make(chan struct{})

	go r.writeLoop(stdin, r.frames, r.done)

	return nil
}

func (r *Runner) writeLoop(w io.WriteCloser, frames <-chan Frame, done chan struct{}) {
	defer close(done)

	enc := json.NewEncoder(w)
	for frame := range frames {
		if err := enc.Encode(&frame); err != nil {
			log.Printf("sink %s: write failed, stopping: %v", r.sink.Manifest.Name, err)
			return
		}
	}
}

// Send queues a frame for the sink. It never blocks: if the sink is not
// keeping up the frame is dropped, and a stopped runner discards frames.
// The send stays under the mutex; Stop nils the channel under the same
// mutex before closing it, so a send can never hit a closed channel.
func (r *Runner) Send(frame Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frames == nil {
		return
	}

	select {
	case r.frames <- frame:
	default:
		r.dropped++
	}
}

// Dropped returns the number of frames dropped because the sink fell behind.
func (r *Runner) Dropped() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

// Running reports whether the sink process has been started and not stopped.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cmd != nil
}

// Stop closes the sink's stdin and waits for the process to exit.
func (r *Runner) Stop() error {
	r.mu.Lock()
	if r.cmd == nil {
		r.mu.Unlock()
		return nil
	}
	cmd := r.cmd
	frames := r.frames
	done := r.done
	stdin := r.stdin
	r.cmd = nil
	r.frames = nil
	r.done = nil
	r.stdin = nil
	r.mu.Unlock()

	close(frames)
	<-done
	stdin.Close()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("sink %s: wait: %w", r.sink.Manifest.Name, err)
	}
	return nil
}

// Pool fans one frame out to every running sink.
type Pool struct {
	mu      sync.Mutex
	runners []*Runner
}

// NewPool starts a runner for every discovered sink. Sinks that fail to
// start are logged and skipped.
func NewPool(manager *Manager) *Pool {
	p := &Pool{}
	for _, s := range manager.List() {
		r := NewRunner(s)
		if err := r.Start(); err != nil {
			log.Printf("sink %s: %v", s.Manifest.Name, err)
			continue
		}
		p.runners = append(p.runners, r)
	}
	return p
}

// Broadcast sends the frame to every runner without blocking.
func (p *Pool) Broadcast(frame Frame) {
	p.mu.Lock()
	runners := p.runners
	p.mu.Unlock()

	for _, r := range runners {
		r.Send(frame)
	}
}

// Len returns the number of running sinks.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.runners)
}

// Stop stops all runners.
func (p *Pool) Stop() {
	p.mu.Lock()
	runners := p.runners
	p.runners = nil
	p.mu.Unlock()

	for _, r := range runners {
		if err := r.Stop(); err != nil {
			log.Printf("%v", err)
		}
	}
}
