package main

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/felice68russo-ops/Suspended-Reality/internal/capture"
	"github.com/felice68russo-ops/Suspended-Reality/internal/config"
	"github.com/felice68russo-ops/Suspended-Reality/internal/detector"
	"github.com/felice68russo-ops/Suspended-Reality/internal/engine"
	"github.com/felice68russo-ops/Suspended-Reality/internal/server"
	"github.com/felice68russo-ops/Suspended-Reality/internal/sink"
	"github.com/felice68russo-ops/Suspended-Reality/internal/store"
	"github.com/felice68russo-ops/Suspended-Reality/internal/tray"
)

func main() {
	fmt.Println("Suspended Reality - gesture-driven video distortion")

	cfg := loadConfig()

	dataDir := cfg.DataDir
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to get home directory: %v", err)
		}
		dataDir = filepath.Join(homeDir, ".suspended-reality")
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}
	cfg.DataDir = dataDir

	st, err := store.New(filepath.Join(dataDir, "suspended-reality.db"))
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	// Sinks are optional collaborators; a missing directory just means none.
	sinkDir := cfg.SinkDir
	if sinkDir == "" {
		sinkDir = filepath.Join(dataDir, "sinks")
	}
	sinkMgr := sink.NewManager(sinkDir)
	if err := sinkMgr.Discover(); err != nil {
		log.Printf("Sink discovery failed: %v", err)
	}
	pool := sink.NewPool(sinkMgr)
	defer pool.Stop()
	if n := pool.Len(); n > 0 {
		log.Printf("Running %d sinks from %s", n, sinkDir)
	}

	// MediaPipe when available, mock otherwise so the rest of the pipeline
	// still comes up.
	var det detector.Detector
	if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
		det = mp
		log.Println("Using MediaPipe hand detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		det = detector.NewMockDetector()
	}

	eng := engine.New(capture.NewCamera(cfg.CameraID), det, pool, cfg)
	eng.SetEnabled(true)
	if err := eng.Start(); err != nil {
		log.Fatalf("Failed to start pipeline: %v", err)
	}
	defer eng.Stop()

	srv := server.New(server.Config{
		SnapshotDir: filepath.Join(dataDir, "snapshots"),
		Store:       st,
		Pipeline:    eng,
	})

	go func() {
		log.Printf("Starting server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(cfg.HTTPAddr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	t := tray.New()
	t.OnToggle(func(enabled bool) {
		eng.SetEnabled(enabled)
	})
	t.OnSettings(func() {
		openBrowser("http://localhost" + cfg.HTTPAddr + "/api/health")
	})
	t.OnQuit(func() {
		eng.Stop()
	})

	// Blocks until quit.
	t.Run()
}

// loadConfig reads config.toml from the working directory or the data dir,
// falling back to defaults.
func loadConfig() config.Config {
	candidates := []string{"config.toml"}
	if homeDir, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(homeDir, ".suspended-reality", "config.toml"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		cfg, err := config.Load(path)
		if err != nil {
			log.Printf("Ignoring config %s: %v", path, err)
			continue
		}
		log.Printf("Loaded config from %s", path)
		return cfg
	}

	return config.Default()
}

// openBrowser opens the URL with the platform's default handler.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}
