package main

import (
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/ayusman/odissi/internal/app"
	"github.com/ayusman/odissi/internal/photo"
	"github.com/ayusman/odissi/internal/server"
	"github.com/ayusman/odissi/internal/store"
	"github.com/ayusman/odissi/internal/tray"
)

const serverAddr = ":8080"

func main() {
	fmt.Println("Odissi - Gesture Choreography")

	// Initialize the data directory and store
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Failed to get home directory: %v", err)
	}

	dataDir := filepath.Join(homeDir, ".odissi")
	photoDir := filepath.Join(dataDir, "photos")
	if err := os.MkdirAll(photoDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(filepath.Join(dataDir, "odissi.db"))
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	seed := uint64(time.Now().UnixNano())
	library, err := photo.New(st.Photos(), rand.NewPCG(seed, seed>>16))
	if err != nil {
		log.Fatalf("Failed to load photo library: %v", err)
	}
	if n, err := st.Photos().Count(); err == nil {
		fmt.Printf("Photo library: %d photos\n", n)
	}

	// The frame hub carries engine output to WebSocket viewers
	hub := server.NewFrameHub()

	engine := app.New(app.Config{
		Library: library,
		Sink:    hub,
	})

	// Restore the persisted tracking toggle
	trackingEnabled := true
	if v, err := st.Settings().Get("tracking_enabled"); err == nil {
		trackingEnabled = v == "true"
	}
	engine.SetEnabled(trackingEnabled)

	// Find web directory
	webDir := findWebDir()
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir:    webDir,
		PhotoDir:     photoDir,
		Library:      library,
		Photos:       st.Photos(),
		Camera:       engine.Camera(),
		Hub:          hub,
		OnPhotoAdded: engine.AddPhoto,
	})

	go func() {
		fmt.Printf("Starting server on %s\n", serverAddr)
		if err := srv.ListenAndServe(serverAddr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	if err := engine.Start(); err != nil {
		log.Fatalf("Failed to start engine: %v", err)
	}

	tr := tray.New()
	tr.SetEnabled(trackingEnabled)
	tr.OnToggle(func(enabled bool) {
		engine.SetEnabled(enabled)
		value := "false"
		if enabled {
			value = "true"
		}
		if err := st.Settings().Set("tracking_enabled", value); err != nil {
			log.Printf("Failed to persist tracking setting: %v", err)
		}
	})
	tr.OnViewer(func() {
		if err := exec.Command("open", "http://localhost"+serverAddr).Start(); err != nil {
			log.Printf("Failed to open viewer: %v", err)
		}
	})
	tr.OnQuit(func() {
		engine.Stop()
	})

	// Mirror the engine mode into the tray menu
	go func() {
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()
		for range ticker.C {
			tr.SetMode(engine.Mode().String())
		}
	}()

	// Blocks until quit
	tr.Run()
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.odissi/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".odissi", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
