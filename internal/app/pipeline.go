package app

import (
	"log"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/odissi/internal/choreo"
	"github.com/ayusman/odissi/internal/gesture"
)

// runGestureLoop is the camera-facing loop. It reads frames at a motion-gated
// rate, classifies the hand pose, and applies the resulting gesture to the
// mode controller.
//
// Loop logic:
// 1. Start in idle mode (IdleFPS)
// 2. On motion detected, switch to active mode (ActiveFPS)
// 3. Track the hand and classify its gesture
// 4. Feed the gesture to the mode controller
// 5. After 2s without motion, drop back to idle mode
func (a *App) runGestureLoop(stopCh <-chan struct{}) {
	activeMode := false
	lastMotionTime := time.Now()

	frameInterval := time.Second / time.Duration(IdleFPS)
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			// Skip processing if tracking is disabled
			if !a.IsEnabled() {
				continue
			}

			frame, err := a.camera.ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				continue
			}

			motionDetected, _ := a.motion.Detect(frame)

			if motionDetected {
				lastMotionTime = time.Now()

				if !activeMode {
					activeMode = true
					a.camera.SetFPS(ActiveFPS)
					frameInterval = time.Second / time.Duration(ActiveFPS)
					ticker.Reset(frameInterval)
					log.Println("Switched to active tracking")
				}
			} else if activeMode {
				if time.Since(lastMotionTime) > time.Duration(IdleTimeoutMs)*time.Millisecond {
					activeMode = false
					a.camera.SetFPS(IdleFPS)
					frameInterval = time.Second / time.Duration(IdleFPS)
					ticker.Reset(frameInterval)
					log.Println("Switched to idle tracking")
				}
			}

			// Hand tracking only runs in active mode
			if !activeMode {
				frame.Close()
				continue
			}

			a.processFrame(frame, time.Now().UnixMilli())
			frame.Close()
		}
	}
}

// processFrame runs one tracked frame through the gesture pipeline and
// applies the result to the mode machine and photo focus.
func (a *App) processFrame(frame *gocv.Mat, timestamp int64) {
	hand, processed := a.tracker.Track(frame, timestamp)
	if !processed {
		return
	}

	a.mu.Lock()
	a.lastHand = hand
	a.mu.Unlock()

	photoCount := 0
	if a.library != nil {
		photoCount = a.library.Count()
	}

	mode, enteredInspect := a.controller.Apply(hand.Gesture, photoCount)

	if enteredInspect {
		idx := a.library.FocusRandom()
		a.photos.SetFocused(idx)
		log.Printf("Inspecting photo %d", idx)
	}

	a.mu.Lock()
	prev := a.prevMode
	a.prevMode = mode
	a.mu.Unlock()

	if prev == choreo.ModeInspect && mode != choreo.ModeInspect {
		a.photos.ClearFocus()
		if a.library != nil {
			a.library.ClearFocus()
		}
	}
}

// handState returns the last published hand state.
func (a *App) handState() gesture.HandState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastHand
}
