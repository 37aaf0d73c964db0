package app

import (
	"time"

	"github.com/ayusman/odissi/internal/choreo"
)

// runAnimationLoop is the fast loop: ~60 ticks per second, each advancing
// every particle field and the camera rig by one damped step and publishing
// the resulting frame. It never blocks on the gesture loop.
func (a *App) runAnimationLoop(stopCh <-chan struct{}) {
	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()

	last := time.Now()

	for {
		select {
		case <-stopCh:
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now

			// A stalled tick (debugger, suspend) must not fling particles.
			if dt > MaxTickSeconds {
				dt = MaxTickSeconds
			}

			a.tick(now, dt)
		}
	}
}

// tick advances the scene by dt seconds and publishes one frame.
func (a *App) tick(now time.Time, dt float64) {
	mode := a.controller.Mode()
	elapsed := now.Sub(a.start).Seconds()
	hand := a.handState()

	a.foliage.Update(mode, elapsed, dt)
	a.ribbons.Update(mode, elapsed, dt)
	a.photos.Update(mode, elapsed, dt)
	a.rig.Update(mode, hand, dt)

	f := &choreo.Frame{
		Timestamp: now.UnixMilli(),
		Mode:      mode.String(),
		Elapsed:   elapsed,
		Hand:      hand,
		Rig:       a.rig.Offset(),
	}
	f.Foliage = a.foliage.AppendTransforms(f.Foliage)
	f.Ribbons = a.ribbons.AppendTransforms(f.Ribbons)
	f.Photos = a.photos.AppendTransforms(f.Photos)

	f.FoliageColors = a.foliage.ColorsIfChanged()
	f.RibbonColors = a.ribbons.ColorsIfChanged()
	f.PhotoColors = a.photos.ColorsIfChanged()

	if mode == choreo.ModeInspect {
		f.FocusedPhoto = a.photos.FocusedID()
	}

	a.sink.PublishFrame(f)
}
