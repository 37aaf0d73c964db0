package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/odissi/internal/choreo"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// broadcastInterval paces the WebSocket feed below the engine's tick rate.
// Clients interpolate between frames, so ~30 FPS on the wire is plenty.
const broadcastInterval = 33 * time.Millisecond

// writeTimeout bounds one client write. A client that cannot drain a frame
// within this window is evicted rather than allowed to stall the feed.
const writeTimeout = 5 * time.Second

// FrameHub broadcasts choreography frames to WebSocket clients. It keeps only
// the latest frame: the engine publishes at its own tick rate and the hub's
// broadcaster ships whatever is freshest, so slow consumers lose frames
// instead of lagging the animation.
type FrameHub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]bool

	latest   *choreo.Frame
	lastSent int64

	// Colors arrive only on the tick where a record set changed, and the
	// engine usually replaces that frame before the broadcaster wakes up.
	// The cache serves late joiners; the dirty flag makes sure already
	// connected clients get the colors on the next broadcast.
	foliageColors []choreo.Color
	ribbonColors  []choreo.Color
	photoColors   []choreo.Color
	colorsDirty   bool
}

// NewFrameHub creates a hub and starts its broadcast loop.
func NewFrameHub() *FrameHub {
	h := &FrameHub{
		clients: make(map[*websocket.Conn]bool),
	}
	go h.broadcast()
	return h
}

// PublishFrame implements choreo.FrameSink. It replaces the pending frame;
// frames the broadcaster never picked up are dropped.
func (h *FrameHub) PublishFrame(f *choreo.Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.latest = f
	if f.FoliageColors != nil {
		h.foliageColors = f.FoliageColors
		h.colorsDirty = true
	}
	if f.RibbonColors != nil {
		h.ribbonColors = f.RibbonColors
		h.colorsDirty = true
	}
	if f.PhotoColors != nil {
		h.photoColors = f.PhotoColors
		h.colorsDirty = true
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *FrameHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	// Replay the full scene state so the new client can build its buffers
	// before the delta stream starts.
	if msg := h.snapshot(); msg != nil {
		conn.WriteMessage(websocket.TextMessage, msg)
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// snapshot returns the latest frame with all cached colors attached, or nil
// when no frame has been published yet.
func (h *FrameHub) snapshot() []byte {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.latest == nil {
		return nil
	}

	full := *h.latest
	full.FoliageColors = h.foliageColors
	full.RibbonColors = h.ribbonColors
	full.PhotoColors = h.photoColors

	msg, err := json.Marshal(&full)
	if err != nil {
		return nil
	}
	return msg
}

// broadcast ships the freshest frame to every connected client. Writes
// happen outside the hub lock so a stalled client can never block
// PublishFrame, and with it the engine's animation tick.
func (h *FrameHub) broadcast() {
	ticker := time.NewTicker(broadcastInterval)
	defer ticker.Stop()

	for range ticker.C {
		h.mu.Lock()
		frame := h.latest
		if frame == nil || len(h.clients) == 0 || frame.Timestamp == h.lastSent {
			h.mu.Unlock()
			continue
		}
		h.lastSent = frame.Timestamp

		// If colors changed since the last broadcast, attach the cached
		// slices: the frame that carried them has usually been replaced by
		// a colorless one already.
		if h.colorsDirty {
			full := *frame
			full.FoliageColors = h.foliageColors
			full.RibbonColors = h.ribbonColors
			full.PhotoColors = h.photoColors
			frame = &full
			h.colorsDirty = false
		}

		conns := make([]*websocket.Conn, 0, len(h.clients))
		for conn := range h.clients {
			conns = append(conns, conn)
		}
		h.mu.Unlock()

		msg, err := json.Marshal(frame)
		if err != nil {
			continue
		}

		var failed []*websocket.Conn
		for _, conn := range conns {
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				failed = append(failed, conn)
			}
		}

		if len(failed) > 0 {
			h.mu.Lock()
			for _, conn := range failed {
				conn.Close()
				delete(h.clients, conn)
			}
			h.mu.Unlock()
		}
	}
}
