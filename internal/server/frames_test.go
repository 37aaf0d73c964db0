package server

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/odissi/internal/choreo"
)

func testFrame(ts int64) *choreo.Frame {
	return &choreo.Frame{
		Timestamp: ts,
		Mode:      "tree",
		Foliage:   []choreo.Transform{{Index: 0, Scale: [3]float64{1, 1, 1}}},
	}
}

func TestFrameHub_SnapshotReplaysColors(t *testing.T) {
	hub := NewFrameHub()

	// Colors ride on the first published frame only.
	first := testFrame(1)
	first.FoliageColors = []choreo.Color{{R: 0.1, G: 0.6, B: 0.2}}
	hub.PublishFrame(first)
	hub.PublishFrame(testFrame(2))

	ts := httptest.NewServer(hub)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/frames"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial error = %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read snapshot: %v", err)
	}

	var frame choreo.Frame
	if err := json.Unmarshal(msg, &frame); err != nil {
		t.Fatalf("failed to decode snapshot: %v", err)
	}

	// The snapshot carries the cached colors even though the latest frame
	// did not include them.
	if len(frame.FoliageColors) != 1 {
		t.Errorf("snapshot foliage colors = %d entries, want 1", len(frame.FoliageColors))
	}
	if frame.Timestamp != 2 {
		t.Errorf("snapshot timestamp = %d, want latest frame 2", frame.Timestamp)
	}
}

func TestFrameHub_BroadcastsNewFrames(t *testing.T) {
	hub := NewFrameHub()
	hub.PublishFrame(testFrame(1))

	ts := httptest.NewServer(hub)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/frames"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial error = %v", err)
	}
	defer conn.Close()

	hub.PublishFrame(testFrame(7))

	// Read until the new frame arrives; the snapshot and a duplicate of the
	// first frame may come through first.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("frame never arrived: %v", err)
		}

		var frame choreo.Frame
		if err := json.Unmarshal(msg, &frame); err != nil {
			t.Fatalf("failed to decode frame: %v", err)
		}
		if frame.Timestamp == 7 {
			return
		}
	}
}

func TestFrameHub_ColorsReachConnectedClients(t *testing.T) {
	hub := NewFrameHub()
	hub.PublishFrame(testFrame(1))

	ts := httptest.NewServer(hub)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/frames"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial error = %v", err)
	}
	defer conn.Close()

	// A color-bearing frame immediately replaced by a colorless one, as
	// happens when a photo joins mid-session: the engine ticks faster than
	// the broadcaster, so the color frame itself is almost never the one
	// shipped. The colors still have to reach clients connected before the
	// change.
	withColors := testFrame(2)
	withColors.PhotoColors = []choreo.Color{{R: 0.92, G: 0.9, B: 0.88}}
	hub.PublishFrame(withColors)
	hub.PublishFrame(testFrame(3))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("colors never arrived: %v", err)
		}

		var frame choreo.Frame
		if err := json.Unmarshal(msg, &frame); err != nil {
			t.Fatalf("failed to decode frame: %v", err)
		}
		if frame.Timestamp < 2 {
			continue
		}
		if len(frame.PhotoColors) == 1 {
			return
		}
		if frame.Timestamp > 3 {
			t.Fatal("broadcast moved past the color change without delivering it")
		}
	}
}

func TestFrameHub_EvictsFailedClients(t *testing.T) {
	hub := NewFrameHub()

	ts := httptest.NewServer(hub)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/frames"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial error = %v", err)
	}

	// Wait for the hub to register the client
	deadline := time.Now().Add(2 * time.Second)
	for clientCount(hub) != 1 {
		if time.Now().After(deadline) {
			t.Fatal("client was never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// Kill the connection; writes to it now fail and the broadcaster must
	// drop the client instead of retrying it forever.
	conn.Close()

	evictBy := time.Now().Add(2 * time.Second)
	for seq := int64(1); time.Now().Before(evictBy); seq++ {
		hub.PublishFrame(testFrame(seq))
		if clientCount(hub) == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("dead client was never evicted")
}

func clientCount(h *FrameHub) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func TestFrameHub_PublishWithoutClients(t *testing.T) {
	hub := NewFrameHub()

	// Publishing with nobody connected must not block or panic.
	for i := int64(0); i < 100; i++ {
		hub.PublishFrame(testFrame(i))
	}
}
