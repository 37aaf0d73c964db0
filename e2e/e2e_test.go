package e2e

import (
	"bytes"
	"encoding/json"
	"math/rand/v2"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/ayusman/odissi/internal/choreo"
	"github.com/ayusman/odissi/internal/detector"
	"github.com/ayusman/odissi/internal/gesture"
	"github.com/ayusman/odissi/internal/photo"
	"github.com/ayusman/odissi/internal/server"
	"github.com/ayusman/odissi/internal/store"
)

func TestE2E_CompleteWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tmpDir := t.TempDir()

	s, err := store.New(filepath.Join(tmpDir, "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	library, err := photo.New(s.Photos(), rand.NewPCG(1, 1))
	if err != nil {
		t.Fatalf("photo.New() error = %v", err)
	}

	photoField := choreo.NewPhotoField(rand.NewPCG(2, 2))

	srv := server.New(server.Config{
		Library:  library,
		Photos:   s.Photos(),
		PhotoDir: filepath.Join(tmpDir, "photos"),
		OnPhotoAdded: func(p photo.Photo) {
			photoField.AddPhoto(p.ID)
		},
	})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	t.Run("UploadPhotos", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			var body bytes.Buffer
			mw := multipart.NewWriter(&body)
			part, err := mw.CreateFormFile("file", "shot.jpg")
			if err != nil {
				t.Fatalf("CreateFormFile() error = %v", err)
			}
			part.Write([]byte("fake-jpeg"))
			mw.Close()

			resp, err := client.Post(ts.URL+"/api/photos", mw.FormDataContentType(), &body)
			if err != nil {
				t.Fatalf("upload error = %v", err)
			}
			resp.Body.Close()

			if resp.StatusCode != http.StatusCreated {
				t.Fatalf("upload status = %d, want %d", resp.StatusCode, http.StatusCreated)
			}
		}

		if library.Count() != 3 {
			t.Fatalf("library count = %d, want 3", library.Count())
		}
		if photoField.Len() != 3 {
			t.Fatalf("photo field holds %d records, want 3", photoField.Len())
		}
	})

	mockDetector := detector.NewMockDetector()
	tracker := gesture.NewTracker(mockDetector)
	controller := choreo.NewModeController()

	t.Run("GestureSequence", func(t *testing.T) {
		poses := []detector.HandLandmarks{
			detector.OpenPalmLandmarks(),
			detector.OpenPalmLandmarks(),
			detector.PinchLandmarks(),
		}
		want := []choreo.Mode{choreo.ModeScatter, choreo.ModeScatter, choreo.ModeInspect}

		timestamp := int64(100)
		for i, pose := range poses {
			mockDetector.SetHands([]detector.HandLandmarks{pose})

			hand, processed := tracker.Track(nil, timestamp)
			if !processed {
				t.Fatalf("frame %d was skipped", i)
			}
			timestamp += 66

			mode, entered := controller.Apply(hand.Gesture, library.Count())
			if mode != want[i] {
				t.Fatalf("step %d: mode = %v, want %v", i, mode, want[i])
			}
			if entered {
				photoField.SetFocused(library.FocusRandom())
			}
		}

		if photoField.FocusedIndex() == -1 {
			t.Error("entering inspect should focus one photo")
		}
		if photoField.FocusedID() == "" {
			t.Error("focused record should carry a photo ID")
		}
	})

	t.Run("ListPhotos", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/photos")
		if err != nil {
			t.Fatalf("list error = %v", err)
		}
		defer resp.Body.Close()

		var listing struct {
			Photos []struct {
				ID string `json:"id"`
			} `json:"photos"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
			t.Fatalf("failed to decode listing: %v", err)
		}
		if len(listing.Photos) != 3 {
			t.Errorf("listed %d photos, want 3", len(listing.Photos))
		}
	})

	t.Run("APIStillWorks", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/health")
		if err != nil {
			t.Fatalf("health check error = %v", err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Errorf("health check failed after uploads and gestures")
		}
		resp.Body.Close()
	})
}

func TestE2E_PinchWithEmptyLibrary(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	library, err := photo.New(nil, rand.NewPCG(3, 3))
	if err != nil {
		t.Fatalf("photo.New() error = %v", err)
	}

	mockDetector := detector.NewMockDetector()
	mockDetector.SetHands([]detector.HandLandmarks{detector.PinchLandmarks()})
	tracker := gesture.NewTracker(mockDetector)
	controller := choreo.NewModeController()

	hand, _ := tracker.Track(nil, 100)
	mode, entered := controller.Apply(hand.Gesture, library.Count())

	if mode != choreo.ModeTree || entered {
		t.Errorf("pinch with empty library -> (%v, %v), want (%v, false)",
			mode, entered, choreo.ModeTree)
	}
}
