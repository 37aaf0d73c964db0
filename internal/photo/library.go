// Package photo manages the session photo library backing the photo particles.
package photo

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"

	"github.com/ayusman/odissi/internal/store"
)

// Photo is one library entry. Position is the stable append order that the
// scene uses for placement; it never changes within a session.
type Photo struct {
	ID       string `json:"id"`
	Path     string `json:"path"`
	Position int    `json:"position"`
}

// Library is the append-only photo collection. Entries persist through the
// store when one is configured, and are never removed while running.
type Library struct {
	mu      sync.Mutex
	repo    *store.PhotoRepository
	photos  []Photo
	rng     *rand.Rand
	focused int
}

// New creates a Library seeded from the repository's existing photos. A nil
// repository gives an in-memory library, used in tests.
func New(repo *store.PhotoRepository, src rand.Source) (*Library, error) {
	l := &Library{
		repo:    repo,
		rng:     rand.New(src),
		focused: -1,
	}

	if repo != nil {
		stored, err := repo.List()
		if err != nil {
			return nil, fmt.Errorf("failed to load photo library: %w", err)
		}
		for _, p := range stored {
			l.photos = append(l.photos, Photo{ID: p.ID, Path: p.Path, Position: p.Position})
		}
	}

	return l, nil
}

// Add appends a photo to the library and persists it.
func (l *Library) Add(path string) (Photo, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p := Photo{
		ID:       uuid.New().String(),
		Path:     path,
		Position: len(l.photos),
	}

	if l.repo != nil {
		rec := &store.Photo{ID: p.ID, Path: p.Path}
		if err := l.repo.Create(rec); err != nil {
			return Photo{}, fmt.Errorf("failed to persist photo: %w", err)
		}
		p.Position = rec.Position
	}

	l.photos = append(l.photos, p)
	return p, nil
}

// Count returns the number of photos in the library.
func (l *Library) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.photos)
}

// Photos returns a snapshot of the library in position order.
func (l *Library) Photos() []Photo {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Photo, len(l.photos))
	copy(out, l.photos)
	return out
}

// FocusRandom picks a uniformly random photo, records it as focused, and
// returns its index. Returns -1 when the library is empty.
func (l *Library) FocusRandom() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.photos) == 0 {
		l.focused = -1
		return -1
	}
	l.focused = l.rng.IntN(len(l.photos))
	return l.focused
}

// ClearFocus forgets the focused photo.
func (l *Library) ClearFocus() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.focused = -1
}

// Focused returns the focused photo, or false when none is focused.
func (l *Library) Focused() (Photo, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.focused < 0 || l.focused >= len(l.photos) {
		return Photo{}, false
	}
	return l.photos[l.focused], true
}
