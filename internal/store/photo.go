package store

import (
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Photo represents an uploaded photo stored in the database.
type Photo struct {
	ID        string
	Path      string
	Position  int
	CreatedAt time.Time
}

// PhotoRepository provides persistence operations for photos.
type PhotoRepository struct {
	db *sql.DB
}

// Photos returns the photo repository for this store.
func (s *Store) Photos() *PhotoRepository {
	return &PhotoRepository{db: s.db}
}

// Create inserts a new photo, assigning it the next free position.
func (r *PhotoRepository) Create(p *Photo) error {
	p.CreatedAt = time.Now()

	err := r.db.QueryRow(
		`SELECT COALESCE(MAX(position) + 1, 0) FROM photos`,
	).Scan(&p.Position)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(
		`INSERT INTO photos (id, path, position, created_at) VALUES (?, ?, ?, ?)`,
		p.ID, p.Path, p.Position, p.CreatedAt,
	)
	return err
}

// GetByID retrieves a photo by its ID.
func (r *PhotoRepository) GetByID(id string) (*Photo, error) {
	p := &Photo{}

	err := r.db.QueryRow(
		`SELECT id, path, position, created_at FROM photos WHERE id = ?`,
		id,
	).Scan(&p.ID, &p.Path, &p.Position, &p.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return p, nil
}

// List retrieves all photos ordered by position, oldest first.
func (r *PhotoRepository) List() ([]*Photo, error) {
	rows, err := r.db.Query(
		`SELECT id, path, position, created_at FROM photos ORDER BY position ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var photos []*Photo
	for rows.Next() {
		p := &Photo{}
		if err := rows.Scan(&p.ID, &p.Path, &p.Position, &p.CreatedAt); err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return photos, nil
}

// Count returns the number of photos in the library.
func (r *PhotoRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM photos`).Scan(&n)
	return n, err
}
