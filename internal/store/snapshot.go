package store

import (
	"database/sql"
	"errors"
	"time"
)

// Snapshot records a rendered frame exported to disk as WebP.
type Snapshot struct {
	ID        string
	Path      string
	Width     int
	Height    int
	CreatedAt time.Time
}

// SnapshotRepository provides operations for snapshot records.
type SnapshotRepository struct {
	db *sql.DB
}

// Snapshots returns the snapshot repository for this store.
func (s *Store) Snapshots() *SnapshotRepository {
	return &SnapshotRepository{db: s.db}
}

// Create inserts a new snapshot record.
func (r *SnapshotRepository) Create(sn *Snapshot) error {
	sn.CreatedAt = time.Now()

	_, err := r.db.Exec(
		`INSERT INTO snapshots (id, path, width, height, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		sn.ID, sn.Path, sn.Width, sn.Height, sn.CreatedAt,
	)
	return err
}

// GetByID retrieves a snapshot record by its ID.
func (r *SnapshotRepository) GetByID(id string) (*Snapshot, error) {
	sn := &Snapshot{}

	err := r.db.QueryRow(
		`SELECT id, path, width, height, created_at
		 FROM snapshots WHERE id = ?`,
		id,
	).Scan(&sn.ID, &sn.Path, &sn.Width, &sn.Height, &sn.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return sn, nil
}

// List retrieves all snapshot records, newest first.
func (r *SnapshotRepository) List() ([]*Snapshot, error) {
	rows, err := r.db.Query(
		`SELECT id, path, width, height, created_at
		 FROM snapshots ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []*Snapshot
	for rows.Next() {
		sn := &Snapshot{}
		if err := rows.Scan(&sn.ID, &sn.Path, &sn.Width, &sn.Height, &sn.CreatedAt); err != nil {
			return nil, err
		}
		snapshots = append(snapshots, sn)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return snapshots, nil
}

// Delete removes a snapshot record by its ID. The file on disk is the
// caller's responsibility.
func (r *SnapshotRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM snapshots WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
