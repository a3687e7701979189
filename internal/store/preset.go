package store

import (
	"database/sql"
	"errors"
	"time"
)

// Preset is a named bundle of tuning knobs. The knob values are stored as a
// TOML document so the same encoding serves presets and the config file.
type Preset struct {
	ID        string
	Name      string
	Config    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PresetRepository provides CRUD operations for presets.
type PresetRepository struct {
	db *sql.DB
}

// Presets returns the preset repository for this store.
func (s *Store) Presets() *PresetRepository {
	return &PresetRepository{db: s.db}
}

// Create inserts a new preset into the database.
func (r *PresetRepository) Create(p *Preset) error {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := r.db.Exec(
		`INSERT INTO presets (id, name, config, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Config, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

// GetByID retrieves a preset by its ID.
func (r *PresetRepository) GetByID(id string) (*Preset, error) {
	p := &Preset{}

	err := r.db.QueryRow(
		`SELECT id, name, config, created_at, updated_at
		 FROM presets WHERE id = ?`,
		id,
	).Scan(&p.ID, &p.Name, &p.Config, &p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return p, nil
}

// GetByName retrieves a preset by its name.
func (r *PresetRepository) GetByName(name string) (*Preset, error) {
	p := &Preset{}

	err := r.db.QueryRow(
		`SELECT id, name, config, created_at, updated_at
		 FROM presets WHERE name = ?`,
		name,
	).Scan(&p.ID, &p.Name, &p.Config, &p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return p, nil
}

// List retrieves all presets, newest first.
func (r *PresetRepository) List() ([]*Preset, error) {
	rows, err := r.db.Query(
		`SELECT id, name, config, created_at, updated_at
		 FROM presets ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var presets []*Preset
	for rows.Next() {
		p := &Preset{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Config, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		presets = append(presets, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return presets, nil
}

// Update updates an existing preset.
func (r *PresetRepository) Update(p *Preset) error {
	p.UpdatedAt = time.Now()

	result, err := r.db.Exec(
		`UPDATE presets SET name = ?, config = ?, updated_at = ? WHERE id = ?`,
		p.Name, p.Config, p.UpdatedAt, p.ID,
	)
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

// Delete removes a preset by its ID.
func (r *PresetRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM presets WHERE id = ?`, id)
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
