package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return s
}

func TestPresetCRUD(t *testing.T) {
	repo := newTestStore(t).Presets()

	p := &Preset{
		ID:     uuid.New().String(),
		Name:   "deep water",
		Config: "decay_rate = 0.02\nsmear_intensity = 0.9\n",
	}
	if err := repo.Create(p); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.GetByID(p.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Name != p.Name || got.Config != p.Config {
		t.Errorf("GetByID() = %+v, want name %q config %q", got, p.Name, p.Config)
	}

	byName, err := repo.GetByName("deep water")
	if err != nil {
		t.Fatalf("GetByName() error = %v", err)
	}
	if byName.ID != p.ID {
		t.Errorf("GetByName() ID = %s, want %s", byName.ID, p.ID)
	}

	p.Name = "shallow water"
	p.Config = "decay_rate = 0.08\n"
	if err := repo.Update(p); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	got, err = repo.GetByID(p.ID)
	if err != nil {
		t.Fatalf("GetByID() after update error = %v", err)
	}
	if got.Name != "shallow water" {
		t.Errorf("updated name = %q, want %q", got.Name, "shallow water")
	}

	list, err := repo.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 {
		t.Errorf("List() returned %d presets, want 1", len(list))
	}

	if err := repo.Delete(p.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.GetByID(p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}
}

func TestPresetNotFound(t *testing.T) {
	repo := newTestStore(t).Presets()

	if _, err := repo.GetByID("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
	if err := repo.Update(&Preset{ID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
	if err := repo.Delete("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}

func TestPresetNameUnique(t *testing.T) {
	repo := newTestStore(t).Presets()

	a := &Preset{ID: uuid.New().String(), Name: "dup", Config: ""}
	b := &Preset{ID: uuid.New().String(), Name: "dup", Config: ""}

	if err := repo.Create(a); err != nil {
		t.Fatalf("first Create() error = %v", err)
	}
	if err := repo.Create(b); err == nil {
		t.Error("expected an error creating a preset with a duplicate name")
	}
}

func TestSnapshotCRUD(t *testing.T) {
	repo := newTestStore(t).Snapshots()

	sn := &Snapshot{
		ID:     uuid.New().String(),
		Path:   "/tmp/snapshots/frame.webp",
		Width:  640,
		Height: 480,
	}
	if err := repo.Create(sn); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.GetByID(sn.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Path != sn.Path || got.Width != 640 || got.Height != 480 {
		t.Errorf("GetByID() = %+v", got)
	}

	list, err := repo.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 {
		t.Errorf("List() returned %d snapshots, want 1", len(list))
	}

	if err := repo.Delete(sn.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := repo.Delete(sn.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestSettings(t *testing.T) {
	repo := newTestStore(t).Settings()

	if _, err := repo.Get("paused"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() on empty table error = %v, want ErrNotFound", err)
	}

	if err := repo.Set("paused", "true"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if v, err := repo.Get("paused"); err != nil || v != "true" {
		t.Errorf("Get() = %q, %v, want \"true\", nil", v, err)
	}

	// Set replaces.
	if err := repo.Set("paused", "false"); err != nil {
		t.Fatalf("second Set() error = %v", err)
	}
	if v, _ := repo.Get("paused"); v != "false" {
		t.Errorf("Get() after replace = %q, want \"false\"", v)
	}

	if err := repo.Delete("paused"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.Get("paused"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
}
