package preset

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a named preset does not exist in the store.
var ErrNotFound = errors.New("preset not found")

// Preset is one saved configuration document.
type Preset struct {
	Name      string          `json:"name"`
	AtlasID   string          `json:"atlasId"`
	Document  json.RawMessage `json:"document"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Store persists presets in a single sqlite database file. Pass ":memory:"
// for an ephemeral store.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS presets (
	name       TEXT PRIMARY KEY,
	atlas_id   TEXT NOT NULL,
	document   TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_presets_atlas ON presets (atlas_id);
`

// OpenStore opens (creating if needed) the preset database at path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening preset store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing preset store: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Save inserts or replaces the preset under its name.
func (s *Store) Save(ctx context.Context, p Preset) error {
	if p.Name == "" {
		return fmt.Errorf("preset name is required")
	}
	updated := p.UpdatedAt
	if updated.IsZero() {
		updated = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO presets (name, atlas_id, document, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			atlas_id = excluded.atlas_id,
			document = excluded.document,
			updated_at = excluded.updated_at`,
		p.Name, p.AtlasID, string(p.Document), updated.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("saving preset %q: %w", p.Name, err)
	}
	return nil
}

// Get returns the preset with the given name, or ErrNotFound.
func (s *Store) Get(ctx context.Context, name string) (Preset, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT name, atlas_id, document, updated_at FROM presets WHERE name = ?`, name)
	p, err := scanPreset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Preset{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return p, err
}

// List returns presets for one atlas, or all presets when atlasID is empty,
// ordered by name.
func (s *Store) List(ctx context.Context, atlasID string) ([]Preset, error) {
	query := `SELECT name, atlas_id, document, updated_at FROM presets ORDER BY name`
	args := []any{}
	if atlasID != "" {
		query = `SELECT name, atlas_id, document, updated_at FROM presets WHERE atlas_id = ? ORDER BY name`
		args = append(args, atlasID)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing presets: %w", err)
	}
	defer rows.Close()

	var out []Preset
	for rows.Next() {
		p, err := scanPreset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Delete removes the preset. Deleting an absent name is not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM presets WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("deleting preset %q: %w", name, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPreset(row rowScanner) (Preset, error) {
	var p Preset
	var doc, updated string
	if err := row.Scan(&p.Name, &p.AtlasID, &doc, &updated); err != nil {
		return Preset{}, err
	}
	p.Document = json.RawMessage(doc)
	if ts, err := time.Parse(time.RFC3339, updated); err == nil {
		p.UpdatedAt = ts
	}
	return p, nil
}
