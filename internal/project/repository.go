package project

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

type Repository interface {
	Save(ctx context.Context, p *Project) error
	Get(ctx context.Context, id string) (*Project, error)
	List(ctx context.Context) ([]*Project, error)
	Delete(ctx context.Context, id string) error

	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const projectColumns = "id, name, media_path, duration, frame_rate, segments, transcript, messages, visual_context, created_at, updated_at"

// Save inserts or replaces the whole project row. Projects are small enough
// that partial updates are not worth the query surface.
func (r *SQLiteRepository) Save(ctx context.Context, p *Project) error {
	segments, err := json.Marshal(orEmpty(p.Segments))
	if err != nil {
		return fmt.Errorf("encode segments: %w", err)
	}
	items, err := json.Marshal(orEmpty(p.Transcript))
	if err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}
	messages, err := json.Marshal(orEmpty(p.Messages))
	if err != nil {
		return fmt.Errorf("encode messages: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO projects (`+projectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			media_path = excluded.media_path,
			duration = excluded.duration,
			frame_rate = excluded.frame_rate,
			segments = excluded.segments,
			transcript = excluded.transcript,
			messages = excluded.messages,
			visual_context = excluded.visual_context,
			updated_at = excluded.updated_at
	`, p.ID, p.Name, p.MediaPath, p.Duration, p.FrameRate,
		string(segments), string(items), string(messages), p.VisualContext,
		p.CreatedAt.Format(time.RFC3339), p.UpdatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*Project, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+projectColumns+` FROM projects WHERE id = ?
	`, id)
	return scanProject(row.Scan)
}

func (r *SQLiteRepository) List(ctx context.Context) ([]*Project, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+projectColumns+` FROM projects ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		p, err := scanProject(rows.Scan)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func scanProject(scan func(...any) error) (*Project, error) {
	var p Project
	var segments, items, messages string
	var createdAt, updatedAt string

	err := scan(&p.ID, &p.Name, &p.MediaPath, &p.Duration, &p.FrameRate,
		&segments, &items, &messages, &p.VisualContext, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(segments), &p.Segments); err != nil {
		return nil, fmt.Errorf("decode segments: %w", err)
	}
	if err := json.Unmarshal([]byte(items), &p.Transcript); err != nil {
		return nil, fmt.Errorf("decode transcript: %w", err)
	}
	if err := json.Unmarshal([]byte(messages), &p.Messages); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &p, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	return err
}

func (r *SQLiteRepository) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (r *SQLiteRepository) SetConfig(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// orEmpty keeps JSON columns as "[]" instead of "null" for empty slices.
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
