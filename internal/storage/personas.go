package storage

import (
	"context"
	"database/sql"
	"fmt"

	"buzzmill/internal/types"
)

// ListPersonas returns the full persona pool. Order is unspecified; the
// comment orchestrator samples from it, it does not iterate in order.
func (s *sqliteStorage) ListPersonas(ctx context.Context) ([]*types.Persona, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT id, name, job, prompt, avatar_url FROM personas`)
	if err != nil {
		return nil, fmt.Errorf("failed to query personas: %w", err)
	}
	defer rows.Close()

	var personas []*types.Persona
	for rows.Next() {
		var p types.Persona
		if err := rows.Scan(&p.ID, &p.Name, &p.Job, &p.Prompt, &p.AvatarURL); err != nil {
			return nil, fmt.Errorf("failed to scan persona: %w", err)
		}
		personas = append(personas, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate personas: %w", err)
	}
	return personas, nil
}

// GetPersona returns one persona by id, or ErrNotFound.
func (s *sqliteStorage) GetPersona(ctx context.Context, id string) (*types.Persona, error) {
	var p types.Persona
	err := s.q.QueryRowContext(ctx,
		`SELECT id, name, job, prompt, avatar_url FROM personas WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.Job, &p.Prompt, &p.AvatarURL)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("persona %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get persona %s: %w", id, err)
	}
	return &p, nil
}

// SeedPersonas upserts the given personas. Used by the seed-personas command
// and by tests to populate the pool.
func (s *sqliteStorage) SeedPersonas(ctx context.Context, personas []*types.Persona) error {
	for _, p := range personas {
		if p.ID == "" || p.Name == "" {
			return fmt.Errorf("persona id and name are required")
		}
		_, err := s.q.ExecContext(ctx, `
			INSERT INTO personas (id, name, job, prompt, avatar_url)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				job = excluded.job,
				prompt = excluded.prompt,
				avatar_url = excluded.avatar_url`,
			p.ID, p.Name, p.Job, p.Prompt, p.AvatarURL,
		)
		if err != nil {
			return fmt.Errorf("failed to seed persona %s: %w", p.ID, err)
		}
	}
	return nil
}
