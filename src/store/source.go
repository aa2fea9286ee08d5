package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"hygieia-reporter/src/provider"
)

// PostgresSource serves builds stored as JSON documents in the builds table.
// It lets a reporter running outside the CI host resolve upstream causes and
// history from builds recorded earlier.
type PostgresSource struct {
	db *sql.DB
}

// SaveBuild upserts one build document.
func (s *PostgresSource) SaveBuild(ctx context.Context, b *provider.Build) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to marshal build: %w", err)
	}

	query := `
		INSERT INTO builds (project, number, data) VALUES ($1, $2, $3)
		ON CONFLICT (project, number) DO UPDATE SET data = EXCLUDED.data
	`
	if _, err := s.db.ExecContext(ctx, query, b.Project, b.Number, data); err != nil {
		return fmt.Errorf("failed to save build %s: %w", b.Key(), err)
	}
	return nil
}

// LookupBuild implements provider.Source.
func (s *PostgresSource) LookupBuild(ctx context.Context, project string, number int) (*provider.Build, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM builds WHERE project = $1 AND number = $2`, project, number,
	).Scan(&data)

	if errors.Is(err, sql.ErrNoRows) {
		var exists bool
		if err := s.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM builds WHERE project = $1)`, project,
		).Scan(&exists); err != nil {
			return nil, fmt.Errorf("failed to look up project %s: %w", project, err)
		}
		if !exists {
			return nil, fmt.Errorf("%w: %s", provider.ErrProjectNotFound, project)
		}
		return nil, fmt.Errorf("%w: %s #%d", provider.ErrBuildNotFound, project, number)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up build %s #%d: %w", project, number, err)
	}

	return decodeBuild(data)
}

// PreviousBuilds implements provider.Source.
func (s *PostgresSource) PreviousBuilds(ctx context.Context, project string, number int) ([]*provider.Build, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM builds WHERE project = $1 AND number < $2 ORDER BY number DESC`,
		project, number,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query history of %s: %w", project, err)
	}
	defer rows.Close()

	var builds []*provider.Build
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan build: %w", err)
		}
		b, err := decodeBuild(data)
		if err != nil {
			return nil, err
		}
		builds = append(builds, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating builds: %w", err)
	}
	return builds, nil
}

func decodeBuild(data []byte) (*provider.Build, error) {
	var b provider.Build
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to decode build: %w", err)
	}
	return &b, nil
}
