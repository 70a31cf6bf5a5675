package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ReadSnapshot returns the body stored under name, or nil if there is none.
func (s *Store) ReadSnapshot(name string) ([]byte, error) {
	var body string
	err := s.db.QueryRow(`SELECT body FROM snapshots WHERE name = ?`, name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot %q: %w", name, err)
	}
	return []byte(body), nil
}

// WriteSnapshot replaces the whole body stored under name.
func (s *Store) WriteSnapshot(name string, data []byte) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`INSERT INTO snapshots (name, body, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		name, string(data), now,
	)
	if err != nil {
		return fmt.Errorf("write snapshot %q: %w", name, err)
	}
	return nil
}

// ListSnapshots describes every stored snapshot, ordered by name.
func (s *Store) ListSnapshots() ([]SnapshotInfo, error) {
	rows, err := s.db.Query(`SELECT name, length(body), updated_at FROM snapshots ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var infos []SnapshotInfo
	for rows.Next() {
		var info SnapshotInfo
		var updatedAt string
		if err := rows.Scan(&info.Name, &info.Size, &updatedAt); err != nil {
			return nil, err
		}
		info.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		infos = append(infos, info)
	}
	return infos, rows.Err()
}
