// Package pg implements catalog.Store over PostgreSQL via
// database/sql and the pgx/v5 stdlib driver.
package pg

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"

	"audioid/internal/catalog"
	"audioid/internal/fingerprint"
)

// batchSize bounds how many fingerprint rows go into a single
// multi-row INSERT, staying well under Postgres's per-statement
// parameter limit.
const batchSize = 5000

// Store is a catalog.Store backed by a *sql.DB pointed at Postgres.
type Store struct {
	db *sql.DB
}

// Open connects to dsn and verifies the connection.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("pg: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("%w: ping: %v", catalog.ErrStoreUnavailable, err)
	}
	return &Store{db: db}, nil
}

// InitSchema implements catalog.Store.
func (s *Store) InitSchema() error {
	stmts := []string{
		`DROP TABLE IF EXISTS fingerprint`,
		`DROP TABLE IF EXISTS track`,
		`CREATE TABLE track (
			track_id BIGSERIAL PRIMARY KEY,
			title TEXT NOT NULL UNIQUE,
			fingerprinted BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE TABLE fingerprint (
			entry_id BIGSERIAL PRIMARY KEY,
			track_id BIGINT NOT NULL REFERENCES track(track_id) ON DELETE CASCADE,
			t_anchor INTEGER NOT NULL,
			hash_key BIGINT NOT NULL,
			UNIQUE (track_id, t_anchor, hash_key)
		)`,
		`CREATE INDEX idx_fingerprint_hash_key ON fingerprint (hash_key)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("%w: init schema: %v", catalog.ErrStoreUnavailable, err)
		}
	}
	return nil
}

// InsertTrack implements catalog.Store.
func (s *Store) InsertTrack(title string) (uint64, error) {
	var id uint64
	err := s.db.QueryRow(`INSERT INTO track (title) VALUES ($1) RETURNING track_id`, title).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%w: insert track: %v", catalog.ErrStoreUnavailable, err)
	}
	return id, nil
}

// LookupTrackByTitle implements catalog.Store.
func (s *Store) LookupTrackByTitle(title string) (uint64, error) {
	var id uint64
	err := s.db.QueryRow(`SELECT track_id FROM track WHERE title = $1`, title).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, catalog.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("%w: lookup track: %v", catalog.ErrStoreUnavailable, err)
	}
	return id, nil
}

// PutHashes implements catalog.Store.
func (s *Store) PutHashes(trackID uint64, entries []fingerprint.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: begin tx: %v", catalog.ErrStoreUnavailable, err)
	}
	defer tx.Rollback()

	for start := 0; start < len(entries); start += batchSize {
		end := start + batchSize
		if end > len(entries) {
			end = len(entries)
		}
		batch := entries[start:end]

		values := make([]string, 0, len(batch))
		args := make([]any, 0, len(batch)*3)
		for i, e := range batch {
			p := i * 3
			values = append(values, fmt.Sprintf("($%d, $%d, $%d)", p+1, p+2, p+3))
			args = append(args, trackID, e.AnchorTime, int64(e.Hash.Key()))
		}

		query := fmt.Sprintf(`
			INSERT INTO fingerprint (track_id, t_anchor, hash_key)
			VALUES %s
			ON CONFLICT (track_id, t_anchor, hash_key) DO NOTHING`,
			strings.Join(values, ","))

		if _, err := tx.Exec(query, args...); err != nil {
			return fmt.Errorf("%w: insert fingerprint batch: %v", catalog.ErrStoreUnavailable, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", catalog.ErrStoreUnavailable, err)
	}
	return nil
}

// MarkFingerprinted implements catalog.Store.
func (s *Store) MarkFingerprinted(trackID uint64) error {
	_, err := s.db.Exec(`UPDATE track SET fingerprinted = TRUE WHERE track_id = $1`, trackID)
	if err != nil {
		return fmt.Errorf("%w: mark fingerprinted: %v", catalog.ErrStoreUnavailable, err)
	}
	return nil
}

// GetTitle implements catalog.Store.
func (s *Store) GetTitle(trackID uint64) (string, error) {
	var title string
	err := s.db.QueryRow(`SELECT title FROM track WHERE track_id = $1`, trackID).Scan(&title)
	if err == sql.ErrNoRows {
		return "", catalog.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: get title: %v", catalog.ErrStoreUnavailable, err)
	}
	return title, nil
}

// GetTrack implements catalog.Store.
func (s *Store) GetTrack(trackID uint64) (catalog.Track, error) {
	var t catalog.Track
	t.ID = trackID
	err := s.db.QueryRow(`SELECT title, fingerprinted FROM track WHERE track_id = $1`, trackID).
		Scan(&t.Title, &t.Fingerprinted)
	if err == sql.ErrNoRows {
		return catalog.Track{}, catalog.ErrNotFound
	}
	if err != nil {
		return catalog.Track{}, fmt.Errorf("%w: get track: %v", catalog.ErrStoreUnavailable, err)
	}
	return t, nil
}

// ListTrackIDs implements catalog.Store.
func (s *Store) ListTrackIDs() ([]uint64, error) {
	rows, err := s.db.Query(`SELECT track_id FROM track ORDER BY track_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: list tracks: %v", catalog.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: scan track id: %v", catalog.ErrStoreUnavailable, err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetHashes implements catalog.Store.
func (s *Store) GetHashes(trackID uint64) ([]fingerprint.Entry, error) {
	rows, err := s.db.Query(`SELECT t_anchor, hash_key FROM fingerprint WHERE track_id = $1`, trackID)
	if err != nil {
		return nil, fmt.Errorf("%w: get hashes: %v", catalog.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var entries []fingerprint.Entry
	for rows.Next() {
		var anchor int
		var key int64
		if err := rows.Scan(&anchor, &key); err != nil {
			return nil, fmt.Errorf("%w: scan fingerprint: %v", catalog.ErrStoreUnavailable, err)
		}
		entries = append(entries, fingerprint.Entry{
			Hash:       fingerprint.UnpackKey(uint64(key)),
			AnchorTime: anchor,
		})
	}
	return entries, rows.Err()
}

// Stats implements catalog.Store.
func (s *Store) Stats() (catalog.Stats, error) {
	var stats catalog.Stats
	row := s.db.QueryRow(`SELECT COUNT(*) FROM track`)
	if err := row.Scan(&stats.TotalTracks); err != nil {
		return catalog.Stats{}, fmt.Errorf("%w: count tracks: %v", catalog.ErrStoreUnavailable, err)
	}
	row = s.db.QueryRow(`SELECT COUNT(*) FROM track WHERE fingerprinted`)
	if err := row.Scan(&stats.FingerprintedTracks); err != nil {
		return catalog.Stats{}, fmt.Errorf("%w: count fingerprinted: %v", catalog.ErrStoreUnavailable, err)
	}
	row = s.db.QueryRow(`SELECT COUNT(*) FROM fingerprint`)
	if err := row.Scan(&stats.TotalHashes); err != nil {
		return catalog.Stats{}, fmt.Errorf("%w: count hashes: %v", catalog.ErrStoreUnavailable, err)
	}
	return stats, nil
}

// DeleteTrack implements catalog.Store. Fingerprint rows cascade via
// the foreign key's ON DELETE CASCADE.
func (s *Store) DeleteTrack(trackID uint64) error {
	_, err := s.db.Exec(`DELETE FROM track WHERE track_id = $1`, trackID)
	if err != nil {
		return fmt.Errorf("%w: delete track: %v", catalog.ErrStoreUnavailable, err)
	}
	return nil
}

// Close implements catalog.Store.
func (s *Store) Close() error {
	return s.db.Close()
}
