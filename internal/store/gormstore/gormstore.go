// Package gormstore implements catalog.Store over an embedded SQLite
// database using GORM. It needs no external service, which makes it
// the default backend for the CLI and a single-file deployment
// option.
package gormstore

import (
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"audioid/internal/catalog"
	"audioid/internal/fingerprint"
)

// trackModel is the GORM row for one catalog track.
type trackModel struct {
	ID            uint64 `gorm:"primaryKey"`
	Title         string `gorm:"size:500;uniqueIndex;not null"`
	Fingerprinted bool   `gorm:"default:false"`

	Fingerprints []fingerprintModel `gorm:"foreignKey:TrackID;constraint:OnDelete:CASCADE"`
}

func (trackModel) TableName() string { return "track" }

// fingerprintModel is the GORM row for one fingerprint entry. The
// composite unique index collapses duplicate (track, anchor, hash)
// rows across insert batches, not just within one.
type fingerprintModel struct {
	ID      uint64 `gorm:"primaryKey"`
	TrackID uint64 `gorm:"uniqueIndex:idx_fingerprint_entry;not null"`
	TAnchor int    `gorm:"uniqueIndex:idx_fingerprint_entry;not null"`
	HashKey int64  `gorm:"uniqueIndex:idx_fingerprint_entry;index:idx_hash_key;not null"`
}

func (fingerprintModel) TableName() string { return "fingerprint" }

// Store is a catalog.Store backed by GORM + SQLite.
type Store struct {
	db *gorm.DB
}

// Open opens (creating if absent) the SQLite database at path and
// migrates the schema, so a fresh path is usable immediately.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite: %v", catalog.ErrStoreUnavailable, err)
	}
	if err := db.AutoMigrate(&trackModel{}, &fingerprintModel{}); err != nil {
		return nil, fmt.Errorf("%w: migrate: %v", catalog.ErrStoreUnavailable, err)
	}
	return &Store{db: db}, nil
}

// InitSchema implements catalog.Store.
func (s *Store) InitSchema() error {
	if err := s.db.Migrator().DropTable(&fingerprintModel{}, &trackModel{}); err != nil {
		return fmt.Errorf("%w: drop tables: %v", catalog.ErrStoreUnavailable, err)
	}
	if err := s.db.AutoMigrate(&trackModel{}, &fingerprintModel{}); err != nil {
		return fmt.Errorf("%w: migrate: %v", catalog.ErrStoreUnavailable, err)
	}
	return nil
}

// InsertTrack implements catalog.Store.
func (s *Store) InsertTrack(title string) (uint64, error) {
	row := trackModel{Title: title}
	if err := s.db.Create(&row).Error; err != nil {
		return 0, fmt.Errorf("%w: insert track: %v", catalog.ErrStoreUnavailable, err)
	}
	return row.ID, nil
}

// LookupTrackByTitle implements catalog.Store.
func (s *Store) LookupTrackByTitle(title string) (uint64, error) {
	var row trackModel
	err := s.db.Select("id").Where("title = ?", title).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, catalog.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("%w: lookup track: %v", catalog.ErrStoreUnavailable, err)
	}
	return row.ID, nil
}

// PutHashes implements catalog.Store.
func (s *Store) PutHashes(trackID uint64, entries []fingerprint.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	rows := make([]fingerprintModel, len(entries))
	for i, e := range entries {
		rows[i] = fingerprintModel{
			TrackID: trackID,
			TAnchor: e.AnchorTime,
			HashKey: int64(e.Hash.Key()),
		}
	}

	const chunk = 1000
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for start := 0; start < len(rows); start += chunk {
			end := start + chunk
			if end > len(rows) {
				end = len(rows)
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(rows[start:end]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: put hashes: %v", catalog.ErrStoreUnavailable, err)
	}
	return nil
}

// MarkFingerprinted implements catalog.Store.
func (s *Store) MarkFingerprinted(trackID uint64) error {
	err := s.db.Model(&trackModel{}).Where("id = ?", trackID).Update("fingerprinted", true).Error
	if err != nil {
		return fmt.Errorf("%w: mark fingerprinted: %v", catalog.ErrStoreUnavailable, err)
	}
	return nil
}

// GetTitle implements catalog.Store.
func (s *Store) GetTitle(trackID uint64) (string, error) {
	var row trackModel
	err := s.db.Select("title").Where("id = ?", trackID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", catalog.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: get title: %v", catalog.ErrStoreUnavailable, err)
	}
	return row.Title, nil
}

// GetTrack implements catalog.Store.
func (s *Store) GetTrack(trackID uint64) (catalog.Track, error) {
	var row trackModel
	err := s.db.Where("id = ?", trackID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return catalog.Track{}, catalog.ErrNotFound
	}
	if err != nil {
		return catalog.Track{}, fmt.Errorf("%w: get track: %v", catalog.ErrStoreUnavailable, err)
	}
	return catalog.Track{ID: row.ID, Title: row.Title, Fingerprinted: row.Fingerprinted}, nil
}

// ListTrackIDs implements catalog.Store.
func (s *Store) ListTrackIDs() ([]uint64, error) {
	var ids []uint64
	err := s.db.Model(&trackModel{}).Order("id ASC").Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list tracks: %v", catalog.ErrStoreUnavailable, err)
	}
	return ids, nil
}

// GetHashes implements catalog.Store.
func (s *Store) GetHashes(trackID uint64) ([]fingerprint.Entry, error) {
	var rows []fingerprintModel
	err := s.db.Where("track_id = ?", trackID).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: get hashes: %v", catalog.ErrStoreUnavailable, err)
	}

	entries := make([]fingerprint.Entry, len(rows))
	for i, r := range rows {
		entries[i] = fingerprint.Entry{
			Hash:       fingerprint.UnpackKey(uint64(r.HashKey)),
			AnchorTime: r.TAnchor,
		}
	}
	return entries, nil
}

// Stats implements catalog.Store.
func (s *Store) Stats() (catalog.Stats, error) {
	var stats catalog.Stats

	var totalTracks int64
	if err := s.db.Model(&trackModel{}).Count(&totalTracks).Error; err != nil {
		return catalog.Stats{}, fmt.Errorf("%w: count tracks: %v", catalog.ErrStoreUnavailable, err)
	}
	stats.TotalTracks = int(totalTracks)

	var fpTracks int64
	if err := s.db.Model(&trackModel{}).Where("fingerprinted = ?", true).Count(&fpTracks).Error; err != nil {
		return catalog.Stats{}, fmt.Errorf("%w: count fingerprinted: %v", catalog.ErrStoreUnavailable, err)
	}
	stats.FingerprintedTracks = int(fpTracks)

	var totalHashes int64
	if err := s.db.Model(&fingerprintModel{}).Count(&totalHashes).Error; err != nil {
		return catalog.Stats{}, fmt.Errorf("%w: count hashes: %v", catalog.ErrStoreUnavailable, err)
	}
	stats.TotalHashes = totalHashes

	return stats, nil
}

// DeleteTrack implements catalog.Store. Select("Fingerprints") makes
// GORM delete the track's fingerprint rows together with the track.
func (s *Store) DeleteTrack(trackID uint64) error {
	err := s.db.Select("Fingerprints").Delete(&trackModel{ID: trackID}).Error
	if err != nil {
		return fmt.Errorf("%w: delete track: %v", catalog.ErrStoreUnavailable, err)
	}
	return nil
}

// Close implements catalog.Store.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("%w: get sql.DB: %v", catalog.ErrStoreUnavailable, err)
	}
	return sqlDB.Close()
}
