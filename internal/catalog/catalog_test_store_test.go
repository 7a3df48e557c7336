package catalog_test

import (
	"fmt"
	"sort"
	"sync"

	"audioid/internal/catalog"
	"audioid/internal/fingerprint"
)

// memStore is a minimal in-memory catalog.Store standing in for a
// real database in the builder and pipeline tests.
type memStore struct {
	mu     sync.Mutex
	nextID uint64
	tracks map[uint64]*catalog.Track
	hashes map[uint64][]fingerprint.Entry
}

func newMemStore() *memStore {
	return &memStore{
		tracks: make(map[uint64]*catalog.Track),
		hashes: make(map[uint64][]fingerprint.Entry),
	}
}

func (m *memStore) InitSchema() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID = 0
	m.tracks = make(map[uint64]*catalog.Track)
	m.hashes = make(map[uint64][]fingerprint.Entry)
	return nil
}

func (m *memStore) InsertTrack(title string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := m.nextID
	m.tracks[id] = &catalog.Track{ID: id, Title: title}
	return id, nil
}

func (m *memStore) LookupTrackByTitle(title string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, t := range m.tracks {
		if t.Title == title {
			return id, nil
		}
	}
	return 0, catalog.ErrNotFound
}

func (m *memStore) PutHashes(trackID uint64, entries []fingerprint.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing := make(map[string]bool)
	for _, e := range m.hashes[trackID] {
		existing[entryKey(e)] = true
	}
	for _, e := range entries {
		k := entryKey(e)
		if existing[k] {
			continue
		}
		existing[k] = true
		m.hashes[trackID] = append(m.hashes[trackID], e)
	}
	return nil
}

func entryKey(e fingerprint.Entry) string {
	return fmt.Sprintf("%d|%d", e.Hash.Key(), e.AnchorTime)
}

func (m *memStore) MarkFingerprinted(trackID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tracks[trackID]; ok {
		t.Fingerprinted = true
	}
	return nil
}

func (m *memStore) GetTitle(trackID uint64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tracks[trackID]
	if !ok {
		return "", catalog.ErrNotFound
	}
	return t.Title, nil
}

func (m *memStore) GetTrack(trackID uint64) (catalog.Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tracks[trackID]
	if !ok {
		return catalog.Track{}, catalog.ErrNotFound
	}
	return *t, nil
}

func (m *memStore) ListTrackIDs() ([]uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]uint64, 0, len(m.tracks))
	for id := range m.tracks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (m *memStore) GetHashes(trackID uint64) ([]fingerprint.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]fingerprint.Entry(nil), m.hashes[trackID]...), nil
}

func (m *memStore) Stats() (catalog.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var s catalog.Stats
	s.TotalTracks = len(m.tracks)
	for _, t := range m.tracks {
		if t.Fingerprinted {
			s.FingerprintedTracks++
		}
	}
	for _, hs := range m.hashes {
		s.TotalHashes += int64(len(hs))
	}
	return s, nil
}

func (m *memStore) DeleteTrack(trackID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tracks, trackID)
	delete(m.hashes, trackID)
	return nil
}

func (m *memStore) Close() error { return nil }
