package main

import (
	"fmt"

	"audioid/internal/catalog"
)

func runStats(store catalog.Store) error {
	stats, err := store.Stats()
	if err != nil {
		return fmt.Errorf("fetch stats: %w", err)
	}

	fmt.Println("\n📊 Catalog Statistics:")
	fmt.Println("═══════════════════════════")
	fmt.Printf("🎵 Total tracks: %d\n", stats.TotalTracks)
	fmt.Printf("✅ Fingerprinted tracks: %d\n", stats.FingerprintedTracks)
	fmt.Printf("🔢 Total hashes: %d\n", stats.TotalHashes)
	if stats.FingerprintedTracks > 0 {
		fmt.Printf("📈 Avg hashes per track: %.1f\n", float64(stats.TotalHashes)/float64(stats.FingerprintedTracks))
	}
	return nil
}
