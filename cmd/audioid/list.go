package main

import (
	"fmt"

	"audioid/internal/catalog"
)

func runList(store catalog.Store) error {
	ids, err := store.ListTrackIDs()
	if err != nil {
		return fmt.Errorf("list tracks: %w", err)
	}

	if len(ids) == 0 {
		fmt.Println("📭 No tracks in catalog")
		return nil
	}

	fmt.Printf("\n🎵 Tracks in Catalog (%d total):\n", len(ids))
	fmt.Println("═══════════════════════════════════════════════════════════════")

	for i, id := range ids {
		track, err := store.GetTrack(id)
		if err != nil {
			fmt.Printf("❌ Error fetching track %d: %v\n", id, err)
			continue
		}

		status := "⏳ pending"
		if track.Fingerprinted {
			status = "✅ fingerprinted"
		}
		fmt.Printf("[%d] %s - %s\n", i+1, status, track.Title)
	}
	return nil
}
