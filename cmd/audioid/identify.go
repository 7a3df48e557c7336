package main

import (
	"context"
	"errors"
	"fmt"

	"audioid/internal/audio"
	"audioid/internal/catalog"
	"audioid/internal/config"
	"audioid/internal/fingerprint"
	"audioid/internal/match"
	"audioid/internal/peaks"
	"audioid/internal/spectral"
)

func runIdentify(ctx context.Context, store catalog.Store, snippetPath string) error {
	fmt.Printf("🔍 Identifying %s\n", snippetPath)

	decoder := audio.ByExtension(snippetPath)
	_, signal, err := decoder.Decode(snippetPath)
	if err != nil {
		return fmt.Errorf("decode snippet: %w", err)
	}

	_, _, grid, err := spectral.Compute(signal.Samples, signal.SampleRate)
	if err != nil {
		return fmt.Errorf("spectrogram snippet: %w", err)
	}

	pts := peaks.Extract(grid)
	entries := fingerprint.Generate(pts)

	matcher := &match.Matcher{Store: store, Thresholds: config.ThresholdsFromEnv(), Concurrency: 4}
	results, err := matcher.Match(ctx, entries)
	if err != nil {
		if errors.Is(err, match.ErrNoQueryHashes) {
			fmt.Println("❌ Snippet produced no fingerprints; too short or silent")
			return errNoMatch
		}
		return fmt.Errorf("match: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("❌ No match found")
		return errNoMatch
	}

	fmt.Println("🎉 Match found:")
	for _, r := range results {
		fmt.Printf("  %s (score=%.6f, votes=%d)\n", r.Title, r.Score, r.Votes)
	}
	return nil
}
