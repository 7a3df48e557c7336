package catalog

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"audioid/internal/audio"
	"audioid/internal/fingerprint"
	"audioid/internal/peaks"
	"audioid/internal/spectral"
	"audioid/internal/xlog"
)

// Source is one reference recording waiting to be ingested.
type Source struct {
	Path    string
	Decoder audio.Decoder
}

// BuildReport summarizes one Build call.
type BuildReport struct {
	Ingested int
	Skipped  int
	Failed   int
}

// Builder drives the fingerprinting pipeline over a set of sources
// and persists the result via a Store.
type Builder struct {
	Store       Store
	Concurrency int // 0 means sequential
}

// Build ingests every source not already marked fingerprinted.
// Per-track failures (decode errors, empty/too-short signals) are
// isolated: they are logged and counted, but do not abort the run.
// Store-level failures do abort. Build checks ctx between tracks, so
// cancellation lands on a track boundary.
func (b *Builder) Build(ctx context.Context, sources []Source) (BuildReport, error) {
	var report BuildReport
	var mu reportMutex

	limit := b.Concurrency
	if limit <= 0 {
		limit = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, src := range sources {
		src := src
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			outcome, err := b.ingestOne(src)
			if err != nil {
				if errors.Is(err, ErrStoreUnavailable) {
					return err
				}
				xlog.Error("skipping track after ingest failure", err, "path", src.Path)
				mu.incr(&report.Failed)
				return nil
			}

			switch outcome {
			case outcomeSkipped:
				mu.incr(&report.Skipped)
			case outcomeIngested:
				mu.incr(&report.Ingested)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report, fmt.Errorf("catalog: build aborted: %w", err)
	}
	return report, nil
}

type ingestOutcome int

const (
	outcomeIngested ingestOutcome = iota
	outcomeSkipped
)

// ingestOne decodes, fingerprints, and persists a single source. Each
// track is all-or-nothing at the store boundary: PutHashes failing
// leaves the track un-fingerprinted and resumable.
func (b *Builder) ingestOne(src Source) (ingestOutcome, error) {
	title, signal, err := src.Decoder.Decode(src.Path)
	if err != nil {
		return 0, fmt.Errorf("decode %s: %w", src.Path, err)
	}

	trackID, err := b.Store.LookupTrackByTitle(title)
	switch {
	case err == nil:
		// Already known; check whether it's done.
	case errors.Is(err, ErrNotFound):
		trackID, err = b.Store.InsertTrack(title)
		if err != nil {
			return 0, fmt.Errorf("%w: insert track %q: %v", ErrStoreUnavailable, title, err)
		}
	default:
		return 0, fmt.Errorf("%w: lookup track %q: %v", ErrStoreUnavailable, title, err)
	}

	if already, err := b.isFingerprinted(trackID); err != nil {
		return 0, err
	} else if already {
		return outcomeSkipped, nil
	}

	_, _, grid, err := spectral.Compute(signal.Samples, signal.SampleRate)
	if err != nil {
		return 0, fmt.Errorf("spectrogram for %q: %w", title, err)
	}

	pts := peaks.Extract(grid)
	entries := fingerprint.Generate(pts)

	if err := b.Store.PutHashes(trackID, entries); err != nil {
		return 0, fmt.Errorf("%w: put hashes for %q: %v", ErrStoreUnavailable, title, err)
	}
	if err := b.Store.MarkFingerprinted(trackID); err != nil {
		return 0, fmt.Errorf("%w: mark fingerprinted for %q: %v", ErrStoreUnavailable, title, err)
	}

	return outcomeIngested, nil
}

func (b *Builder) isFingerprinted(trackID uint64) (bool, error) {
	track, err := b.Store.GetTrack(trackID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, fmt.Errorf("get track %d: %w", trackID, err)
		}
		return false, fmt.Errorf("%w: get track %d: %v", ErrStoreUnavailable, trackID, err)
	}
	return track.Fingerprinted, nil
}
