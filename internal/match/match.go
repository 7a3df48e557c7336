// Package match implements the time-offset voting algorithm that
// ranks catalog tracks against a query snippet's fingerprint hashes.
package match

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"audioid/internal/catalog"
	"audioid/internal/config"
	"audioid/internal/fingerprint"
)

// ErrNoQueryHashes is returned when the query snippet produced zero
// fingerprint entries.
var ErrNoQueryHashes = errors.New("match: query produced no hashes")

// Result is one ranked candidate.
type Result struct {
	TrackID uint64
	Title   string
	Score   float64
	Votes   int
}

// Matcher ranks catalog tracks against query hashes under a
// confidence gate. A zero-value Thresholds falls back to
// config.DefaultThresholds.
type Matcher struct {
	Store       catalog.Store
	Thresholds  config.Thresholds
	Concurrency int
}

// Match runs the full algorithm: build the query's hash index, scan
// every catalog track's stored hashes for this query's offset
// histogram, gate on confidence, and rank survivors by
// (score, votes) descending. Tracks tied on both are all returned as
// co-winners; the caller chooses. A store error other than
// catalog.ErrNotFound aborts the match and is returned.
func (m *Matcher) Match(ctx context.Context, queryHashes []fingerprint.Entry) ([]Result, error) {
	if len(queryHashes) == 0 {
		return nil, ErrNoQueryHashes
	}

	thresholds := m.Thresholds
	if thresholds == (config.Thresholds{}) {
		thresholds = config.DefaultThresholds()
	}

	query := indexByHash(queryHashes)
	nq := len(queryHashes)

	trackIDs, err := m.Store.ListTrackIDs()
	if err != nil {
		return nil, fmt.Errorf("match: list tracks: %w", err)
	}

	limit := m.Concurrency
	if limit <= 0 {
		limit = 1
	}

	var mu sync.Mutex
	var results []Result

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, id := range trackIDs {
		id := id
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			res, ok, err := m.scanTrack(id, query, nq, thresholds)
			if err != nil {
				return fmt.Errorf("scan track %d: %w", id, err)
			}
			if ok {
				mu.Lock()
				results = append(results, res)
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("match: candidate scan aborted: %w", err)
	}

	return rank(results), nil
}

// scanTrack builds the offset histogram for one catalog track against
// the query's hash index and applies the confidence gate.
func (m *Matcher) scanTrack(trackID uint64, query map[uint64][]int, nq int, th config.Thresholds) (Result, bool, error) {
	stored, err := m.Store.GetHashes(trackID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return Result{}, false, nil
		}
		return Result{}, false, err
	}

	ns := len(stored)
	if ns == 0 {
		return Result{}, false, nil
	}

	histogram := make(map[int]int)
	for _, entry := range stored {
		snippetTimes, ok := query[entry.Hash.Key()]
		if !ok {
			continue
		}
		for _, tSnip := range snippetTimes {
			histogram[entry.AnchorTime-tSnip]++
		}
	}

	vStar := 0
	for _, count := range histogram {
		if count > vStar {
			vStar = count
		}
	}
	if vStar == 0 {
		return Result{}, false, nil
	}

	rSnip := float64(vStar) / float64(nq)
	rStore := float64(vStar) / float64(ns)

	if vStar < th.MinVotes || rSnip < th.MinSnippetRatio || rStore < th.MinStoreRatio {
		return Result{}, false, nil
	}

	title, err := m.Store.GetTitle(trackID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return Result{}, false, nil
		}
		return Result{}, false, err
	}

	return Result{
		TrackID: trackID,
		Title:   title,
		Score:   rSnip * rStore,
		Votes:   vStar,
	}, true, nil
}

// indexByHash builds Q: H → list of t_snippet from the query's
// fingerprint entries.
func indexByHash(entries []fingerprint.Entry) map[uint64][]int {
	idx := make(map[uint64][]int, len(entries))
	for _, e := range entries {
		key := e.Hash.Key()
		idx[key] = append(idx[key], e.AnchorTime)
	}
	return idx
}

// rank sorts candidates by score descending, v* as tiebreaker, and
// returns every candidate sharing the top (score, votes) pair.
func rank(results []Result) []Result {
	if len(results) == 0 {
		return nil
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Votes > results[j].Votes
	})

	top := results[0]
	var winners []Result
	for _, r := range results {
		if r.Score == top.Score && r.Votes == top.Votes {
			winners = append(winners, r)
		}
	}
	return winners
}
