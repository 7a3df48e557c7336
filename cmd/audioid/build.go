package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"

	"audioid/internal/audio"
	"audioid/internal/catalog"
)

// progressDecoder wraps a Decoder and ticks bar after every Decode
// call, success or failure, so the CLI shows ingest progress even
// though Builder.Build runs sources concurrently.
type progressDecoder struct {
	audio.Decoder
	bar *progressbar.ProgressBar
}

func (p progressDecoder) Decode(path string) (string, audio.Signal, error) {
	title, sig, err := p.Decoder.Decode(path)
	_ = p.bar.Add(1)
	return title, sig, err
}

func runBuild(ctx context.Context, store catalog.Store, dir string) error {
	paths, err := collectAudioFiles(dir)
	if err != nil {
		return fmt.Errorf("walk %s: %w", dir, err)
	}
	if len(paths) == 0 {
		fmt.Printf("📭 No audio files found under %s\n", dir)
		return nil
	}

	fmt.Printf("📁 Fingerprinting %d file(s) under %s\n", len(paths), dir)
	bar := progressbar.Default(int64(len(paths)), "building catalog")

	sources := make([]catalog.Source, len(paths))
	for i, p := range paths {
		sources[i] = catalog.Source{
			Path:    p,
			Decoder: progressDecoder{Decoder: audio.ByExtension(p), bar: bar},
		}
	}

	builder := &catalog.Builder{Store: store, Concurrency: 4}
	report, err := builder.Build(ctx, sources)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}

	fmt.Printf("\n✅ Ingested %d, skipped %d (already fingerprinted), failed %d\n",
		report.Ingested, report.Skipped, report.Failed)
	return nil
}

var audioExtensions = map[string]bool{
	".wav": true,
	".mp3": true,
}

func collectAudioFiles(dir string) ([]string, error) {
	var paths []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if audioExtensions[strings.ToLower(filepath.Ext(path))] {
			paths = append(paths, path)
		}
		return nil
	})
	return paths, err
}
