// Command audioid is the thin CLI driver over the catalog builder and
// matcher.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"audioid/internal/catalog"
	"audioid/internal/config"
	"audioid/internal/xlog"
)

// errNoMatch signals a clean "no match" outcome: exit code 1, no
// extra error line.
var errNoMatch = errors.New("no match")

func main() {
	config.LoadDotEnv()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	store, err := openStore()
	if err != nil {
		fmt.Printf("❌ Unable to open catalog store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()

	var runErr error
	switch os.Args[1] {
	case "build":
		if len(os.Args) < 3 {
			fmt.Println("Usage: audioid build <directory>")
			os.Exit(1)
		}
		runErr = runBuild(ctx, store, os.Args[2])

	case "identify":
		if len(os.Args) < 3 {
			fmt.Println("Usage: audioid identify <snippet-path>")
			os.Exit(1)
		}
		runErr = runIdentify(ctx, store, os.Args[2])

	case "list":
		runErr = runList(store)

	case "stats":
		runErr = runStats(store)

	case "reset":
		runErr = runReset(store)

	default:
		fmt.Printf("❌ Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if runErr != nil {
		if errors.Is(runErr, errNoMatch) {
			os.Exit(1)
		}
		xlog.Error("command failed", runErr, "command", os.Args[1])
		fmt.Printf("❌ %v\n", runErr)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  audioid build <directory>       - fingerprint every audio file under directory")
	fmt.Println("  audioid identify <snippet-path> - match a snippet against the catalog")
	fmt.Println("  audioid list                    - list catalog tracks")
	fmt.Println("  audioid stats                   - show catalog statistics")
	fmt.Println("  audioid reset                   - drop and recreate the catalog schema")
}

// openStore picks the backing catalog.Store by CATALOG_DRIVER
// ("postgres" or "sqlite", default "sqlite").
func openStore() (catalog.Store, error) {
	return newStoreFromEnv()
}
