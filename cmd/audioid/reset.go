package main

import (
	"fmt"

	"audioid/internal/catalog"
)

func runReset(store catalog.Store) error {
	fmt.Println("⚠️  This will drop and recreate the catalog schema, destroying all tracks and fingerprints!")
	fmt.Print("Are you sure? (yes/no): ")

	var response string
	fmt.Scanln(&response)

	if response != "yes" {
		fmt.Println("Operation cancelled")
		return nil
	}

	if err := store.InitSchema(); err != nil {
		return fmt.Errorf("reset schema: %w", err)
	}

	fmt.Println("✅ Catalog schema reset")
	return nil
}
