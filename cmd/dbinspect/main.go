// Package main prints the session state stored for every browser profile.
//
// Usage:
//
//	DATA_PATH=~/SecretShows/data go run ./cmd/dbinspect
//	DATA_PATH=~/SecretShows/data STORAGE_DRIVER=sqlite go run ./cmd/dbinspect
//
// Stop the server first; Badger allows a single process per directory.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/secretshows/secretshows-server/internal/session"
	"github.com/secretshows/secretshows-server/internal/store"
	"github.com/secretshows/secretshows-server/internal/store/sqlite"
)

type inspectable interface {
	Profiles(ctx context.Context) ([]string, error)
	Profile(profileID string) session.KV
	Close() error
}

func main() {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/SecretShows/data")
	}

	var (
		db  inspectable
		err error
	)
	switch os.Getenv("STORAGE_DRIVER") {
	case "sqlite":
		db, err = sqlite.Open(filepath.Join(dataPath, "sessions.db"), nil)
	default:
		db, err = store.New(filepath.Join(dataPath, "db"), nil)
	}
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	profiles, err := db.Profiles(ctx)
	if err != nil {
		log.Fatalf("Failed to list profiles: %v", err)
	}

	fmt.Println("=== Session Storage Inspection ===")
	fmt.Printf("Profiles: %d\n", len(profiles))

	signedIn, bookings, saved, corrupt := 0, 0, 0, 0
	for _, profileID := range profiles {
		snap, err := session.NewRepository(db.Profile(profileID)).Load(ctx)
		if err != nil && !errors.Is(err, session.ErrCorruptState) {
			log.Printf("Failed to load profile %s: %v", profileID, err)
			continue
		}
		if err != nil {
			corrupt++
		}

		if snap.User != nil {
			signedIn++
		}
		bookings += len(snap.Bookings)
		saved += len(snap.Saved)

		fmt.Printf("\n--- %s ---\n", profileID)
		out, _ := json.MarshalIndent(snap, "", "  ")
		fmt.Println(string(out))
	}

	fmt.Println()
	fmt.Println("=== Summary ===")
	fmt.Printf("Signed in: %d\n", signedIn)
	fmt.Printf("Bookings: %d\n", bookings)
	fmt.Printf("Saved events: %d\n", saved)
	if corrupt > 0 {
		fmt.Printf("Profiles with unreadable state: %d\n", corrupt)
	}
}
