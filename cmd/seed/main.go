// Package main seeds a browser profile with a signed in user, bookings and saved events.
//
// This writes straight into session storage so the profile page and event
// detail flags can be checked without clicking through the site.
//
// Usage:
//
//	DATA_PATH=~/SecretShows/data go run ./cmd/seed
//	DATA_PATH=~/SecretShows/data go run ./cmd/seed --profile <uuid> --bookings 3 --saved 4
//
// Set the printed profile ID as the secretshows_profile cookie in the browser.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/secretshows/secretshows-server/internal/catalog"
	"github.com/secretshows/secretshows-server/internal/domain"
	"github.com/secretshows/secretshows-server/internal/id"
	"github.com/secretshows/secretshows-server/internal/session"
	"github.com/secretshows/secretshows-server/internal/store"
	"github.com/secretshows/secretshows-server/internal/store/sqlite"
)

var (
	profileFlag  = flag.String("profile", "", "Profile ID to seed (default: a new one)")
	emailFlag    = flag.String("email", "demo@secretshows.test", "Email of the signed in user")
	bookingsFlag = flag.Int("bookings", 2, "Number of events to book")
	savedFlag    = flag.Int("saved", 3, "Number of events to save")
)

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/SecretShows/data")
	}

	profileID := *profileFlag
	if profileID == "" {
		profileID = id.NewProfile()
	}
	if !id.IsProfile(profileID) {
		log.Fatalf("Invalid profile ID %q", profileID)
	}

	var (
		factory session.RepositoryFactory
		closeDB func() error
	)
	switch os.Getenv("STORAGE_DRIVER") {
	case "sqlite":
		if err := os.MkdirAll(dataPath, 0o755); err != nil {
			log.Fatalf("Failed to create data directory: %v", err)
		}
		db, err := sqlite.Open(filepath.Join(dataPath, "sessions.db"), nil)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		factory, closeDB = db.Repository, db.Close
	default:
		db, err := store.New(filepath.Join(dataPath, "db"), nil)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		factory, closeDB = db.Repository, db.Close
	}
	defer closeDB()

	c, err := catalog.Default()
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	ctx := context.Background()

	repo, err := factory(ctx, profileID)
	if err != nil {
		log.Fatalf("Failed to open profile: %v", err)
	}
	st, err := session.Open(ctx, repo, session.WithAuthDelay(0))
	if err != nil {
		log.Fatalf("Failed to load profile: %v", err)
	}

	user, err := st.Login(ctx, *emailFlag, "demo")
	if err != nil {
		log.Fatalf("Failed to sign in: %v", err)
	}
	fmt.Printf("Signed in %s (%s)\n", user.Email, user.ID)

	// Only listed events can be booked through the site.
	var listed []domain.Event
	for _, e := range c.Events() {
		if e.Status.Listed() {
			listed = append(listed, e)
		}
	}
	rand.Shuffle(len(listed), func(i, j int) { listed[i], listed[j] = listed[j], listed[i] })

	for _, e := range listed[:min(*bookingsFlag, len(listed))] {
		tickets := 1 + rand.IntN(4)
		booking, err := st.BookEvent(ctx, e.ID, tickets)
		if err != nil {
			log.Fatalf("Failed to book %s: %v", e.ID, err)
		}
		fmt.Printf("  Booked %d x %s (%s)\n", booking.Tickets, e.Title, booking.ID)
	}

	rand.Shuffle(len(listed), func(i, j int) { listed[i], listed[j] = listed[j], listed[i] })
	for _, e := range listed[:min(*savedFlag, len(listed))] {
		if st.IsEventSaved(e.ID) {
			continue
		}
		if _, err := st.ToggleSaveEvent(ctx, e.ID); err != nil {
			log.Fatalf("Failed to save %s: %v", e.ID, err)
		}
		fmt.Printf("  Saved %s\n", e.Title)
	}

	fmt.Printf("\nProfile: %s\n", profileID)
}
